package domain

import "errors"

// Validation failures of an Authorization header, in the order they are checked.
var (
	ErrAuthorizationMissing   = errors.New("authorization header missing")
	ErrAuthorizationMalformed = errors.New("authorization header malformed")
	ErrSchemeInvalid          = errors.New("authorization scheme is not Bearer")
	ErrTokenMalformed         = errors.New("token does not have three segments")
	ErrTokenUndecodable       = errors.New("token cannot be decoded")
	ErrAlgorithmMismatch      = errors.New("token algorithm mismatch")
	ErrSignatureInvalid       = errors.New("token signature invalid")
	ErrTokenExpired           = errors.New("token expired")
	ErrIssuerInvalid          = errors.New("token issuer invalid")
	ErrSubjectUnknown         = errors.New("token subject unknown")
)

// AuthErrors lists every validation failure. Callers use it to map the whole
// family to a single response.
var AuthErrors = []error{
	ErrAuthorizationMissing,
	ErrAuthorizationMalformed,
	ErrSchemeInvalid,
	ErrTokenMalformed,
	ErrTokenUndecodable,
	ErrAlgorithmMismatch,
	ErrSignatureInvalid,
	ErrTokenExpired,
	ErrIssuerInvalid,
	ErrSubjectUnknown,
}

// IsAuthError reports whether err is one of AuthErrors.
func IsAuthError(err error) bool {
	for _, target := range AuthErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AuthErrorReason returns a short label for metrics and logs.
func AuthErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrAuthorizationMissing):
		return "authorization_missing"
	case errors.Is(err, ErrAuthorizationMalformed):
		return "authorization_malformed"
	case errors.Is(err, ErrSchemeInvalid):
		return "scheme_invalid"
	case errors.Is(err, ErrTokenMalformed):
		return "token_malformed"
	case errors.Is(err, ErrTokenUndecodable):
		return "token_undecodable"
	case errors.Is(err, ErrAlgorithmMismatch):
		return "algorithm_mismatch"
	case errors.Is(err, ErrSignatureInvalid):
		return "signature_invalid"
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrIssuerInvalid):
		return "issuer_invalid"
	case errors.Is(err, ErrSubjectUnknown):
		return "subject_unknown"
	default:
		return "other"
	}
}
