package token

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnsupportedAlgorithm is returned for algorithm names outside the HMAC,
// RSA and ECDSA families.
var ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")

// Family is the key type an algorithm signs with.
type Family int

const (
	FamilyHMAC Family = iota + 1
	FamilyRSA
	FamilyECDSA
)

func (f Family) String() string {
	switch f {
	case FamilyHMAC:
		return "HMAC"
	case FamilyRSA:
		return "RSA"
	case FamilyECDSA:
		return "ECDSA"
	default:
		return "unknown"
	}
}

// Algorithm is a signing algorithm resolved once from configuration.
type Algorithm struct {
	name   string
	family Family
	method jwt.SigningMethod
	// curveBits is only set for ECDSA.
	curveBits int
}

// ParseAlgorithm resolves names such as "HS256", "RS384" or "ES512".
func ParseAlgorithm(name string) (Algorithm, error) {
	name = strings.TrimSpace(name)
	switch m := jwt.GetSigningMethod(name).(type) {
	case *jwt.SigningMethodHMAC:
		return Algorithm{name: m.Alg(), family: FamilyHMAC, method: m}, nil
	case *jwt.SigningMethodRSA:
		return Algorithm{name: m.Alg(), family: FamilyRSA, method: m}, nil
	case *jwt.SigningMethodECDSA:
		return Algorithm{name: m.Alg(), family: FamilyECDSA, method: m, curveBits: m.CurveBits}, nil
	}
	return Algorithm{}, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

// Name returns the wire name used in the token header.
func (a Algorithm) Name() string { return a.name }

// Family returns the key family of the algorithm.
func (a Algorithm) Family() Family { return a.family }

func (a Algorithm) String() string { return a.name }
