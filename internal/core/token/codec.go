// Package token encodes, decodes and verifies the three-segment signed bearer
// tokens issued at login.
//
// Wire format:
//
//	base64url({"alg","typ"}) . base64url({"iat","iss","sub","jti","exp"}) . base64url(signature)
package token

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/hska/buch-catalog/internal/core/domain"
)

// Header is the decoded first segment.
type Header struct {
	Type      string `json:"typ"`
	Algorithm string `json:"alg"`
}

// Decoded is a token whose segments have been decoded but not yet verified.
type Decoded struct {
	Header Header
	Claims jwt.MapClaims

	signingString string
	signature     []byte
}

// Codec signs and verifies tokens with a single algorithm and key pair.
type Codec struct {
	alg    Algorithm
	keys   keyPair
	parser *jwt.Parser
}

// NewCodec parses the key material for alg. It fails when the material does
// not fit the algorithm family.
func NewCodec(alg Algorithm, m Material) (*Codec, error) {
	if alg.method == nil {
		return nil, fmt.Errorf("token: %w", ErrUnsupportedAlgorithm)
	}
	keys, err := buildKeys(alg, m)
	if err != nil {
		return nil, fmt.Errorf("token: %w", err)
	}
	return &Codec{alg: alg, keys: keys, parser: jwt.NewParser(jwt.WithStrictDecoding())}, nil
}

// Algorithm returns the configured algorithm.
func (c *Codec) Algorithm() Algorithm { return c.alg }

// Encode signs claims. Claims are assumed to be well formed.
func (c *Codec) Encode(claims jwt.RegisteredClaims) (string, error) {
	signed, err := jwt.NewWithClaims(c.alg.method, claims).SignedString(c.keys.sign)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Decode splits raw into its three segments and decodes each of them. Every
// failure is reported as domain.ErrTokenUndecodable.
func (c *Codec) Decode(raw string) (*Decoded, error) {
	parts := strings.Split(raw, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %d segments", domain.ErrTokenUndecodable, len(parts))
	}

	headerJSON, err := c.parser.DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: header: %v", domain.ErrTokenUndecodable, err)
	}
	var h Header
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return nil, fmt.Errorf("%w: header: %v", domain.ErrTokenUndecodable, err)
	}

	payloadJSON, err := c.parser.DecodeSegment(parts[1])
	if err != nil {
		return nil, fmt.Errorf("%w: payload: %v", domain.ErrTokenUndecodable, err)
	}
	claims := jwt.MapClaims{}
	if err := json.Unmarshal(payloadJSON, &claims); err != nil {
		return nil, fmt.Errorf("%w: payload: %v", domain.ErrTokenUndecodable, err)
	}

	sig, err := c.parser.DecodeSegment(parts[2])
	if err != nil {
		return nil, fmt.Errorf("%w: signature: %v", domain.ErrTokenUndecodable, err)
	}

	return &Decoded{
		Header:        h,
		Claims:        claims,
		signingString: parts[0] + "." + parts[1],
		signature:     sig,
	}, nil
}

// Verify checks the signature of d against the verification key.
func (c *Codec) Verify(d *Decoded) error {
	if err := c.alg.method.Verify(d.signingString, d.signature, c.keys.verify); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSignatureInvalid, err)
	}
	return nil
}
