package token

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

const minSecretLen = 32

// Material is the raw key material for one algorithm family. HMAC uses Secret,
// RSA and ECDSA use the PEM blocks. PublicKeyPEM is optional; when empty the
// public key is derived from the private key.
type Material struct {
	Secret        []byte
	PrivateKeyPEM []byte
	PublicKeyPEM  []byte
}

// ReadMaterial loads key material from the given secret and PEM file paths.
// Empty paths are skipped.
func ReadMaterial(secret, privateKeyFile, publicKeyFile string) (Material, error) {
	m := Material{Secret: []byte(secret)}
	if privateKeyFile != "" {
		b, err := os.ReadFile(privateKeyFile)
		if err != nil {
			return Material{}, fmt.Errorf("read private key: %w", err)
		}
		m.PrivateKeyPEM = b
	}
	if publicKeyFile != "" {
		b, err := os.ReadFile(publicKeyFile)
		if err != nil {
			return Material{}, fmt.Errorf("read public key: %w", err)
		}
		m.PublicKeyPEM = b
	}
	return m, nil
}

// keyPair holds the parsed signing and verification keys. Both are immutable
// once built and safe for concurrent reads.
type keyPair struct {
	sign   any
	verify any
}

func buildKeys(alg Algorithm, m Material) (keyPair, error) {
	switch alg.family {
	case FamilyHMAC:
		if len(m.Secret) < minSecretLen {
			return keyPair{}, fmt.Errorf("%s secret must be at least %d bytes", alg, minSecretLen)
		}
		secret := append([]byte(nil), m.Secret...)
		return keyPair{sign: secret, verify: secret}, nil

	case FamilyRSA:
		priv, err := jwt.ParseRSAPrivateKeyFromPEM(m.PrivateKeyPEM)
		if err != nil {
			return keyPair{}, fmt.Errorf("%s private key: %w", alg, err)
		}
		var pub *rsa.PublicKey = &priv.PublicKey
		if len(m.PublicKeyPEM) > 0 {
			if pub, err = jwt.ParseRSAPublicKeyFromPEM(m.PublicKeyPEM); err != nil {
				return keyPair{}, fmt.Errorf("%s public key: %w", alg, err)
			}
		}
		return keyPair{sign: priv, verify: pub}, nil

	case FamilyECDSA:
		priv, err := jwt.ParseECPrivateKeyFromPEM(m.PrivateKeyPEM)
		if err != nil {
			return keyPair{}, fmt.Errorf("%s private key: %w", alg, err)
		}
		var pub *ecdsa.PublicKey = &priv.PublicKey
		if len(m.PublicKeyPEM) > 0 {
			if pub, err = jwt.ParseECPublicKeyFromPEM(m.PublicKeyPEM); err != nil {
				return keyPair{}, fmt.Errorf("%s public key: %w", alg, err)
			}
		}
		if bits := pub.Curve.Params().BitSize; bits != alg.curveBits {
			return keyPair{}, fmt.Errorf("%s requires a %d-bit curve, got %d", alg, alg.curveBits, bits)
		}
		return keyPair{sign: priv, verify: pub}, nil
	}
	return keyPair{}, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
}
