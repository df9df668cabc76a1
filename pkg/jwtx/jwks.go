package jwtx

import (
	"crypto/ed25519"
	"encoding/base64"
)

// JWK represents a public key in JSON Web Key format (RFC 7517). Only
// OKP/Ed25519 keys are produced here; other key types may come later.
type JWK struct {
	Kty string `json:"kty"`           // key type: "OKP"
	Use string `json:"use,omitempty"` // what the key is for: "sig"
	Alg string `json:"alg,omitempty"` // algorithm: "EdDSA"
	Kid string `json:"kid,omitempty"` // key ID

	Crv string `json:"crv,omitempty"` // curve: "Ed25519"
	X   string `json:"x,omitempty"`   // base64url encoded public key
}

// JWKS is a JSON Web Key Set (RFC 7517).
type JWKS struct {
	Keys []JWK `json:"keys"`
}

// NewEd25519JWK builds a JWK for an Ed25519 public key.
// Ed25519 keys use the "OKP" (Octet Key Pair) key type.
func NewEd25519JWK(kid, use, alg string, pub ed25519.PublicKey) JWK {
	return JWK{
		Kty: "OKP",
		Use: use,
		Alg: alg,
		Kid: kid,
		Crv: "Ed25519",
		X:   base64.RawURLEncoding.EncodeToString(pub),
	}
}

func decodeBase64URL(s string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(s)
}
