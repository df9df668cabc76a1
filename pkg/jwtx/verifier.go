package jwtx

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates a token string and returns its claims if it's legit.
type Verifier interface {
	Verify(token string) (Claims, error)
}

var (
	ErrMalformed   = errors.New("jwtx: malformed token")
	ErrUnknownKID  = errors.New("jwtx: unknown kid")
	ErrInvalidSig  = errors.New("jwtx: invalid signature")
	ErrIssuer      = errors.New("jwtx: issuer mismatch")
	ErrExpired     = errors.New("jwtx: token expired")
	ErrNotYetValid = errors.New("jwtx: token not yet valid")
	ErrTokenType   = errors.New("jwtx: unexpected token type")
)

// EdDSAVerifier validates JWTs signed with Ed25519, resolving the signing
// key through the "kid" header against a KeySet.
type EdDSAVerifier struct {
	keys   *KeySet
	issuer string
}

// NewVerifierEdDSA creates a verifier over a KeySet of Ed25519 public keys.
func NewVerifierEdDSA(keys *KeySet, issuer string) *EdDSAVerifier {
	return &EdDSAVerifier{keys: keys, issuer: issuer}
}

// Verify parses and validates tokenStr. Expired tokens return ErrExpired;
// everything else that fails parsing or signature checks maps to
// ErrMalformed or ErrInvalidSig so callers can log the distinction.
func (v *EdDSAVerifier) Verify(tokenStr string) (Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodEdDSA.Alg()}))

	token, err := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, ErrUnknownKID
		}

		pub, err := v.keys.Get(kid)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownKID, kid)
		}

		edPub, ok := pub.(ed25519.PublicKey)
		if !ok {
			return nil, errors.New("jwtx: invalid Ed25519 key type")
		}
		return edPub, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return Claims{}, ErrExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return Claims{}, ErrInvalidSig
		case errors.Is(err, ErrUnknownKID):
			return Claims{}, ErrUnknownKID
		default:
			return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return Claims{}, ErrMalformed
	}

	if err := claims.ValidateIssuer(v.issuer); err != nil {
		return Claims{}, err
	}
	if err := claims.ValidateExpiry(); err != nil {
		return Claims{}, err
	}

	return *claims, nil
}
