package jwttoken

import (
	authmw "idgate/pkg/platform/middleware/auth"
)

func ToMiddlewareClaims(claims *Claims) *authmw.JWTClaims {
	return &authmw.JWTClaims{
		Subject: claims.Subject,
		Guid:    claims.Guid,
	}
}

// VerifierAdapter exposes a Verifier through the middleware's JWTValidator port.
type VerifierAdapter struct {
	verifier *Verifier
}

func NewVerifierAdapter(verifier *Verifier) *VerifierAdapter {
	return &VerifierAdapter{verifier: verifier}
}

func (a *VerifierAdapter) ValidateToken(tokenString string) (*authmw.JWTClaims, error) {
	claims, err := a.verifier.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	return ToMiddlewareClaims(claims), nil
}
