// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package sec verifies access tokens issued by the identity service.
//
// # Architecture
//
// Avatar Studio never mints tokens. It only holds the RSA public key needed to
// check RS256 signatures, and turns a valid token into [AuthClaims].
package sec

import (
	"crypto/rsa"
	"fmt"
	"os"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents the payload embedded inside a JWT Access Token.
type AuthClaims struct {
	jwt.RegisteredClaims

	// Custom application claims are abbreviated to keep the JWT payload small.
	UserID   string `json:"uid"`
	Username string `json:"unm"`
	Role     string `json:"rol"`
}

// TokenVerifier checks RS256 access tokens against a public key and issuer.
type TokenVerifier struct {
	publicKey *rsa.PublicKey
	issuer    string
}

// NewTokenVerifier reads the PEM-encoded RSA public key at publicKeyPath.
func NewTokenVerifier(publicKeyPath, issuer string) (*TokenVerifier, error) {
	publicKeyData, err := os.ReadFile(publicKeyPath)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to read public key from %s: %w", publicKeyPath, err)
	}

	return NewTokenVerifierFromPEM(publicKeyData, issuer)
}

// NewTokenVerifierFromPEM builds a verifier from an in-memory PEM public key.
func NewTokenVerifierFromPEM(publicKeyPEM []byte, issuer string) (*TokenVerifier, error) {
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM(publicKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("sec: failed to parse public key: %w", err)
	}

	return &TokenVerifier{publicKey: publicKey, issuer: issuer}, nil
}

// VerifyToken checks the signature, expiry, and issuer of a JWT string.
func (verifier *TokenVerifier) VerifyToken(tokenString string) (*AuthClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("sec: unexpected signing method: %v", token.Header["alg"])
		}
		return verifier.publicKey, nil
	}, jwt.WithIssuer(verifier.issuer), jwt.WithExpirationRequired())

	if err != nil {
		return nil, fmt.Errorf("sec: invalid token: %w", err)
	}

	claims, ok := token.Claims.(*AuthClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("sec: invalid token claims")
	}

	// Older tokens only carry the registered subject.
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("sec: token has no subject")
	}

	return claims, nil
}
