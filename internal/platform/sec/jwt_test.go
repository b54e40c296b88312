// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/avatarstudio/internal/platform/sec"
)

const testIssuer = "yomira.app"

// newKeyPair generates an RSA key and returns it with its PEM public half.
func newKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	return privateKey, pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})
}

func sign(t *testing.T, key *rsa.PrivateKey, claims sec.AuthClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func registered(issuer string, expiresIn time.Duration) jwt.RegisteredClaims {
	now := time.Now()
	return jwt.RegisteredClaims{
		Subject:   "user-1",
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
	}
}

/*
TestVerifyToken covers signature, issuer and expiry checks.
*/
func TestVerifyToken(t *testing.T) {
	privateKey, publicPEM := newKeyPair(t)
	otherKey, _ := newKeyPair(t)

	verifier, err := sec.NewTokenVerifierFromPEM(publicPEM, testIssuer)
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		isValid bool
	}{
		{"valid", sign(t, privateKey, sec.AuthClaims{RegisteredClaims: registered(testIssuer, time.Minute), UserID: "user-1"}), true},
		{"wrong_key", sign(t, otherKey, sec.AuthClaims{RegisteredClaims: registered(testIssuer, time.Minute), UserID: "user-1"}), false},
		{"wrong_issuer", sign(t, privateKey, sec.AuthClaims{RegisteredClaims: registered("elsewhere", time.Minute), UserID: "user-1"}), false},
		{"expired", sign(t, privateKey, sec.AuthClaims{RegisteredClaims: registered(testIssuer, -time.Minute), UserID: "user-1"}), false},
		{"garbage", "not-a-token", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := verifier.VerifyToken(tt.token)
			if tt.isValid {
				require.NoError(t, err)
				assert.Equal(t, "user-1", claims.UserID)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

/*
TestVerifyToken_SubjectFallback verifies UserID falls back to the registered subject.
*/
func TestVerifyToken_SubjectFallback(t *testing.T) {
	privateKey, publicPEM := newKeyPair(t)

	verifier, err := sec.NewTokenVerifierFromPEM(publicPEM, testIssuer)
	require.NoError(t, err)

	claims, err := verifier.VerifyToken(sign(t, privateKey, sec.AuthClaims{RegisteredClaims: registered(testIssuer, time.Minute)}))
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
}
