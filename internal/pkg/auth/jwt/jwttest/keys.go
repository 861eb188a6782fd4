// Package jwttest provides RSA key material for tests that need a token service.
package jwttest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"sync"
	"testing"
)

var (
	once       sync.Once
	privatePEM string
	publicPEM  string
	keyErr     error
)

// KeyPair returns a PEM encoded RSA private and public key. The pair is generated
// once per test binary.
func KeyPair(tb testing.TB) (string, string) {
	tb.Helper()

	once.Do(func() {
		var key *rsa.PrivateKey
		key, keyErr = rsa.GenerateKey(rand.Reader, 2048)
		if keyErr != nil {
			return
		}
		privatePEM, publicPEM, keyErr = encode(key)
	})
	if keyErr != nil {
		tb.Fatalf("generate rsa key: %v", keyErr)
	}

	return privatePEM, publicPEM
}

// OtherKeyPair returns a freshly generated pair unrelated to KeyPair.
func OtherKeyPair(tb testing.TB) (string, string) {
	tb.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		tb.Fatalf("generate rsa key: %v", err)
	}
	priv, pub, err := encode(key)
	if err != nil {
		tb.Fatalf("encode rsa key: %v", err)
	}
	return priv, pub
}

func encode(key *rsa.PrivateKey) (string, string, error) {
	priv := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	pubDER, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return "", "", err
	}
	pub := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubDER,
	})

	return string(priv), string(pub), nil
}
