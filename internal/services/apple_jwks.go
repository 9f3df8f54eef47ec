package services

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const appleJWKSURL = "https://appleid.apple.com/auth/keys"

// AppleKeySet fetches and caches Apple's signing keys for Sign in with Apple
// identity-token verification.
type AppleKeySet struct {
	mu         sync.RWMutex
	keys       map[string]*rsa.PublicKey
	expiresAt  time.Time
	httpClient *http.Client
	jwksURL    string
}

func NewAppleKeySet() *AppleKeySet {
	return &AppleKeySet{
		keys:       make(map[string]*rsa.PublicKey),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		jwksURL:    appleJWKSURL,
	}
}

// AppleIdentity is the verified subset of Apple's identity-token claims.
type AppleIdentity struct {
	Subject string
	Email   string
}

// VerifyIdentityToken validates the token's signature against Apple's JWKS
// and checks issuer, audience and expiry.
func (ks *AppleKeySet) VerifyIdentityToken(identityToken, bundleID string) (*AppleIdentity, error) {
	token, err := jwt.Parse(identityToken, ks.keyFor,
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer("https://appleid.apple.com"),
		jwt.WithAudience(bundleID),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("apple identity token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("apple identity token: unexpected claims type")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, errors.New("apple identity token: missing sub claim")
	}
	email, _ := claims["email"].(string)

	return &AppleIdentity{Subject: sub, Email: email}, nil
}

func (ks *AppleKeySet) keyFor(token *jwt.Token) (interface{}, error) {
	kid, _ := token.Header["kid"].(string)
	if kid == "" {
		return nil, errors.New("missing kid header")
	}

	ks.mu.RLock()
	if key, ok := ks.keys[kid]; ok && time.Now().Before(ks.expiresAt) {
		ks.mu.RUnlock()
		return key, nil
	}
	ks.mu.RUnlock()

	if err := ks.refresh(); err != nil {
		return nil, err
	}

	ks.mu.RLock()
	defer ks.mu.RUnlock()
	if key, ok := ks.keys[kid]; ok {
		return key, nil
	}
	return nil, fmt.Errorf("no apple signing key with kid %s", kid)
}

func (ks *AppleKeySet) refresh() error {
	resp, err := ks.httpClient.Get(ks.jwksURL)
	if err != nil {
		return fmt.Errorf("fetch apple JWKS: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("apple JWKS endpoint returned status %d", resp.StatusCode)
	}

	var jwks struct {
		Keys []struct {
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&jwks); err != nil {
		return fmt.Errorf("decode apple JWKS: %w", err)
	}

	keys := make(map[string]*rsa.PublicKey, len(jwks.Keys))
	for _, k := range jwks.Keys {
		pub, err := rsaKeyFromJWK(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = pub
	}

	ks.mu.Lock()
	ks.keys = keys
	ks.expiresAt = time.Now().Add(24 * time.Hour)
	ks.mu.Unlock()
	return nil
}

func rsaKeyFromJWK(nStr, eStr string) (*rsa.PublicKey, error) {
	nBytes, err := base64.RawURLEncoding.DecodeString(nStr)
	if err != nil {
		return nil, fmt.Errorf("decode modulus: %w", err)
	}
	eBytes, err := base64.RawURLEncoding.DecodeString(eStr)
	if err != nil {
		return nil, fmt.Errorf("decode exponent: %w", err)
	}

	var e int
	for _, b := range eBytes {
		e = e<<8 | int(b)
	}

	return &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}, nil
}
