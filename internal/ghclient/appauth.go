package ghclient

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// appJWTTTL is the lifetime of the signed app JWT. GitHub rejects JWTs
// valid for longer than ten minutes.
const appJWTTTL = 9 * time.Minute

// appInstallationToken mints an installation access token from GitHub App
// credentials in the environment: GITHUB_APP_ID, GITHUB_APP_INSTALLATION_ID,
// and either GITHUB_APP_KEY (PEM content) or GITHUB_APP_KEY_PATH.
func appInstallationToken(ctx context.Context) (string, error) {
	appID := os.Getenv("GITHUB_APP_ID")
	installationID := os.Getenv("GITHUB_APP_INSTALLATION_ID")
	if appID == "" || installationID == "" {
		return "", errors.New("GITHUB_APP_ID and GITHUB_APP_INSTALLATION_ID are required for app authentication")
	}

	key, err := loadAppPrivateKey()
	if err != nil {
		return "", err
	}

	signed, err := signAppJWT(appID, key)
	if err != nil {
		return "", err
	}

	return exchangeInstallationToken(ctx, installationID, signed)
}

// loadAppPrivateKey reads the app's RSA private key from the environment,
// preferring inline content over a file path.
func loadAppPrivateKey() (*rsa.PrivateKey, error) {
	pemData := []byte(os.Getenv("GITHUB_APP_KEY"))
	if len(pemData) == 0 {
		keyPath := os.Getenv("GITHUB_APP_KEY_PATH")
		if keyPath == "" {
			return nil, errors.New("set GITHUB_APP_KEY (PEM content) or GITHUB_APP_KEY_PATH (file path)")
		}
		data, err := os.ReadFile(keyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read app private key: %w", err)
		}
		pemData = data
	}

	block, _ := pem.Decode(pemData)
	if block == nil {
		return nil, errors.New("app private key is not valid PEM")
	}

	key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err == nil {
		return key, nil
	}
	// Newer app keys are PKCS8
	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse app private key: %w", err)
	}
	rsaKey, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, errors.New("app private key is not RSA")
	}
	return rsaKey, nil
}

// signAppJWT creates the short-lived JWT GitHub Apps authenticate with.
func signAppJWT(appID string, key *rsa.PrivateKey) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iat": now.Add(-30 * time.Second).Unix(), // tolerate clock skew
		"exp": now.Add(appJWTTTL).Unix(),
		"iss": appID,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(key)
	if err != nil {
		return "", fmt.Errorf("failed to sign app JWT: %w", err)
	}
	return signed, nil
}

// exchangeInstallationToken trades a signed app JWT for an installation
// access token.
func exchangeInstallationToken(ctx context.Context, installationID, signedJWT string) (string, error) {
	url := fmt.Sprintf("https://api.github.com/app/installations/%s/access_tokens", installationID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+signedJWT)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to request installation token: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("failed to create installation token (status %d)", resp.StatusCode)
	}

	var tokenResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode installation token response: %w", err)
	}
	if tokenResp.Token == "" {
		return "", errors.New("received empty installation token")
	}
	return tokenResp.Token, nil
}
