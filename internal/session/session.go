// Package session persists authentication state between CLI invocations:
// the access token, the refresh token, and the cached user identity, each in
// its own file under the state directory.
package session

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	jsoniter "github.com/json-iterator/go"

	"github.com/vulndeck/vulndeck-cli/api/schemas"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ErrNoSession indicates that no credentials are stored.
var ErrNoSession = errors.New("no stored session; run 'vulndeck login'")

const (
	accessTokenFile  = "access_token"
	refreshTokenFile = "refresh_token"
	identityFile     = "identity.json"
)

// Store reads and writes credentials under a single directory.
type Store struct {
	dir string
}

// NewStore returns a Store rooted at dir, creating it if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create state dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Save persists both tokens and the identity atomically enough for a
// single-user CLI: token files are written with owner-only permissions.
func (s *Store) Save(tokens schemas.TokenResponse, identity schemas.Identity) error {
	if err := s.writeFile(accessTokenFile, []byte(tokens.AccessToken)); err != nil {
		return err
	}
	if err := s.writeFile(refreshTokenFile, []byte(tokens.RefreshToken)); err != nil {
		return err
	}
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("failed to encode identity: %w", err)
	}
	return s.writeFile(identityFile, raw)
}

// SetAccessToken replaces only the access token, e.g. after a refresh.
func (s *Store) SetAccessToken(token string) error {
	return s.writeFile(accessTokenFile, []byte(token))
}

// AccessToken returns the stored access token.
func (s *Store) AccessToken() (string, error) {
	return s.readToken(accessTokenFile)
}

// RefreshToken returns the stored refresh token.
func (s *Store) RefreshToken() (string, error) {
	return s.readToken(refreshTokenFile)
}

// Identity returns the cached user identity.
func (s *Store) Identity() (schemas.Identity, error) {
	var id schemas.Identity
	raw, err := os.ReadFile(filepath.Join(s.dir, identityFile))
	if err != nil {
		if os.IsNotExist(err) {
			return id, ErrNoSession
		}
		return id, fmt.Errorf("failed to read identity: %w", err)
	}
	if err := json.Unmarshal(raw, &id); err != nil {
		return id, fmt.Errorf("corrupt identity file: %w", err)
	}
	return id, nil
}

// Clear removes all stored credentials. Missing files are not an error.
func (s *Store) Clear() error {
	var firstErr error
	for _, name := range []string{accessTokenFile, refreshTokenFile, identityFile} {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TokenExpiry extracts the expiry claim from a JWT without verifying the
// signature. Verification is the server's job; the client only uses the
// claim to log how stale a session is.
func TokenExpiry(token string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, fmt.Errorf("failed to parse token: %w", err)
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, fmt.Errorf("token has no expiry claim")
	}
	return exp.Time, nil
}

func (s *Store) writeFile(name string, data []byte) error {
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

func (s *Store) readToken(name string) (string, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoSession
		}
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", ErrNoSession
	}
	return token, nil
}
