// Package session holds process-wide credential and current-user state.
// Consumers see only CurrentUser, Login, and Logout; the raw token stays
// inside this package except for the Authorization header hook.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/model"
)

const (
	// TokenKey is the fixed name the credential is persisted under.
	TokenKey = "pms_token"

	// tokenTTL matches the 7-day cookie expiry of the web contract.
	tokenTTL = 7 * 24 * time.Hour
)

// tokenFile is the on-disk credential format.
type tokenFile struct {
	Token    string    `json:"token"`
	IssuedAt time.Time `json:"issued_at"`
}

// Store manages the persisted bearer token and the loaded user.
type Store struct {
	mu   sync.Mutex
	dir  string
	tok  string
	user *model.User
}

// NewStore creates a store persisting under dir, loading any existing
// unexpired token. Expired tokens are treated as absent and removed.
func NewStore(dir string) *Store {
	s := &Store{dir: dir}
	s.loadToken()
	return s
}

func (s *Store) path() string {
	return filepath.Join(s.dir, TokenKey)
}

func (s *Store) loadToken() {
	data, err := os.ReadFile(s.path())
	if err != nil {
		return
	}
	var tf tokenFile
	if err := json.Unmarshal(data, &tf); err != nil {
		_ = os.Remove(s.path())
		return
	}
	if tf.Token == "" || time.Since(tf.IssuedAt) > tokenTTL {
		_ = os.Remove(s.path())
		return
	}
	s.tok = tf.Token
}

// Token returns the current bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tok
}

// Clear drops the credential and user from memory and disk. It is also
// the 401 hook installed on the API client.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tok = ""
	s.user = nil
	_ = os.Remove(s.path())
}

// CurrentUser returns the loaded user, or nil before Init/Login.
func (s *Store) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *Store) setToken(tok string) error {
	s.mu.Lock()
	s.tok = tok
	s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("session: creating state dir: %w", err)
	}
	data, err := json.Marshal(tokenFile{Token: tok, IssuedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("session: encoding token: %w", err)
	}
	if err := os.WriteFile(s.path(), data, 0o600); err != nil {
		return fmt.Errorf("session: writing token: %w", err)
	}
	return nil
}

// Init attempts a boot-time user load. A missing token is not an error;
// a rejected token is cleared silently.
func (s *Store) Init(ctx context.Context, c *api.Client) error {
	if s.Token() == "" {
		return nil
	}
	user, err := c.Auth.Me(ctx)
	if err != nil {
		if api.IsUnauthorized(err) {
			s.Clear()
			return nil
		}
		return err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return nil
}

// Login authenticates and persists the returned token.
func (s *Store) Login(ctx context.Context, c *api.Client, email, password string) (*model.User, error) {
	res, err := c.Auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if err := s.setToken(res.Token); err != nil {
		return nil, err
	}
	s.mu.Lock()
	user := res.User
	s.user = &user
	s.mu.Unlock()
	return &user, nil
}

// Logout tells the server to drop the session, then clears local state.
// A server-side failure still clears locally.
func (s *Store) Logout(ctx context.Context, c *api.Client) {
	_ = c.Auth.Logout(ctx)
	s.Clear()
}

// LoggedIn reports whether an unexpired token is present.
func (s *Store) LoggedIn() bool {
	return s.Token() != ""
}
