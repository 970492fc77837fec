package session

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/model"
)

func writeTokenFile(t *testing.T, dir, token string, issuedAt time.Time) {
	t.Helper()
	data, err := json.Marshal(tokenFile{Token: token, IssuedAt: issuedAt})
	if err != nil {
		t.Fatalf("encode token file: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, TokenKey), data, 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}
}

func TestNewStore_LoadsPersistedToken(t *testing.T) {
	dir := t.TempDir()
	writeTokenFile(t, dir, "tok-abc", time.Now())

	s := NewStore(dir)
	if got := s.Token(); got != "tok-abc" {
		t.Fatalf("Token() = %q, want %q", got, "tok-abc")
	}
	if !s.LoggedIn() {
		t.Fatal("LoggedIn() = false with a persisted token")
	}
}

func TestNewStore_ExpiredTokenRemoved(t *testing.T) {
	dir := t.TempDir()
	writeTokenFile(t, dir, "tok-old", time.Now().Add(-8*24*time.Hour))

	s := NewStore(dir)
	if s.LoggedIn() {
		t.Fatal("LoggedIn() = true for an expired token")
	}
	if _, err := os.Stat(filepath.Join(dir, TokenKey)); !os.IsNotExist(err) {
		t.Fatalf("expired token file still present (stat err = %v)", err)
	}
}

func TestNewStore_CorruptTokenFileRemoved(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, TokenKey), []byte("not-json"), 0o600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	s := NewStore(dir)
	if s.LoggedIn() {
		t.Fatal("LoggedIn() = true after loading a corrupt token file")
	}
	if _, err := os.Stat(filepath.Join(dir, TokenKey)); !os.IsNotExist(err) {
		t.Fatalf("corrupt token file still present (stat err = %v)", err)
	}
}

func TestLogin_PersistsTokenAndUser(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/auth/login" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(api.LoginResult{
			User:  model.User{ID: "u1", Email: "owner@studio.test"},
			Token: "tok-new",
		})
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := NewStore(dir)
	c := api.New(srv.URL)

	user, err := s.Login(t.Context(), c, "owner@studio.test", "hunter2")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != "u1" {
		t.Fatalf("user ID = %q, want u1", user.ID)
	}
	if got := s.Token(); got != "tok-new" {
		t.Fatalf("Token() = %q, want %q", got, "tok-new")
	}
	if cu := s.CurrentUser(); cu == nil || cu.Email != "owner@studio.test" {
		t.Fatalf("CurrentUser() = %+v, want the logged-in user", cu)
	}

	// A fresh store over the same dir picks the credential back up.
	s2 := NewStore(dir)
	if got := s2.Token(); got != "tok-new" {
		t.Fatalf("reloaded Token() = %q, want %q", got, "tok-new")
	}
}

func TestClear_DropsMemoryAndDisk(t *testing.T) {
	dir := t.TempDir()
	writeTokenFile(t, dir, "tok-abc", time.Now())

	s := NewStore(dir)
	s.Clear()

	if s.LoggedIn() {
		t.Fatal("LoggedIn() = true after Clear")
	}
	if s.CurrentUser() != nil {
		t.Fatal("CurrentUser() != nil after Clear")
	}
	if _, err := os.Stat(filepath.Join(dir, TokenKey)); !os.IsNotExist(err) {
		t.Fatalf("token file still present after Clear (stat err = %v)", err)
	}
}

func TestInit_RejectedTokenClearedSilently(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeTokenFile(t, dir, "tok-revoked", time.Now())

	s := NewStore(dir)
	c := api.New(srv.URL, api.WithToken(s.Token))

	if err := s.Init(t.Context(), c); err != nil {
		t.Fatalf("Init returned error for rejected token: %v", err)
	}
	if s.LoggedIn() {
		t.Fatal("LoggedIn() = true after server rejected the token")
	}
}

func TestInit_NoTokenIsNoOp(t *testing.T) {
	s := NewStore(t.TempDir())
	// No server: Init must not issue a request without a token.
	c := api.New("http://127.0.0.1:0")
	if err := s.Init(t.Context(), c); err != nil {
		t.Fatalf("Init without token: %v", err)
	}
}
