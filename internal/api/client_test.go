package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pmdash/pmdash/internal/model"
)

func TestDo_SetsAuthAndRequestHeaders(t *testing.T) {
	var gotAuth, gotAccept, gotReqID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		gotReqID = r.Header.Get("X-Request-ID")
		_ = json.NewEncoder(w).Encode(model.Client{ID: "c1", Name: "Acme"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken(func() string { return "tok-123" }))
	got, err := c.Clients.Get(t.Context(), "c1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Name != "Acme" {
		t.Fatalf("client name = %q, want %q", got.Name, "Acme")
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("Authorization = %q, want %q", gotAuth, "Bearer tok-123")
	}
	if gotAccept != "application/json" {
		t.Fatalf("Accept = %q, want application/json", gotAccept)
	}
	if gotReqID == "" {
		t.Fatal("X-Request-ID header missing")
	}
}

func TestDo_OmitsAuthHeaderWhenLoggedOut(t *testing.T) {
	var sawAuth bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawAuth = r.Header["Authorization"]
		_ = json.NewEncoder(w).Encode(model.Client{ID: "c1"})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken(func() string { return "" }))
	if _, err := c.Clients.Get(t.Context(), "c1"); err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sawAuth {
		t.Fatal("Authorization header sent without a token")
	}
}

func TestDo_UnauthorizedFiresHookAndReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	hookFired := 0
	c := New(srv.URL, WithUnauthorizedHook(func() { hookFired++ }))

	_, err := c.Clients.Get(t.Context(), "c1")
	if !IsUnauthorized(err) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if hookFired != 1 {
		t.Fatalf("unauthorized hook fired %d times, want 1", hookFired)
	}
}

func TestDo_NotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := New(srv.URL)
	_, err := c.Projects.Get(t.Context(), "missing")
	if !IsNotFound(err) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDo_ServerErrorCarriesPayloadMessage(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"error field", `{"error":"client has active projects"}`, "client has active projects"},
		{"message field", `{"message":"validation failed"}`, "validation failed"},
		{"unstructured", `oops`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, tc.body, http.StatusBadRequest)
			}))
			defer srv.Close()

			c := New(srv.URL)
			err := c.Clients.Delete(t.Context(), "c1")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *APIError", err)
			}
			if apiErr.Status != http.StatusBadRequest {
				t.Fatalf("Status = %d, want 400", apiErr.Status)
			}
			if apiErr.Message != tc.want {
				t.Fatalf("Message = %q, want %q", apiErr.Message, tc.want)
			}
		})
	}
}

func TestClientsList_QueryParams(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_ = json.NewEncoder(w).Encode(ClientList{
			Clients:    []model.Client{{ID: "c1", Name: "Acme"}},
			Pagination: model.Pagination{Page: 2, Limit: 25, Total: 51},
		})
	}))
	defer srv.Close()

	c := New(srv.URL)
	list, err := c.Clients.List(t.Context(), ClientListOptions{Page: 2, Limit: 25, Query: "acme"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotQuery != "limit=25&page=2&q=acme" {
		t.Fatalf("query = %q, want %q", gotQuery, "limit=25&page=2&q=acme")
	}
	if len(list.Clients) != 1 {
		t.Fatalf("len(Clients) = %d, want 1", len(list.Clients))
	}
	if got := list.Pagination.TotalPages(); got != 3 {
		t.Fatalf("TotalPages() = %d, want 3", got)
	}
}

func TestNew_BaseURLNormalization(t *testing.T) {
	if got := New("  https://api.example.com/  ").BaseURL(); got != "https://api.example.com" {
		t.Fatalf("BaseURL() = %q, want trimmed %q", got, "https://api.example.com")
	}
	if got := New("").BaseURL(); got != DefaultBaseURL {
		t.Fatalf("BaseURL() = %q, want DefaultBaseURL", got)
	}
}
