package query

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pmdash/pmdash/internal/api"
	"github.com/pmdash/pmdash/internal/model"
)

// newTestCache serves a minimal backend: a project listing whose title
// changes on every request, and a payment create endpoint.
func newTestCache(t *testing.T, projectFetches *atomic.Int64) *Cache {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/projects", func(w http.ResponseWriter, r *http.Request) {
		n := projectFetches.Add(1)
		_ = json.NewEncoder(w).Encode(api.ProjectList{
			Projects:   []model.Project{{ID: "p1", Title: "Site redesign", Status: model.StatusActive}},
			Pagination: model.Pagination{Page: 1, Limit: 10, Total: int(n)},
		})
	})
	mux.HandleFunc("POST /api/payments", func(w http.ResponseWriter, r *http.Request) {
		var in model.CreatePaymentInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, `{"error":"bad payload"}`, http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode(model.Payment{ID: "pay1", ProjectID: in.ProjectID, Amount: in.Amount})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewCache(api.New(srv.URL))
}

func TestCreatePayment_InvalidatesProjectListings(t *testing.T) {
	var projectFetches atomic.Int64
	cache := newTestCache(t, &projectFetches)

	sub := cache.WatchProjects(api.ProjectListOptions{Page: 1, Limit: 10})
	defer sub.Close()

	waitFor := func(pred func(Result) bool) Result {
		t.Helper()
		deadline := time.After(2 * time.Second)
		for {
			select {
			case res := <-sub.Updates():
				if pred(res) {
					return res
				}
			case <-deadline:
				t.Fatalf("condition not reached; current = %+v", sub.Current())
			}
		}
	}

	waitFor(func(r Result) bool { return r.Status == Fresh })
	if got := projectFetches.Load(); got != 1 {
		t.Fatalf("project fetches = %d, want 1 after initial subscribe", got)
	}

	pay, err := cache.CreatePayment(t.Context(), model.CreatePaymentInput{
		ProjectID:     "p1",
		Amount:        500,
		PaymentMethod: model.MethodBankTransfer,
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if pay.ID != "pay1" {
		t.Fatalf("payment ID = %q, want pay1", pay.ID)
	}

	// Project totals derive from payments: the listing must refetch.
	res := waitFor(func(r Result) bool {
		list, ok := r.Value.(*api.ProjectList)
		return r.Status == Fresh && !r.Stale && ok && list.Pagination.Total == 2
	})
	if res.Err != nil {
		t.Fatalf("post-create result error: %v", res.Err)
	}
	if got := projectFetches.Load(); got != 2 {
		t.Fatalf("project fetches = %d, want 2 after payment create", got)
	}
}

func TestDeleteClient_ListRefetchAndSecondDeleteNotFound(t *testing.T) {
	var deleted atomic.Bool
	var listFetches atomic.Int64

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/clients", func(w http.ResponseWriter, r *http.Request) {
		listFetches.Add(1)
		clients := []model.Client{}
		if !deleted.Load() {
			clients = append(clients, model.Client{ID: "c1", Name: "Acme"})
		}
		_ = json.NewEncoder(w).Encode(api.ClientList{
			Clients:    clients,
			Pagination: model.Pagination{Page: 1, Limit: 10, Total: len(clients)},
		})
	})
	mux.HandleFunc("DELETE /api/clients/c1", func(w http.ResponseWriter, r *http.Request) {
		if deleted.Swap(true) {
			http.Error(w, `{"error":"client not found"}`, http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	cache := NewCache(api.New(srv.URL))

	opts := api.ClientListOptions{Page: 1, Limit: 10}
	list, err := cache.Clients(t.Context(), opts)
	if err != nil {
		t.Fatalf("Clients: %v", err)
	}
	if len(list.Clients) != 1 {
		t.Fatalf("len(Clients) = %d, want 1 before delete", len(list.Clients))
	}

	if err := cache.DeleteClient(t.Context(), "c1"); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}

	// The delete invalidated the listing: the next read refetches and the
	// client is gone.
	list, err = cache.Clients(t.Context(), opts)
	if err != nil {
		t.Fatalf("Clients after delete: %v", err)
	}
	if len(list.Clients) != 0 {
		t.Fatalf("len(Clients) = %d, want 0 after delete", len(list.Clients))
	}
	if got := listFetches.Load(); got != 2 {
		t.Fatalf("list fetches = %d, want 2 (refetched after delete)", got)
	}

	// Deleting again reports the entity missing and, as a failed mutation,
	// leaves the cached listing untouched.
	err = cache.DeleteClient(t.Context(), "c1")
	if !api.IsNotFound(err) {
		t.Fatalf("second delete err = %v, want ErrNotFound", err)
	}
	if _, err := cache.Clients(t.Context(), opts); err != nil {
		t.Fatalf("Clients after failed delete: %v", err)
	}
	if got := listFetches.Load(); got != 2 {
		t.Fatalf("list fetches = %d, want 2 (failed delete must not invalidate)", got)
	}
}

func TestWatchClient_EmptyIDIsDisabled(t *testing.T) {
	var fetches atomic.Int64
	cache := newTestCache(t, &fetches)

	sub := cache.WatchClient("")
	defer sub.Close()

	if sub.Enabled() {
		t.Fatal("Enabled() = true for an empty-id watch")
	}
	if sub.Updates() != nil {
		t.Fatal("Updates() != nil for an empty-id watch")
	}
}
