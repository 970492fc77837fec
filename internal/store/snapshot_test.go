package store

import (
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"github.com/pmdash/pmdash/internal/model"
	"github.com/pmdash/pmdash/internal/query"
)

func openTest(t *testing.T) *Snapshots {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSaveAndLoadInto(t *testing.T) {
	s := openTest(t)
	key := query.ClientKey("c1")

	s.Save(key, model.Client{ID: "c1", Name: "Acme", Email: "billing@acme.test"})

	var got model.Client
	at, ok, err := s.LoadInto(key, &got)
	if err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	if !ok {
		t.Fatal("LoadInto ok = false for a saved key")
	}
	if at.IsZero() {
		t.Fatal("fetchedAt is zero")
	}
	if got.Name != "Acme" || got.Email != "billing@acme.test" {
		t.Fatalf("loaded client = %+v, want saved fields", got)
	}
}

func TestLoadMissingKey(t *testing.T) {
	s := openTest(t)

	var out model.Client
	_, ok, err := s.LoadInto(query.ClientKey("nope"), &out)
	if err != nil {
		t.Fatalf("LoadInto: %v", err)
	}
	if ok {
		t.Fatal("ok = true for a key never saved")
	}
}

func TestSaveOverwritesExistingKey(t *testing.T) {
	s := openTest(t)
	key := query.ClientKey("c1")

	s.Save(key, model.Client{ID: "c1", Name: "Old"})
	s.Save(key, model.Client{ID: "c1", Name: "New"})

	var got model.Client
	if _, ok, err := s.LoadInto(key, &got); err != nil || !ok {
		t.Fatalf("LoadInto: ok=%v err=%v", ok, err)
	}
	if got.Name != "New" {
		t.Fatalf("Name = %q, want overwritten %q", got.Name, "New")
	}

	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Fatalf("Count = %d, want 1 after overwrite", n)
	}
}

func TestInvalidate_PrefixDeletesSubtreeOnly(t *testing.T) {
	s := openTest(t)

	s.Save(query.ClientKey("c1"), model.Client{ID: "c1"})
	s.Save(query.ClientPaymentSummaryKey("c1"), model.PaymentSummary{AmountPaid: 100})
	s.Save(query.ClientKey("c2"), model.Client{ID: "c2"})
	s.Save(query.ProjectKey("p1"), model.Project{ID: "p1"})

	s.Invalidate(query.ClientKey("c1"))

	var c model.Client
	if _, ok, _ := s.LoadInto(query.ClientKey("c1"), &c); ok {
		t.Fatal("invalidated key still loads")
	}
	var ps model.PaymentSummary
	if _, ok, _ := s.LoadInto(query.ClientPaymentSummaryKey("c1"), &ps); ok {
		t.Fatal("sub-resource under invalidated prefix still loads")
	}
	if _, ok, _ := s.LoadInto(query.ClientKey("c2"), &c); !ok {
		t.Fatal("sibling key deleted by prefix invalidation")
	}
	var p model.Project
	if _, ok, _ := s.LoadInto(query.ProjectKey("p1"), &p); !ok {
		t.Fatal("unrelated resource deleted by prefix invalidation")
	}
}

func TestInvalidate_PrefixDoesNotMatchLookalikeKeys(t *testing.T) {
	s := openTest(t)

	// "clients" as a prefix must not sweep a resource whose name merely
	// starts with the same bytes.
	s.Save(query.NewKey("clients", "c1"), model.Client{ID: "c1"})
	s.Save(query.NewKey("clientsArchive", "c1"), model.Client{ID: "c1"})

	s.Invalidate(query.NewKey("clients"))

	var c model.Client
	if _, ok, _ := s.LoadInto(query.NewKey("clients", "c1"), &c); ok {
		t.Fatal("key under prefix survived invalidation")
	}
	if _, ok, _ := s.LoadInto(query.NewKey("clientsArchive", "c1"), &c); !ok {
		t.Fatal("lookalike resource swept by prefix invalidation")
	}
}
