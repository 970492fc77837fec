package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// drainUntil reads sub.Updates() until pred holds or the deadline passes.
func drainUntil(t *testing.T, sub *Subscription, pred func(Result) bool) Result {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case res, ok := <-sub.Updates():
			if !ok {
				t.Fatal("updates channel closed before condition held")
			}
			if pred(res) {
				return res
			}
		case <-deadline:
			t.Fatalf("condition not reached; current = %+v", sub.Current())
		}
	}
}

func TestGet_DeduplicatesConcurrentReads(t *testing.T) {
	s := NewStore()
	key := NewKey("clients", "list", "page1")

	var calls atomic.Int64
	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		calls.Add(1)
		<-release
		return "clients-page", nil
	}

	const readers = 8
	var wg sync.WaitGroup
	results := make([]string, readers)
	errs := make([]error, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Get(context.Background(), s, key, fetch)
		}(i)
	}

	// Give every reader time to attach as a waiter before releasing.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1 for concurrent readers of one key", got)
	}
	for i := 0; i < readers; i++ {
		if errs[i] != nil {
			t.Fatalf("reader %d error: %v", i, errs[i])
		}
		if results[i] != "clients-page" {
			t.Fatalf("reader %d = %q, want %q", i, results[i], "clients-page")
		}
	}
}

func TestGet_ServesFreshValueWithoutRefetch(t *testing.T) {
	s := NewStore()
	key := NewKey("clients", "c1")

	var calls atomic.Int64
	fetch := func(ctx context.Context) (int, error) {
		calls.Add(1)
		return 42, nil
	}

	for i := 0; i < 3; i++ {
		v, err := Get(context.Background(), s, key, fetch)
		if err != nil {
			t.Fatalf("Get #%d: %v", i, err)
		}
		if v != 42 {
			t.Fatalf("Get #%d = %d, want 42", i, v)
		}
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1 for warm entry", got)
	}
}

func TestGet_RefetchesAfterInvalidate(t *testing.T) {
	s := NewStore()
	key := NewKey("expenses", "list", "p1")

	var calls atomic.Int64
	fetch := func(ctx context.Context) (int64, error) {
		return calls.Add(1), nil
	}

	if _, err := Get(context.Background(), s, key, fetch); err != nil {
		t.Fatalf("warm-up Get: %v", err)
	}

	s.Invalidate(ExpensesKey())

	v, err := Get(context.Background(), s, key, fetch)
	if err != nil {
		t.Fatalf("Get after invalidate: %v", err)
	}
	if v != 2 {
		t.Fatalf("value after invalidate = %d, want 2 (refetched)", v)
	}
}

func TestInvalidate_PrefixScoping(t *testing.T) {
	s := NewStore()

	var clientCalls, projectCalls atomic.Int64
	clientKey := NewKey("clients", "c1")
	projectKey := NewKey("projects", "p1")
	clientFetch := func(ctx context.Context) (int64, error) {
		return clientCalls.Add(1), nil
	}
	projectFetch := func(ctx context.Context) (int64, error) {
		return projectCalls.Add(1), nil
	}

	_, _ = Get(context.Background(), s, clientKey, clientFetch)
	_, _ = Get(context.Background(), s, projectKey, projectFetch)

	s.Invalidate(ClientsKey())

	_, _ = Get(context.Background(), s, clientKey, clientFetch)
	_, _ = Get(context.Background(), s, projectKey, projectFetch)

	if got := clientCalls.Load(); got != 2 {
		t.Fatalf("client fetches = %d, want 2 (invalidated)", got)
	}
	if got := projectCalls.Load(); got != 1 {
		t.Fatalf("project fetches = %d, want 1 (untouched prefix)", got)
	}
}

func TestSubscribe_SeedsAndRefetchesOnInvalidate(t *testing.T) {
	s := NewStore()
	key := NewKey("payments", "list", "p1")

	var calls atomic.Int64
	sub := s.Subscribe(key, func(ctx context.Context) (any, error) {
		return calls.Add(1), nil
	})
	defer sub.Close()

	if !sub.Enabled() {
		t.Fatal("Enabled() = false for a keyed subscription")
	}

	res := drainUntil(t, sub, func(r Result) bool { return r.Status == Fresh })
	if res.Value.(int64) != 1 {
		t.Fatalf("first fresh value = %v, want 1", res.Value)
	}

	// A mutation elsewhere marks the key stale; the live subscriber must
	// refetch on its own.
	s.Invalidate(PaymentsKey())

	res = drainUntil(t, sub, func(r Result) bool {
		return r.Status == Fresh && !r.Stale && r.Value.(int64) == 2
	})
	if res.Err != nil {
		t.Fatalf("post-invalidate result error: %v", res.Err)
	}
}

func TestSubscribe_StaleValueServedDuringRefetch(t *testing.T) {
	s := NewStore()
	key := NewKey("projects", "list", "p1")

	var calls atomic.Int64
	release := make(chan struct{})
	sub := s.Subscribe(key, func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		if n > 1 {
			<-release
		}
		return n, nil
	})
	defer sub.Close()

	drainUntil(t, sub, func(r Result) bool { return r.Status == Fresh })

	s.Invalidate(ProjectsKey())

	// While the second fetch hangs, the old value stays visible and is
	// flagged stale.
	res := drainUntil(t, sub, func(r Result) bool { return r.Status == Fetching })
	if !res.Stale {
		t.Fatal("refetching result not marked stale")
	}
	if res.Value.(int64) != 1 {
		t.Fatalf("stale value = %v, want the previous fetch's 1", res.Value)
	}

	close(release)
	drainUntil(t, sub, func(r Result) bool { return r.Status == Fresh && !r.Stale })
}

func TestSubscribe_DisabledSubscription(t *testing.T) {
	s := NewStore()
	sub := s.Subscribe(nil, nil)

	if sub.Enabled() {
		t.Fatal("Enabled() = true for an empty-key subscription")
	}
	if sub.Updates() != nil {
		t.Fatal("Updates() != nil for a disabled subscription")
	}
	if got := sub.Current(); got.Status != Idle {
		t.Fatalf("Current().Status = %v, want Idle", got.Status)
	}
	// All of these must be no-ops.
	sub.Refetch()
	sub.Close()

	if s.Len() != 0 {
		t.Fatalf("store entries = %d, want 0 after disabled subscription", s.Len())
	}
}

func TestInvalidateDuringFlightTriggersFollowUpFetch(t *testing.T) {
	s := NewStore()
	key := NewKey("statistics", "overview")

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int64

	sub := s.Subscribe(key, func(ctx context.Context) (any, error) {
		n := calls.Add(1)
		if n == 1 {
			close(firstStarted)
			<-releaseFirst
			return "old", nil
		}
		return "new", nil
	})
	defer sub.Close()

	<-firstStarted

	// Invalidating mid-flight schedules a follow-up fetch whose result
	// supersedes the first one.
	s.Invalidate(StatisticsKey())
	close(releaseFirst)

	res := drainUntil(t, sub, func(r Result) bool {
		return r.Status == Fresh && !r.Stale
	})
	if res.Value != "new" {
		t.Fatalf("settled value = %v, want superseding fetch's %q", res.Value, "new")
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2", got)
	}
}

func TestGetAttachedAfterInvalidateSeesPostWriteValue(t *testing.T) {
	s := NewStore()
	key := NewKey("projects", "p1")

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var calls atomic.Int64
	fetch := func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			close(firstStarted)
			<-releaseFirst
			return "old", nil
		}
		return "new", nil
	}

	type read struct {
		v   string
		err error
	}
	first := make(chan read, 1)
	go func() {
		v, err := Get(context.Background(), s, key, fetch)
		first <- read{v, err}
	}()

	<-firstStarted
	s.Invalidate(ProjectsKey())

	// A one-shot read attaching after the write must not settle on the
	// superseded in-flight result.
	second := make(chan read, 1)
	go func() {
		v, err := Get(context.Background(), s, key, fetch)
		second <- read{v, err}
	}()

	// Let the second reader attach as a waiter, then let the stale fetch land.
	time.Sleep(50 * time.Millisecond)
	close(releaseFirst)

	for name, ch := range map[string]chan read{"first": first, "second": second} {
		select {
		case got := <-ch:
			if got.err != nil {
				t.Fatalf("%s Get: %v", name, got.err)
			}
			if got.v != "new" {
				t.Fatalf("%s Get = %q, want post-write %q", name, got.v, "new")
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("%s Get did not return", name)
		}
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("fetch calls = %d, want 2 (follow-up issued for waiters)", got)
	}
}

func TestErroredFetchRetainsPriorValue(t *testing.T) {
	s := NewStore()
	key := NewKey("clients", "c9")

	var calls atomic.Int64
	fetchErr := errors.New("server unavailable")
	sub := s.Subscribe(key, func(ctx context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return "cached", nil
		}
		return nil, fetchErr
	})
	defer sub.Close()

	drainUntil(t, sub, func(r Result) bool { return r.Status == Fresh })

	s.Invalidate(ClientsKey())

	res := drainUntil(t, sub, func(r Result) bool { return r.Status == Errored })
	if !errors.Is(res.Err, fetchErr) {
		t.Fatalf("errored result Err = %v, want %v", res.Err, fetchErr)
	}
	if res.Value != "cached" {
		t.Fatalf("errored result Value = %v, want retained %q", res.Value, "cached")
	}
}

func TestMutate_InvalidatesOnlyOnSuccess(t *testing.T) {
	s := NewStore()
	key := NewKey("payments", "list", "p1")

	var fetches atomic.Int64
	fetch := func(ctx context.Context) (int64, error) {
		return fetches.Add(1), nil
	}
	if _, err := Get(context.Background(), s, key, fetch); err != nil {
		t.Fatalf("warm-up Get: %v", err)
	}

	wantErr := errors.New("validation failed")
	_, err := Mutate(context.Background(), s, func(ctx context.Context) (string, error) {
		return "", wantErr
	}, PaymentsKey(), StatisticsKey())
	if !errors.Is(err, wantErr) {
		t.Fatalf("Mutate error = %v, want %v", err, wantErr)
	}

	// Failed mutation must not have touched the cache.
	if _, err := Get(context.Background(), s, key, fetch); err != nil {
		t.Fatalf("Get after failed mutation: %v", err)
	}
	if got := fetches.Load(); got != 1 {
		t.Fatalf("fetches after failed mutation = %d, want 1", got)
	}

	created, err := Mutate(context.Background(), s, func(ctx context.Context) (string, error) {
		return "pay-1", nil
	}, PaymentsKey(), StatisticsKey())
	if err != nil {
		t.Fatalf("Mutate: %v", err)
	}
	if created != "pay-1" {
		t.Fatalf("Mutate value = %q, want %q", created, "pay-1")
	}

	if _, err := Get(context.Background(), s, key, fetch); err != nil {
		t.Fatalf("Get after mutation: %v", err)
	}
	if got := fetches.Load(); got != 2 {
		t.Fatalf("fetches after successful mutation = %d, want 2 (invalidated)", got)
	}
}

func TestUnsubscribedEntryGCedAfterRetention(t *testing.T) {
	s := NewStore(WithRetention(30 * time.Millisecond))
	key := NewKey("expenses", "e1")

	sub := s.Subscribe(key, func(ctx context.Context) (any, error) {
		return "v", nil
	})
	drainUntil(t, sub, func(r Result) bool { return r.Status == Fresh })
	sub.Close()

	if s.Len() != 1 {
		t.Fatalf("entries right after Close = %d, want 1 (retained)", s.Len())
	}

	deadline := time.Now().Add(2 * time.Second)
	for s.Len() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("entries = %d, want 0 after retention window", s.Len())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestResubscribeWithinRetentionServesWarmValue(t *testing.T) {
	s := NewStore(WithRetention(time.Minute))
	key := NewKey("clients", "list", "p1")

	var calls atomic.Int64
	fetch := func(ctx context.Context) (any, error) {
		return calls.Add(1), nil
	}

	sub := s.Subscribe(key, fetch)
	drainUntil(t, sub, func(r Result) bool { return r.Status == Fresh })
	sub.Close()

	sub2 := s.Subscribe(key, fetch)
	defer sub2.Close()

	res := sub2.Current()
	if res.Status != Fresh || res.Value.(int64) != 1 {
		t.Fatalf("resubscribe Current() = %+v, want warm Fresh value 1", res)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1 (no refetch on warm resubscribe)", got)
	}
}

func TestGet_ContextCancellationDetachesWaiter(t *testing.T) {
	s := NewStore()
	key := NewKey("projects", "slow")

	release := make(chan struct{})
	fetch := func(ctx context.Context) (string, error) {
		<-release
		return "late", nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := Get(ctx, s, key, fetch)
		done <- err
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Get error = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("canceled Get did not return")
	}

	// The in-flight request still completes and warms the cache.
	close(release)
	v, err := Get(context.Background(), s, key, fetch)
	if err != nil {
		t.Fatalf("follow-up Get: %v", err)
	}
	if v != "late" {
		t.Fatalf("follow-up value = %q, want %q", v, "late")
	}
}
