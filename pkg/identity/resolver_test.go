package identity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
)

const resolverTestPrefix = "identity:resolver_test"

// recordingHandler counts records per level.
type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func (h *recordingHandler) count(level slog.Level) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for _, r := range h.records {
		if r.Level == level {
			n++
		}
	}
	return n
}

type createRecorder struct {
	mu    sync.Mutex
	names []string
	fn    CreateFunc
}

func (c *createRecorder) create(ctx context.Context, name string) (*Identity, error) {
	c.mu.Lock()
	c.names = append(c.names, name)
	c.mu.Unlock()
	return c.fn(ctx, name)
}

func newResolver(t *testing.T, s Store) (*Resolver, *createRecorder, *recordingHandler) {
	t.Helper()
	creator := &Creator{Store: s}
	rec := &createRecorder{fn: creator.Create}
	h := &recordingHandler{}
	return &Resolver{Store: s, Create: rec.create, Logger: slog.New(h)}, rec, h
}

func TestResolver_ProvisionsMissingDefault(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r, rec, h := newResolver(t, s)

	got, err := r.Resolve(ctx, DefaultName)
	if err != nil {
		t.Fatalf("%s - Resolve failed: %v", resolverTestPrefix, err)
	}
	if got != DefaultName {
		t.Errorf("%s - Resolve() = %q, want %q", resolverTestPrefix, got, DefaultName)
	}
	if len(rec.names) != 1 || rec.names[0] != DefaultName {
		t.Errorf("%s - create calls = %v, want exactly [default]", resolverTestPrefix, rec.names)
	}
	if n := h.count(slog.LevelInfo); n != 3 {
		t.Errorf("%s - info records = %d, want 3", resolverTestPrefix, n)
	}

	def, err := s.Default(ctx)
	if err != nil || def.Name != DefaultName {
		t.Errorf("%s - stored default = %+v, %v", resolverTestPrefix, def, err)
	}

	// Second lookup finds the provisioned identity.
	if _, err := r.Resolve(ctx, DefaultName); err != nil {
		t.Fatalf("%s - second Resolve failed: %v", resolverTestPrefix, err)
	}
	if len(rec.names) != 1 {
		t.Errorf("%s - second lookup created again: %v", resolverTestPrefix, rec.names)
	}
}

func TestResolver_ExistingDefault(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if _, err := (&Creator{Store: s}).Create(ctx, "alice"); err != nil {
		t.Fatalf("%s - setup failed: %v", resolverTestPrefix, err)
	}
	r, rec, h := newResolver(t, s)

	got, err := r.Resolve(ctx, DefaultName)
	if err != nil {
		t.Fatalf("%s - Resolve failed: %v", resolverTestPrefix, err)
	}
	if got != "alice" {
		t.Errorf("%s - Resolve() = %q, want alice", resolverTestPrefix, got)
	}
	if len(rec.names) != 0 {
		t.Errorf("%s - create calls = %v, want none", resolverTestPrefix, rec.names)
	}
	if len(h.records) != 0 {
		t.Errorf("%s - log records = %d, want 0", resolverTestPrefix, len(h.records))
	}
}

func TestResolver_NonDefaultNamePassesThrough(t *testing.T) {
	s := newTestStore(t)
	r, rec, h := newResolver(t, s)

	for _, name := range []string{"bob", "Default", ""} {
		got, err := r.Resolve(context.Background(), name)
		if err != nil || got != name {
			t.Errorf("%s - Resolve(%q) = %q, %v", resolverTestPrefix, name, got, err)
		}
	}
	if len(rec.names) != 0 || len(h.records) != 0 {
		t.Errorf("%s - pass-through had side effects: creates=%v logs=%d", resolverTestPrefix, rec.names, len(h.records))
	}
}

func TestResolver_LostCreationRace(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	// Another process created "default" but has not claimed the default yet.
	if err := s.Create(ctx, mustGenerate(t, DefaultName)); err != nil {
		t.Fatalf("%s - setup failed: %v", resolverTestPrefix, err)
	}
	r, rec, h := newResolver(t, s)

	got, err := r.Resolve(ctx, DefaultName)
	if err != nil {
		t.Fatalf("%s - Resolve failed: %v", resolverTestPrefix, err)
	}
	if got != DefaultName {
		t.Errorf("%s - Resolve() = %q, want %q", resolverTestPrefix, got, DefaultName)
	}
	if len(rec.names) != 1 {
		t.Errorf("%s - create calls = %v, want 1", resolverTestPrefix, rec.names)
	}
	if len(h.records) != 0 {
		t.Errorf("%s - lost race should not log provisioning, got %d records", resolverTestPrefix, len(h.records))
	}
}

func TestResolver_DefaultClaimedDuringCreate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	if err := s.Create(ctx, mustGenerate(t, "bob")); err != nil {
		t.Fatalf("%s - setup failed: %v", resolverTestPrefix, err)
	}
	creator := &Creator{Store: s}
	h := &recordingHandler{}
	r := &Resolver{
		Store: s,
		// Another process makes bob the default between the lookup and the create.
		Create: func(ctx context.Context, name string) (*Identity, error) {
			if _, err := s.SetDefaultIfAbsent(ctx, "bob"); err != nil {
				return nil, err
			}
			return creator.Create(ctx, name)
		},
		Logger: slog.New(h),
	}

	got, err := r.Resolve(ctx, DefaultName)
	if err != nil {
		t.Fatalf("%s - Resolve failed: %v", resolverTestPrefix, err)
	}
	if got != "bob" {
		t.Errorf("%s - Resolve() = %q, want bob", resolverTestPrefix, got)
	}
	def, err := s.Default(ctx)
	if err != nil || def.Name != got {
		t.Errorf("%s - stored default = %+v, %v, want %q", resolverTestPrefix, def, err, got)
	}
	if n := h.count(slog.LevelInfo); n != 0 {
		t.Errorf("%s - info records = %d, want 0 when the default was not claimed", resolverTestPrefix, n)
	}
	if _, err := s.Get(ctx, DefaultName); err != nil {
		t.Errorf("%s - created identity missing: %v", resolverTestPrefix, err)
	}
}

func TestResolver_ConcurrentProvisioning(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	r, rec, _ := newResolver(t, s)

	const n = 6
	var wg sync.WaitGroup
	results := make([]string, n)
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = r.Resolve(ctx, DefaultName)
		}(i)
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if errs[i] != nil || results[i] != DefaultName {
			t.Errorf("%s - caller %d got %q, %v", resolverTestPrefix, i, results[i], errs[i])
		}
	}
	list, _ := s.List(ctx)
	if len(list) != 1 {
		t.Errorf("%s - %d identities stored, want 1", resolverTestPrefix, len(list))
	}
	if len(rec.names) == 0 {
		t.Errorf("%s - expected at least one create call", resolverTestPrefix)
	}
}

type failingStore struct {
	Store
	err error
}

func (f failingStore) Default(context.Context) (*Identity, error) { return nil, f.err }

func TestResolver_StateFailure(t *testing.T) {
	boom := errors.New("disk on fire")
	s := failingStore{err: boom}
	r := &Resolver{Store: s, Create: func(context.Context, string) (*Identity, error) {
		t.Errorf("%s - create must not run when state is unreadable", resolverTestPrefix)
		return nil, nil
	}}

	_, err := r.Resolve(context.Background(), DefaultName)
	var stateErr *StateError
	if !errors.As(err, &stateErr) {
		t.Fatalf("%s - err = %v, want *StateError", resolverTestPrefix, err)
	}
	if !errors.Is(err, boom) {
		t.Errorf("%s - StateError should wrap the cause", resolverTestPrefix)
	}
}

func TestResolver_CreateFailure(t *testing.T) {
	boom := errors.New("no entropy")
	s := newTestStore(t)
	r := &Resolver{Store: s, Create: func(context.Context, string) (*Identity, error) { return nil, boom }}

	if _, err := r.Resolve(context.Background(), DefaultName); !errors.Is(err, boom) {
		t.Errorf("%s - err = %v, want wrapped create error", resolverTestPrefix, err)
	}
}

func TestDefaultIdentityName(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	got, err := DefaultIdentityName(ctx, s)
	if err != nil || got != DefaultName {
		t.Errorf("%s - empty store = %q, %v", resolverTestPrefix, got, err)
	}

	(&Creator{Store: s}).Create(ctx, "alice")
	got, err = DefaultIdentityName(ctx, s)
	if err != nil || got != "alice" {
		t.Errorf("%s - with default = %q, %v", resolverTestPrefix, got, err)
	}

	var stateErr *StateError
	if _, err := DefaultIdentityName(ctx, failingStore{err: errors.New("x")}); !errors.As(err, &stateErr) {
		t.Errorf("%s - err = %v, want *StateError", resolverTestPrefix, err)
	}
}
