package ledger

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/tryonstudio/backend/internal/kvstore"
	"github.com/tryonstudio/backend/internal/models"
)

// DefaultBalance is the balance reported when the credits key has never been written.
const DefaultBalance = 100

// Repository reads and writes the balance under the credits key.
type Repository struct {
	store          kvstore.Store
	defaultBalance int
}

func NewRepository(store kvstore.Store, defaultBalance int) *Repository {
	return &Repository{store: store, defaultBalance: defaultBalance}
}

// LoadBalance returns the stored balance, or the default when the key is absent.
func (r *Repository) LoadBalance(ctx context.Context) (balance int, present bool, err error) {
	raw, ok, err := r.store.Get(ctx, models.KeyCredits)
	if err != nil {
		return 0, false, fmt.Errorf("load balance: %w", err)
	}
	if !ok {
		return r.defaultBalance, false, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, true, fmt.Errorf("stored balance %q is not an integer: %w", raw, err)
	}
	return n, true, nil
}

func (r *Repository) StoreBalance(ctx context.Context, balance int) error {
	if err := r.store.Set(ctx, models.KeyCredits, strconv.Itoa(balance)); err != nil {
		return fmt.Errorf("store balance: %w", err)
	}
	return nil
}

// Journal records ledger entries.
type Journal interface {
	Append(ctx context.Context, e *models.CreditLedger) error
	List(ctx context.Context) ([]*models.CreditLedger, error)
}

// MemoryJournal keeps entries for the lifetime of the process.
type MemoryJournal struct {
	mu      sync.Mutex
	entries []*models.CreditLedger
}

func NewMemoryJournal() *MemoryJournal {
	return &MemoryJournal{}
}

func (j *MemoryJournal) Append(_ context.Context, e *models.CreditLedger) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	cp := *e
	j.entries = append(j.entries, &cp)
	return nil
}

// List returns entries newest first.
func (j *MemoryJournal) List(_ context.Context) ([]*models.CreditLedger, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]*models.CreditLedger, len(j.entries))
	for i, e := range j.entries {
		cp := *e
		out[i] = &cp
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	return out, nil
}
