package ledger

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tryonstudio/backend/internal/models"
)

// ErrInsufficientFunds is returned when a debit exceeds the balance. The
// concrete error is a *models.InsufficientFundsError.
var ErrInsufficientFunds = models.ErrInsufficientFunds

// ErrInvalidAmount is returned for zero or negative amounts.
var ErrInvalidAmount = models.ErrInvalidAmount

// Entry describes why the balance moved.
type Entry struct {
	Type      string
	TaskID    *string
	PackageID *string
}

type Service interface {
	Balance(ctx context.Context) (int, error)
	// Check fails with ErrInsufficientFunds when amount exceeds the balance.
	Check(ctx context.Context, amount int) error
	Debit(ctx context.Context, amount int, e Entry) (newBalance int, err error)
	Credit(ctx context.Context, amount int, e Entry) (newBalance int, err error)
	// Open writes the starting balance if none is stored yet.
	Open(ctx context.Context, starting int) (balance int, err error)
	Entries(ctx context.Context) ([]*models.CreditLedger, error)
}

type service struct {
	mu      sync.Mutex
	repo    *Repository
	journal Journal
	now     func() time.Time
	log     *slog.Logger
}

func NewService(repo *Repository, journal Journal, log *slog.Logger) Service {
	if log == nil {
		log = slog.Default()
	}
	if journal == nil {
		journal = NewMemoryJournal()
	}
	return &service{repo: repo, journal: journal, now: time.Now, log: log}
}

var _ Service = (*service)(nil)

func (s *service) Balance(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bal, _, err := s.repo.LoadBalance(ctx)
	return bal, err
}

func (s *service) Check(ctx context.Context, amount int) error {
	bal, err := s.Balance(ctx)
	if err != nil {
		return err
	}
	if amount > bal {
		return &models.InsufficientFundsError{Required: amount, Balance: bal}
	}
	return nil
}

// Debit reads, checks and writes under one lock so concurrent debits can never
// take the balance below zero.
func (s *service) Debit(ctx context.Context, amount int, e Entry) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, _, err := s.repo.LoadBalance(ctx)
	if err != nil {
		return 0, err
	}
	if amount > bal {
		return bal, &models.InsufficientFundsError{Required: amount, Balance: bal}
	}
	newBal := bal - amount
	if err := s.repo.StoreBalance(ctx, newBal); err != nil {
		return bal, err
	}
	s.record(ctx, e, amount, newBal)
	return newBal, nil
}

func (s *service) Credit(ctx context.Context, amount int, e Entry) (int, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, _, err := s.repo.LoadBalance(ctx)
	if err != nil {
		return 0, err
	}
	newBal := bal + amount
	if err := s.repo.StoreBalance(ctx, newBal); err != nil {
		return bal, err
	}
	s.record(ctx, e, amount, newBal)
	return newBal, nil
}

func (s *service) Open(ctx context.Context, starting int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bal, present, err := s.repo.LoadBalance(ctx)
	if err != nil {
		return 0, err
	}
	if present {
		return bal, nil
	}
	if err := s.repo.StoreBalance(ctx, starting); err != nil {
		return 0, err
	}
	if starting > 0 {
		s.record(ctx, Entry{Type: models.CreditEntrySignupGrant}, starting, starting)
	}
	return starting, nil
}

func (s *service) Entries(ctx context.Context) ([]*models.CreditLedger, error) {
	list, err := s.journal.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*models.CreditLedger{}
	}
	return list, nil
}

// record appends a journal line. The balance is already persisted at this
// point, so a journal failure is logged rather than returned.
func (s *service) record(ctx context.Context, e Entry, amount, balanceAfter int) {
	entry := &models.CreditLedger{
		ID:           uuid.NewString(),
		EntryType:    e.Type,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		TaskID:       e.TaskID,
		PackageID:    e.PackageID,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.journal.Append(ctx, entry); err != nil {
		s.log.Warn("credit journal append failed", "entry_type", e.Type, "amount", amount, "error", err)
	}
}
