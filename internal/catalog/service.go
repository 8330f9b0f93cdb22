package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tryonstudio/backend/internal/latency"
	"github.com/tryonstudio/backend/internal/ledger"
	"github.com/tryonstudio/backend/internal/models"
)

var ErrNotFound = models.ErrNotFound

type Receipt struct {
	PackageID    string `json:"package_id"`
	CreditsAdded int    `json:"credits_added"`
	Balance      int    `json:"balance"`
}

type Service interface {
	List() []Package
	Purchase(ctx context.Context, packageID string) (*Receipt, error)
}

type service struct {
	ledger  ledger.Service
	latency time.Duration
	log     *slog.Logger
}

// NewService builds the purchase flow. paymentLatency is the simulated time
// the payment provider takes before credits are granted.
func NewService(l ledger.Service, paymentLatency time.Duration, log *slog.Logger) *service {
	if log == nil {
		log = slog.Default()
	}
	return &service{ledger: l, latency: paymentLatency, log: log}
}

var _ Service = (*service)(nil)

func (s *service) List() []Package {
	return List()
}

// Purchase waits out the payment latency and credits the package total. An
// unknown id or a cancelled ctx leaves the balance untouched.
func (s *service) Purchase(ctx context.Context, packageID string) (*Receipt, error) {
	pkg, ok := Lookup(packageID)
	if !ok {
		return nil, fmt.Errorf("package %q: %w", packageID, ErrNotFound)
	}
	if err := latency.Wait(ctx, s.latency); err != nil {
		return nil, err
	}
	id := pkg.ID
	bal, err := s.ledger.Credit(ctx, pkg.TotalCredits(), ledger.Entry{Type: models.CreditEntryPurchase, PackageID: &id})
	if err != nil {
		return nil, err
	}
	s.log.Info("package purchased", "package_id", pkg.ID, "credits_added", pkg.TotalCredits(), "balance", bal)
	return &Receipt{PackageID: pkg.ID, CreditsAdded: pkg.TotalCredits(), Balance: bal}, nil
}
