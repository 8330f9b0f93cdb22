package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tryonstudio/backend/internal/kvstore"
	"github.com/tryonstudio/backend/internal/ledger"
	"github.com/tryonstudio/backend/internal/models"
	"github.com/tryonstudio/backend/internal/services"
)

func newTestCatalog(t *testing.T) (*service, ledger.Service) {
	t.Helper()
	l := ledger.NewService(ledger.NewRepository(kvstore.NewMemory(), ledger.DefaultBalance), nil, nil)
	return NewService(l, 0, nil), l
}

func TestList_FixedOrder(t *testing.T) {
	list := List()
	want := []struct {
		id    string
		total int
		price string
	}{
		{"starter", 50, "$4.99"},
		{"basic", 170, "$9.99"},
		{"pro", 600, "$24.99"},
		{"enterprise", 1900, "$59.99"},
	}
	if len(list) != len(want) {
		t.Fatalf("packages: got %d, want %d", len(list), len(want))
	}
	for i, w := range want {
		p := list[i]
		if p.ID != w.id || p.TotalCredits() != w.total || p.PriceDisplay != w.price {
			t.Errorf("package %d: got %s total=%d price=%s", i, p.ID, p.TotalCredits(), p.PriceDisplay)
		}
	}
	if !list[2].Popular {
		t.Error("pro should be marked popular")
	}
	if list[0].BonusLabel() != "" || list[1].BonusLabel() != "+20 Bonus" {
		t.Errorf("bonus labels: %q, %q", list[0].BonusLabel(), list[1].BonusLabel())
	}

	// Callers cannot mutate the catalog.
	list[0].Credits = 1
	if List()[0].Credits != 50 {
		t.Error("List must return a copy")
	}
}

func TestPurchase_Pro(t *testing.T) {
	svc, l := newTestCatalog(t)
	ctx := context.Background()

	receipt, err := svc.Purchase(ctx, "pro")
	if err != nil {
		t.Fatalf("Purchase: %v", err)
	}
	// 100 starting + 500 base + 100 bonus.
	if receipt.CreditsAdded != 600 || receipt.Balance != 700 {
		t.Errorf("receipt: %+v, want added=600 balance=700", receipt)
	}
	entries, _ := l.Entries(ctx)
	if len(entries) != 1 || entries[0].EntryType != models.CreditEntryPurchase || *entries[0].PackageID != "pro" {
		t.Errorf("journal: %+v", entries)
	}
}

func TestPurchase_UnknownPackage(t *testing.T) {
	svc, l := newTestCatalog(t)
	ctx := context.Background()

	_, err := svc.Purchase(ctx, "platinum")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if bal, _ := l.Balance(ctx); bal != 100 {
		t.Errorf("balance must be unchanged: got %d", bal)
	}
}

func TestPurchase_CancelledDuringPayment(t *testing.T) {
	_, l := newTestCatalog(t)
	svc := NewService(l, time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := svc.Purchase(ctx, "starter"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if bal, _ := l.Balance(context.Background()); bal != 100 {
		t.Errorf("cancelled purchase must not credit: balance %d", bal)
	}
}

func TestHandler_Purchase(t *testing.T) {
	svc, _ := newTestCatalog(t)
	v, err := services.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	h := NewHandler(svc, v, nil)

	cases := []struct {
		body string
		want int
	}{
		{`{"package_id":"basic"}`, http.StatusOK},
		{`{"package_id":"platinum"}`, http.StatusNotFound},
		{`{"package":"basic"}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		h.Purchase(rr, httptest.NewRequest(http.MethodPost, "/v1/purchases", strings.NewReader(tc.body)))
		if rr.Code != tc.want {
			t.Errorf("%s: status %d, want %d (%s)", tc.body, rr.Code, tc.want, rr.Body.String())
		}
	}
}

func TestHandler_ListPackages(t *testing.T) {
	svc, _ := newTestCatalog(t)
	h := NewHandler(svc, nil, nil)

	rr := httptest.NewRecorder()
	h.ListPackages(rr, httptest.NewRequest(http.MethodGet, "/v1/packages", nil))
	var resp []PackageResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp) != 4 || resp[2].TotalCredits != 600 || resp[2].BonusLabel != "+100 Bonus" {
		t.Errorf("unexpected packages: %+v", resp)
	}
}
