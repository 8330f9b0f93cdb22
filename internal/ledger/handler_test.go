package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tryonstudio/backend/internal/models"
)

func TestHandler_Balance(t *testing.T) {
	svc, store, _ := newTestService(t, nil)
	_ = store.Set(context.Background(), models.KeyCredits, "bogus")
	h := NewHandler(svc, nil)

	rr := httptest.NewRecorder()
	h.GetBalance(rr, httptest.NewRequest(http.MethodGet, "/v1/credits", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Errorf("malformed balance: got %d, want 500", rr.Code)
	}

	_ = store.Set(context.Background(), models.KeyCredits, "35")
	rr = httptest.NewRecorder()
	h.GetBalance(rr, httptest.NewRequest(http.MethodGet, "/v1/credits", nil))
	var resp BalanceResponse
	_ = json.NewDecoder(rr.Body).Decode(&resp)
	if rr.Code != http.StatusOK || resp.Balance != 35 {
		t.Errorf("got %d %+v", rr.Code, resp)
	}
}

func TestHandler_ListEntries(t *testing.T) {
	svc, _, _ := newTestService(t, intp(100))
	ctx := context.Background()
	_, _ = svc.Debit(ctx, 10, Entry{Type: models.CreditEntryTaskCharge, TaskID: strp("t1")})
	_, _ = svc.Credit(ctx, 50, Entry{Type: models.CreditEntryPurchase, PackageID: strp("starter")})

	rr := httptest.NewRecorder()
	NewHandler(svc, nil).ListEntries(rr, httptest.NewRequest(http.MethodGet, "/v1/credit-ledger", nil))
	var resp EntriesResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Balance != 140 || len(resp.Entries) != 2 || resp.Spent != 10 || resp.Earned != 50 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHandler_ListEntries_Empty(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	rr := httptest.NewRecorder()
	NewHandler(svc, nil).ListEntries(rr, httptest.NewRequest(http.MethodGet, "/v1/credit-ledger", nil))
	if body := rr.Body.String(); body != "{\"balance\":100,\"spent\":0,\"earned\":0,\"entries\":[]}\n" {
		t.Errorf("body: %s", body)
	}
}
