package kvstore

import (
	"context"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ---------------------------------------------------------------------------
// fakeDB interprets the three statements Postgres issues against a map.
// ---------------------------------------------------------------------------

type fakeDB struct {
	rows  map[string]string
	execs []string
}

func newFakeDB() *fakeDB { return &fakeDB{rows: make(map[string]string)} }

func (f *fakeDB) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	switch {
	case strings.Contains(sql, "INSERT INTO kv_pairs"):
		f.rows[args[0].(string)] = args[1].(string)
	case strings.Contains(sql, "DELETE FROM kv_pairs"):
		for _, k := range args[0].([]string) {
			delete(f.rows, k)
		}
	}
	return pgconn.NewCommandTag(""), nil
}

func (f *fakeDB) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	v, ok := f.rows[args[0].(string)]
	return fakeRow{value: v, ok: ok}
}

type fakeRow struct {
	value string
	ok    bool
}

func (r fakeRow) Scan(dest ...any) error {
	if !r.ok {
		return pgx.ErrNoRows
	}
	*dest[0].(*string) = r.value
	return nil
}

// exerciseStore runs the shared contract against any Store.
func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	if _, ok, err := s.Get(ctx, "credits"); err != nil || ok {
		t.Fatalf("missing key: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
	if err := s.Set(ctx, "credits", "100"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "isLoggedIn", "true"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "credits", "90"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Get(ctx, "credits")
	if err != nil || !ok || v != "90" {
		t.Fatalf("Get credits = %q, %v, %v; want \"90\", true, nil", v, ok, err)
	}
	if err := s.Delete(ctx, "credits", "isLoggedIn"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	for _, k := range []string{"credits", "isLoggedIn"} {
		if _, ok, _ := s.Get(ctx, k); ok {
			t.Errorf("key %q still present after Delete", k)
		}
	}
	if err := s.Delete(ctx); err != nil {
		t.Errorf("Delete with no keys: %v", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestPostgres(t *testing.T) {
	db := newFakeDB()
	p := NewPostgres(db)
	if err := p.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "CREATE TABLE IF NOT EXISTS kv_pairs") {
		t.Fatalf("Migrate issued %v", db.execs)
	}
	exerciseStore(t, p)
}
