package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"gofinances/internal/core"
	"gofinances/internal/kv/memory"
)

type failingStore struct {
	getErr error
	setErr error
	value  string
}

func (s failingStore) Get(context.Context, string) (string, bool, error) {
	if s.getErr != nil {
		return "", false, s.getErr
	}
	return s.value, s.value != "", nil
}

func (s failingStore) Set(context.Context, string, string) error { return s.setErr }

func sample(id string) core.Transaction {
	return core.Transaction{
		ID:       id,
		Name:     "Pizza " + id,
		Amount:   decimal.RequireFromString("59.90"),
		Category: "food",
		Type:     core.Exit,
		Date:     time.Date(2024, 4, 10, 12, 30, 0, 0, time.UTC),
	}
}

func TestKeyFormat(t *testing.T) {
	l := New(memory.New(), "")
	if got := l.Key("42"); got != "@gofinances:transactions_user:42" {
		t.Fatalf("key = %q", got)
	}
	if got := New(memory.New(), "@test").Key("u"); got != "@test:transactions_user:u" {
		t.Fatalf("key = %q", got)
	}
}

func TestLoadAbsentKeyIsEmpty(t *testing.T) {
	l := New(memory.New(), "")
	txs, err := l.Load(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if txs == nil || len(txs) != 0 {
		t.Fatalf("expected empty non-nil log, got %#v", txs)
	}
}

func TestAppendThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	l := New(memory.New(), "")

	var want []core.Transaction
	for _, id := range []string{"a", "b", "c"} {
		tx := sample(id)
		if err := l.Append(ctx, "u1", tx); err != nil {
			t.Fatalf("append %s: %v", id, err)
		}
		want = append(want, tx)

		got, err := l.Load(ctx, "u1")
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(got) != len(want) {
			t.Fatalf("expected %d transactions, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i].ID != want[i].ID || got[i].Name != want[i].Name || !got[i].Amount.Equal(want[i].Amount) ||
				got[i].Category != want[i].Category || got[i].Type != want[i].Type || !got[i].Date.Equal(want[i].Date) {
				t.Fatalf("transaction %d differs: got %+v want %+v", i, got[i], want[i])
			}
		}
	}

	other, err := l.Load(ctx, "u2")
	if err != nil || len(other) != 0 {
		t.Fatalf("logs must be scoped per user, got %d err=%v", len(other), err)
	}
}

func TestLoadReadsClientWrittenLog(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	l := New(store, "")
	raw := `[{"id":"x1","name":"Salário","amount":"5000","category":"salary","type":"positive","date":"2024-04-01T12:00:00.000Z"},` +
		`{"id":"x2","name":"Pizza","amount":59.9,"category":"food","type":"negative","date":"2024-04-10T20:15:00.000Z"}]`
	if err := store.Set(ctx, l.Key("u1"), raw); err != nil {
		t.Fatalf("seed: %v", err)
	}
	txs, err := l.Load(ctx, "u1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(txs) != 2 || txs[0].Type != core.Entry || txs[1].Type != core.Exit {
		t.Fatalf("unexpected log: %+v", txs)
	}
	if !txs[1].Amount.Equal(decimal.RequireFromString("59.9")) {
		t.Fatalf("amount = %s", txs[1].Amount)
	}
}

func TestLoadMalformedIsStorageReadError(t *testing.T) {
	l := New(failingStore{value: "{not json"}, "")
	_, err := l.Load(context.Background(), "u1")
	var rerr *core.StorageReadError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected StorageReadError, got %v", err)
	}
	if rerr.Key != "@gofinances:transactions_user:u1" {
		t.Fatalf("key = %q", rerr.Key)
	}
}

func TestLoadProviderFailure(t *testing.T) {
	boom := errors.New("unavailable")
	l := New(failingStore{getErr: boom}, "")
	_, err := l.Load(context.Background(), "u1")
	var rerr *core.StorageReadError
	if !errors.As(err, &rerr) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped StorageReadError, got %v", err)
	}

	if err := l.Append(context.Background(), "u1", sample("a")); !errors.As(err, &rerr) {
		t.Fatalf("append must surface the read failure, got %v", err)
	}
}

func TestAppendWriteFailure(t *testing.T) {
	boom := errors.New("quota exceeded")
	l := New(failingStore{setErr: boom}, "")
	err := l.Append(context.Background(), "u1", sample("a"))
	var werr *core.StorageWriteError
	if !errors.As(err, &werr) || !errors.Is(err, boom) {
		t.Fatalf("expected wrapped StorageWriteError, got %v", err)
	}
}

func TestLoadRejectsEmptyUser(t *testing.T) {
	if _, err := New(memory.New(), "").Load(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty user id")
	}
}
