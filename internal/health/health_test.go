package health

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
)

type fakeRow struct{ err error }

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for _, d := range dest {
		switch v := d.(type) {
		case *int64:
			*v = 2048
		case *int:
			*v = 3
		}
	}
	return nil
}

type fakeDB struct{ pingErr error }

func (f fakeDB) Ping(context.Context) error { return f.pingErr }

func (f fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return fakeRow{} }

func TestCheckBasic(t *testing.T) {
	if got := NewHealthChecker(fakeDB{}).CheckBasic(); got.Status != "healthy" {
		t.Fatalf("status = %q", got.Status)
	}
	if got := NewHealthChecker(fakeDB{pingErr: errors.New("down")}).CheckBasic(); got.Status != "unhealthy" || got.Database.Status != "unhealthy" {
		t.Fatalf("status = %+v", got)
	}
}

func TestCheckDetailed(t *testing.T) {
	h := NewHealthChecker(fakeDB{})
	h.SetCacheProbe(func() bool { return false })

	got := h.CheckDetailed(context.Background())
	if got.Cache != "unhealthy" {
		t.Fatalf("cache = %q", got.Cache)
	}
	if got.DBSize != "2.0 KB" || got.DBConnections != 3 {
		t.Fatalf("db stats = %q %d", got.DBSize, got.DBConnections)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[uint64]string{
		512:     "512 B",
		1536:    "1.5 KB",
		1 << 30: "1.0 GB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
