package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/ticket-booking/internal/persistence"
	"github.com/example/ticket-booking/internal/persistence/sqlite"
	"github.com/example/ticket-booking/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool     *sqlite.ConnectionPool
	Users    persistence.UserRepository
	Events   persistence.EventRepository
	Bookings persistence.BookingRepository
	Payments persistence.PaymentRepository
	Tokens   persistence.TokenRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// also registers a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	path := filepath.Join(dir, "booking.db")

	pool, err := sqlite.NewConnectionPool(migration.DefaultSQLiteConfig(path))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := pool.Migrate(context.Background()); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:     pool,
		Users:    sqlite.NewUserRepository(pool),
		Events:   sqlite.NewEventRepository(pool),
		Bookings: sqlite.NewBookingRepository(pool),
		Payments: sqlite.NewPaymentRepository(pool),
		Tokens:   sqlite.NewTokenRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
