// Package lock prevents two benchmark runs from measuring against the same
// source at once.
package lock

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dbsmedya/encbench/internal/config"
)

// ErrLockTimeout is returned when another run holds the lock.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Common timeout values for lock acquisition (in seconds).
const (
	// TimeoutImmediate returns immediately if the lock cannot be acquired.
	TimeoutImmediate = 0

	// TimeoutShort is suitable for fast-failing duplicate run detection.
	TimeoutShort = 1

	// TimeoutInfinite waits until the lock is acquired.
	// MySQL treats negative values as infinite wait.
	TimeoutInfinite = -1
)

// maxLockNameLen is MySQL's limit on GET_LOCK names.
const maxLockNameLen = 64

// Locker is held for the duration of a run.
type Locker interface {
	AcquireOrFail(ctx context.Context) error
	ReleaseLock(ctx context.Context) (bool, error)
}

// AdvisoryLock is a MySQL named lock taken with GET_LOCK(). Named locks
// belong to a session, so the lock pins one connection from the pool until
// it is released.
type AdvisoryLock struct {
	db       *sql.DB
	conn     *sql.Conn
	lockName string
	held     bool
}

// NewAdvisoryLock creates a new advisory lock with the given name.
// The lock is not acquired until AcquireLock is called.
func NewAdvisoryLock(db *sql.DB, lockName string) *AdvisoryLock {
	return &AdvisoryLock{
		db:       db,
		lockName: lockName,
	}
}

// AcquireLock attempts to acquire the advisory lock with the specified timeout.
// Returns true if the lock was acquired, false if the timeout was reached.
//
// MySQL GET_LOCK() return values:
//   - 1: Lock was obtained successfully
//   - 0: Timeout was reached without obtaining the lock
//   - NULL: An error occurred (e.g., out of memory, thread killed)
func (a *AdvisoryLock) AcquireLock(ctx context.Context, timeoutSeconds int) (bool, error) {
	if a.held {
		return true, nil
	}

	conn, err := a.db.Conn(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to reserve connection for lock %q: %w", a.lockName, err)
	}

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT GET_LOCK(?, ?)", a.lockName, timeoutSeconds).Scan(&result); err != nil {
		conn.Close()
		return false, fmt.Errorf("failed to execute GET_LOCK: %w", err)
	}

	if !result.Valid {
		conn.Close()
		return false, fmt.Errorf("GET_LOCK returned NULL for lock %q (possible database error)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		a.conn = conn
		a.held = true
		return true, nil
	case 0:
		conn.Close()
		return false, nil
	default:
		conn.Close()
		return false, fmt.Errorf("unexpected GET_LOCK return value: %d", result.Int64)
	}
}

// ReleaseLock releases the advisory lock and returns its connection to the pool.
// Returns false if the lock was not held.
//
// MySQL RELEASE_LOCK() return values:
//   - 1: Lock was released successfully
//   - 0: Lock was not established by this session
//   - NULL: Named lock did not exist
func (a *AdvisoryLock) ReleaseLock(ctx context.Context) (bool, error) {
	if !a.held {
		return false, nil
	}

	conn := a.conn
	a.conn = nil
	a.held = false
	defer conn.Close()

	var result sql.NullInt64
	if err := conn.QueryRowContext(ctx, "SELECT RELEASE_LOCK(?)", a.lockName).Scan(&result); err != nil {
		return false, fmt.Errorf("failed to execute RELEASE_LOCK: %w", err)
	}

	if !result.Valid {
		return false, fmt.Errorf("RELEASE_LOCK returned NULL for lock %q (lock did not exist)", a.lockName)
	}

	switch result.Int64 {
	case 1:
		return true, nil
	case 0:
		return false, nil
	default:
		return false, fmt.Errorf("unexpected RELEASE_LOCK return value: %d", result.Int64)
	}
}

// IsHeld returns true if this lock is currently held by this instance.
func (a *AdvisoryLock) IsHeld() bool {
	return a.held
}

// LockName returns the name of the advisory lock.
func (a *AdvisoryLock) LockName() string {
	return a.lockName
}

// TryAcquire attempts to acquire the lock without waiting.
func (a *AdvisoryLock) TryAcquire(ctx context.Context) (bool, error) {
	return a.AcquireLock(ctx, TimeoutImmediate)
}

// AcquireOrFail acquires the lock with a short timeout and returns
// ErrLockTimeout if another run holds it.
func (a *AdvisoryLock) AcquireOrFail(ctx context.Context) error {
	acquired, err := a.AcquireLock(ctx, TimeoutShort)
	if err != nil {
		return err
	}
	if !acquired {
		return fmt.Errorf("%w: lock %q is held by another run", ErrLockTimeout, a.lockName)
	}
	return nil
}

// GenerateRunLockName creates the lock name for benchmark runs against a source.
// Lock names follow the format "encbench:run:{database}.{table}".
//
// Example: GenerateRunLockName("hospital", "Patients") → "encbench:run:hospital.Patients"
func GenerateRunLockName(database, table string) string {
	sanitize := func(s string) string {
		return strings.Map(func(r rune) rune {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_' || r == '-' {
				return r
			}
			return '_'
		}, s)
	}

	name := fmt.Sprintf("encbench:run:%s.%s", sanitize(database), sanitize(table))
	if len(name) > maxLockNameLen {
		name = name[:maxLockNameLen]
	}
	return name
}

// NopLock is used for drivers without named locks. SQLite sources are local
// files, so there is no second client to coordinate with.
type NopLock struct{}

func (NopLock) AcquireOrFail(context.Context) error { return nil }

func (NopLock) ReleaseLock(context.Context) (bool, error) { return false, nil }

// NewRunLock returns the lock guarding runs against the configured source.
func NewRunLock(db *sql.DB, src *config.SourceConfig) Locker {
	if src.Driver != config.DriverMySQL {
		return NopLock{}
	}
	return NewAdvisoryLock(db, GenerateRunLockName(src.Database, src.Table))
}

// WithLock runs fn while holding l. The lock is released even if fn panics.
func WithLock(ctx context.Context, l Locker, fn func() error) (err error) {
	if err := l.AcquireOrFail(ctx); err != nil {
		return err
	}

	defer func() {
		// Release on a fresh context so a cancelled run still unlocks.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, releaseErr := l.ReleaseLock(releaseCtx); releaseErr != nil && err == nil {
			err = fmt.Errorf("failed to release run lock: %w", releaseErr)
		}
	}()

	return fn()
}
