package datastore

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/erigontech/erigon-lib/log/v3"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"
)

// TransientError marks a RemoteClient error as worth retrying with backoff.
// Anything else returned by RemoteClient is treated as terminal.
type TransientError struct{ Err error }

func (e *TransientError) Error() string { return e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err (or something it wraps) is a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// RemoteClient is the thin RPC surface BackendDataStore drives. It stands in
// for the generated client of whatever managed columnar cloud store backs
// production (spec: "a managed columnar cloud store"); this module ships one
// concrete implementation (HTTPRemoteClient) suitable for a local emulator,
// per SPEC_FULL.md §9's stance that a production SDK integration is a
// collaborator, not a specified component.
type RemoteClient interface {
	MutateRow(ctx context.Context, table, key string, columns Columns) error
	BulkMutate(ctx context.Context, table string, rows []Row) error
	ReadRow(ctx context.Context, table, key string, columns []string) (found bool, row Row, err error)
	// ReadRows returns at most pageSize rows starting at startKey (inclusive)
	// up to limitKey (exclusive; "" means unbounded). hasMore is true iff
	// rows beyond this page remain in [startKey, limitKey).
	ReadRows(ctx context.Context, table, startKey, limitKey string, columns []string, pageSize int) (rows []Row, hasMore bool, err error)
	DeleteRow(ctx context.Context, table, key string) error
	// DeleteRowsWithPrefix issues the backend's native prefix-drop primitive.
	// ok is false if the backend has no such primitive, in which case the
	// caller must scan-and-delete in pages instead.
	DeleteRowsWithPrefix(ctx context.Context, table, prefix string) (ok bool, err error)
	DeleteAllRows(ctx context.Context, table string) error
}

// BackendConfig bounds BackendDataStore's retry and pagination behavior.
type BackendConfig struct {
	MaxRetries          uint64
	InitialBackoff      time.Duration
	MaxBackoff          time.Duration
	RemotePageSize      int
	ScanDeletePageSize  int
	ScanDeleteConcurrency int
}

// DefaultBackendConfig returns reasonable defaults: a handful of retries over
// a few seconds, remote pages of 1000 rows.
func DefaultBackendConfig() BackendConfig {
	return BackendConfig{
		MaxRetries:            5,
		InitialBackoff:        100 * time.Millisecond,
		MaxBackoff:            5 * time.Second,
		RemotePageSize:        1000,
		ScanDeletePageSize:    500,
		ScanDeleteConcurrency: 4,
	}
}

// BackendDataStore is the production DataStore implementation: it marshals
// every operation onto RemoteClient RPCs, retries transient failures with
// bounded exponential backoff, and iterates internally when the caller's
// max_rows exceeds the remote store's page size.
type BackendDataStore struct {
	client RemoteClient
	cfg    BackendConfig
}

// NewBackendDataStore wraps client with retry/pagination behavior per cfg.
func NewBackendDataStore(client RemoteClient, cfg BackendConfig) *BackendDataStore {
	return &BackendDataStore{client: client, cfg: cfg}
}

func (b *BackendDataStore) newBackoff(ctx context.Context) backoff.BackOffContext {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = b.cfg.InitialBackoff
	eb.MaxInterval = b.cfg.MaxBackoff
	eb.MaxElapsedTime = 0 // bounded by MaxRetries instead, via WithMaxRetries
	return backoff.WithContext(backoff.WithMaxRetries(eb, b.cfg.MaxRetries), ctx)
}

// withRetry runs op, retrying on TransientError with bounded exponential
// backoff, and logging each retry. It returns StatusOperationFailed on
// exhaustion or on any non-transient error. The wall-clock time of the
// whole call, retries included, is observed on BackendOpDuration keyed by
// op, per SPEC_FULL.md §4.I.
func (b *BackendDataStore) withRetry(ctx context.Context, op string, fn func() error) Status {
	timer := prometheus.NewTimer(BackendOpDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	attempt := 0
	bo := b.newBackoff(ctx)
	err := backoff.Retry(func() error {
		attempt++
		err := fn()
		if err == nil {
			return nil
		}
		if IsTransient(err) {
			BackendRetries.WithLabelValues(op).Inc()
			log.Warn("obsstore backend: retrying after transient failure", "op", op, "attempt", attempt, "err", err)
			return err
		}
		// Terminal error: stop retrying by wrapping in backoff.Permanent.
		return backoff.Permanent(err)
	}, bo)
	if err != nil {
		log.Error("obsstore backend: operation failed", "op", op, "attempts", attempt, "err", err)
		return StatusOperationFailed
	}
	return StatusOK
}

func (b *BackendDataStore) WriteRow(ctx context.Context, table, key string, columns Columns) Status {
	if table == "" || key == "" {
		return StatusInvalidArguments
	}
	st := b.withRetry(ctx, "WriteRow", func() error {
		return b.client.MutateRow(ctx, table, key, columns)
	})
	if st == StatusOK {
		RowsWritten.WithLabelValues(table).Inc()
	}
	return st
}

func (b *BackendDataStore) WriteRows(ctx context.Context, table string, rows []Row) Status {
	if table == "" {
		return StatusInvalidArguments
	}
	if len(rows) == 0 {
		return StatusOK
	}
	for _, r := range rows {
		if r.Key == "" {
			return StatusInvalidArguments
		}
	}
	st := b.withRetry(ctx, "WriteRows", func() error {
		return b.client.BulkMutate(ctx, table, rows)
	})
	if st == StatusOK {
		RowsWritten.WithLabelValues(table).Add(float64(len(rows)))
	}
	return st
}

func (b *BackendDataStore) ReadRow(ctx context.Context, table, key string, columns []string) (bool, Row, Status) {
	if table == "" || key == "" {
		return false, Row{}, StatusInvalidArguments
	}
	var found bool
	var row Row
	st := b.withRetry(ctx, "ReadRow", func() error {
		f, r, err := b.client.ReadRow(ctx, table, key, columns)
		found, row = f, r
		return err
	})
	if st == StatusOK && found {
		RowsRead.WithLabelValues(table).Inc()
	}
	return found, row, st
}

// ReadRows iterates the remote store in RemotePageSize-sized pages until
// maxRows rows have been collected or the range is exhausted, translating
// the remote per-page cursor into the single moreAvailable bool the
// DataStore interface promises.
func (b *BackendDataStore) ReadRows(ctx context.Context, table, startKeyInclusive, limitKeyExclusive string, columns []string, maxRows int) ([]Row, bool, Status) {
	if table == "" {
		return nil, false, StatusInvalidArguments
	}
	if maxRows <= 0 {
		maxRows = 1
	}

	var rows []Row
	cursor := startKeyInclusive
	moreAvailable := false

	for len(rows) < maxRows {
		remaining := maxRows - len(rows)
		pageSize := b.cfg.RemotePageSize
		if remaining < pageSize {
			pageSize = remaining
		}

		var page []Row
		var hasMore bool
		st := b.withRetry(ctx, "ReadRows", func() error {
			p, hm, err := b.client.ReadRows(ctx, table, cursor, limitKeyExclusive, columns, pageSize)
			page, hasMore = p, hm
			return err
		})
		if st != StatusOK {
			// spec §4.F.5: a mid-page failure returns no partial page.
			return nil, false, st
		}
		rows = append(rows, page...)
		if len(page) == 0 {
			moreAvailable = false
			break
		}
		cursor = page[len(page)-1].Key + "\x00" // strictly after the last row read
		if !hasMore {
			moreAvailable = false
			break
		}
		moreAvailable = true
		if len(rows) >= maxRows {
			break
		}
	}
	RowsRead.WithLabelValues(table).Add(float64(len(rows)))
	return rows, moreAvailable, StatusOK
}

func (b *BackendDataStore) DeleteRow(ctx context.Context, table, key string) Status {
	if table == "" || key == "" {
		return StatusInvalidArguments
	}
	st := b.withRetry(ctx, "DeleteRow", func() error {
		return b.client.DeleteRow(ctx, table, key)
	})
	if st == StatusOK {
		RowsDeleted.WithLabelValues(table).Inc()
	}
	return st
}

// DeleteRowsWithPrefix prefers the backend's native prefix-drop primitive.
// When unavailable, it scans the prefix in pages and deletes each page's
// rows concurrently, bounded by ScanDeleteConcurrency, per spec §4.C.
func (b *BackendDataStore) DeleteRowsWithPrefix(ctx context.Context, table, prefix string) Status {
	if table == "" {
		return StatusInvalidArguments
	}

	var nativelySupported bool
	st := b.withRetry(ctx, "DeleteRowsWithPrefix", func() error {
		ok, err := b.client.DeleteRowsWithPrefix(ctx, table, prefix)
		nativelySupported = ok
		return err
	})
	if st != StatusOK {
		return st
	}
	if nativelySupported {
		return StatusOK
	}

	return b.scanAndDeletePrefix(ctx, table, prefix)
}

func (b *BackendDataStore) scanAndDeletePrefix(ctx context.Context, table, prefix string) Status {
	limit := successorOfPrefix(prefix)
	cursor := prefix
	for {
		var page []Row
		var hasMore bool
		st := b.withRetry(ctx, "ScanDelete:ReadRows", func() error {
			p, hm, err := b.client.ReadRows(ctx, table, cursor, limit, []string{}, b.cfg.ScanDeletePageSize)
			page, hasMore = p, hm
			return err
		})
		if st != StatusOK {
			return st
		}
		if len(page) == 0 {
			return StatusOK
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.cfg.ScanDeleteConcurrency)
		for _, row := range page {
			row := row
			g.Go(func() error {
				if st := b.withRetry(gctx, "ScanDelete:DeleteRow", func() error {
					return b.client.DeleteRow(gctx, table, row.Key)
				}); st != StatusOK {
					return errors.New("delete of row " + row.Key + ": " + st.String())
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Error("obsstore backend: scan-and-delete page failed", "table", table, "prefix", prefix, "err", err)
			return StatusOperationFailed
		}
		RowsDeleted.WithLabelValues(table).Add(float64(len(page)))

		if !hasMore {
			return StatusOK
		}
		cursor = page[len(page)-1].Key + "\x00"
	}
}

// successorOfPrefix returns the lexicographic upper bound for a scan over
// every key beginning with prefix: the prefix with any trailing 0xFF bytes
// removed and its new last byte incremented. It returns "" (no upper bound)
// only when prefix is empty or consists solely of 0xFF bytes.
func successorOfPrefix(prefix string) string {
	b := []byte(prefix)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] != 0xFF {
			b[i]++
			return string(b[:i+1])
		}
	}
	return ""
}

func (b *BackendDataStore) DeleteAllRows(ctx context.Context, table string) Status {
	if table == "" {
		return StatusInvalidArguments
	}
	return b.withRetry(ctx, "DeleteAllRows", func() error {
		return b.client.DeleteAllRows(ctx, table)
	})
}

var _ DataStore = (*BackendDataStore)(nil)
