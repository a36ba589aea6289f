package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"lockstep/internal/config"
)

// Store manages run persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

const runColumns = "id, created_at, reference_path, secondary_path, strategy, sample_rate, chunk_count, accepted_chunks, delay_ms, delay_raw, selection_method, selection_details, verdict, drift_slope, drift_r_squared, drift_description"

// Open initializes or connects to the history database and applies
// migrations.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "history.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:   db,
		path: dbPath,
		lock: flock.New(filepath.Join(cfg.Paths.StateDir, "history.lock")),
	}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// RecordRun inserts a run and its chunk rows in one transaction. A
// missing id or creation time is filled in. Writes serialize through
// the state-directory file lock.
func (s *Store) RecordRun(ctx context.Context, run Run) (*Run, error) {
	ctx = ensureContext(ctx)

	locked, err := s.lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire history lock: %w", err)
	}
	if !locked {
		return nil, errors.New("history lock held by another process")
	}
	defer func() { _ = s.lock.Unlock() }()

	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	timestamp := run.CreatedAt.UTC().Format(time.RFC3339Nano)

	err = retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin run tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO runs (`+runColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			timestamp,
			run.ReferencePath,
			run.SecondaryPath,
			run.Strategy,
			run.SampleRate,
			run.ChunkCount,
			run.AcceptedChunks,
			run.DelayMs,
			run.DelayRaw,
			run.SelectionMethod,
			nullableString(run.SelectionDetails),
			run.Verdict,
			run.DriftSlopeMsPerS,
			run.DriftRSquared,
			nullableString(run.DriftDescription),
		); err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		for _, chunk := range run.Chunks {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO run_chunks (run_id, chunk_index, start_time, delay_ms_raw, delay_ms, match_pct, accepted)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				run.ID,
				chunk.Index,
				chunk.StartTime,
				chunk.DelayMsRaw,
				chunk.DelayMsRounded,
				chunk.MatchPct,
				boolToInt(chunk.Accepted),
			); err != nil {
				return fmt.Errorf("insert chunk %d: %w", chunk.Index, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit run: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first, without chunk
// rows. A non-positive limit defaults to 20.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// FindRun resolves a run by id or unique id prefix and loads its chunk
// rows. A missing run returns nil without error; an ambiguous prefix is
// an error.
func (s *Store) FindRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, errors.New("empty run id")
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE id LIKE ? || '%' ORDER BY created_at DESC LIMIT 2`,
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("find run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		matches = append(matches, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, nil
	case 1:
	default:
		return nil, fmt.Errorf("run id %q is ambiguous", id)
	}

	run := matches[0]
	chunks, err := s.runChunks(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Chunks = chunks
	return &run, nil
}

func (s *Store) runChunks(ctx context.Context, runID string) ([]Chunk, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT chunk_index, start_time, delay_ms_raw, delay_ms, match_pct, accepted
		 FROM run_chunks WHERE run_id = ? ORDER BY chunk_index`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("load chunks: %w", err)
	}
	defer rows.Close()

	var chunks []Chunk
	for rows.Next() {
		var (
			chunk    Chunk
			accepted int64
		)
		if err := rows.Scan(&chunk.Index, &chunk.StartTime, &chunk.DelayMsRaw, &chunk.DelayMsRounded, &chunk.MatchPct, &accepted); err != nil {
			return nil, fmt.Errorf("scan chunk: %w", err)
		}
		chunk.Accepted = accepted != 0
		chunks = append(chunks, chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate chunks: %w", err)
	}
	return chunks, nil
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		run              Run
		createdRaw       string
		selectionDetails sql.NullString
		driftDescription sql.NullString
	)
	if err := scanner.Scan(
		&run.ID,
		&createdRaw,
		&run.ReferencePath,
		&run.SecondaryPath,
		&run.Strategy,
		&run.SampleRate,
		&run.ChunkCount,
		&run.AcceptedChunks,
		&run.DelayMs,
		&run.DelayRaw,
		&run.SelectionMethod,
		&selectionDetails,
		&run.Verdict,
		&run.DriftSlopeMsPerS,
		&run.DriftRSquared,
		&driftDescription,
	); err != nil {
		return nil, err
	}
	run.SelectionDetails = selectionDetails.String
	run.DriftDescription = driftDescription.String
	if created, err := parseTimeString(createdRaw); err == nil {
		run.CreatedAt = created
	}
	return &run, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
