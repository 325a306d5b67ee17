package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/inference-sim/twincity/sim"
	"github.com/inference-sim/twincity/sim/montecarlo"
)

// ErrRunNotFound is returned when a run id is not in the database.
var ErrRunNotFound = errors.New("run not found")

// RunRecord is one stored Monte Carlo run.
type RunRecord struct {
	ID         string
	CreatedAt  time.Time
	Scenario   sim.Scenario
	Rounds     int
	Seed       int64
	PairChecks int64
	Elapsed    time.Duration
	ConfigYAML string
	Series     sim.Series // empty in ListRuns results
}

// NewRunRecord snapshots a finished run. The id is assigned by SaveRun.
func NewRunRecord(cfg sim.Config, res *montecarlo.Result) (RunRecord, error) {
	data, err := cfg.YAML()
	if err != nil {
		return RunRecord{}, fmt.Errorf("encoding config: %w", err)
	}
	return RunRecord{
		Scenario:   res.Scenario,
		Rounds:     len(res.Rounds),
		Seed:       cfg.Seed,
		PairChecks: res.PairChecks,
		Elapsed:    res.Elapsed,
		ConfigYAML: string(data),
		Series:     res.Mean,
	}, nil
}

// Config decodes the stored configuration snapshot over sim.DefaultConfig().
func (r RunRecord) Config() (sim.Config, error) {
	cfg := sim.DefaultConfig()
	if err := yaml.Unmarshal([]byte(r.ConfigYAML), &cfg); err != nil {
		return cfg, fmt.Errorf("decoding config of run %s: %w", r.ID, err)
	}
	return cfg, nil
}

// SQLiteStore keeps runs in a SQLite database file.
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore creates a store for path. Call Init before use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

// Init opens the database and creates the schema. Safe to call twice.
func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return err
	}

	s.db = db
	return nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.db == nil {
		return nil, errors.New("sqlite store is not initialized")
	}
	return s.db, nil
}

// SaveRun inserts rec and its series in one transaction. An empty ID is
// replaced by a new UUID and a zero CreatedAt by the current time; both are
// written back to rec.
func (s *SQLiteStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, scenario, rounds, seed, pair_checks, elapsed_ns, config)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.CreatedAt.UTC().Format(timeLayout), int(rec.Scenario), rec.Rounds, rec.Seed,
		rec.PairChecks, int64(rec.Elapsed), rec.ConfigYAML)
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", rec.ID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO checkpoints (run_id, step, local_real, local_detected, local_active, passengers)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare checkpoint insert: %w", err)
	}
	defer stmt.Close()
	for _, c := range rec.Series {
		if _, err := stmt.ExecContext(ctx, rec.ID, c.Step,
			nullable(c.LocalReal), nullable(c.LocalDetected), nullable(c.LocalActive), nullable(c.Passengers)); err != nil {
			return fmt.Errorf("failed to insert checkpoint %d of run %s: %w", c.Step, rec.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", rec.ID, err)
	}
	logrus.Debugf("[store] Saved run %s with %d checkpoints", rec.ID, len(rec.Series))
	return nil
}

// GetRun loads a run and its series. Unknown ids wrap ErrRunNotFound.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return RunRecord{}, err
	}

	rec, err := scanRun(db.QueryRowContext(ctx, selectRun+` WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}

	rows, err := db.QueryContext(ctx, `
		SELECT step, local_real, local_detected, local_active, passengers
		FROM checkpoints WHERE run_id = ? ORDER BY step
	`, id)
	if err != nil {
		return RunRecord{}, fmt.Errorf("failed to load checkpoints of run %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			c                                      sim.Checkpoint
			infected, detected, active, passengers sql.NullFloat64
		)
		if err := rows.Scan(&c.Step, &infected, &detected, &active, &passengers); err != nil {
			return RunRecord{}, fmt.Errorf("failed to scan checkpoint of run %s: %w", id, err)
		}
		c.LocalReal = orNaN(infected)
		c.LocalDetected = orNaN(detected)
		c.LocalActive = orNaN(active)
		c.Passengers = orNaN(passengers)
		rec.Series = append(rec.Series, c)
	}
	return rec, rows.Err()
}

// ListRuns returns every run without its series, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]RunRecord, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, selectRun+` ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunRecord
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, rec)
	}
	return runs, rows.Err()
}

// DeleteRun removes a run and its checkpoints. Unknown ids wrap ErrRunNotFound.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	res, err := db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

// timeLayout has fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const selectRun = `SELECT id, created_at, scenario, rounds, seed, pair_checks, elapsed_ns, config FROM runs`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var (
		rec       RunRecord
		createdAt string
		scenario  int
		elapsed   int64
	)
	if err := row.Scan(&rec.ID, &createdAt, &scenario, &rec.Rounds, &rec.Seed, &rec.PairChecks, &elapsed, &rec.ConfigYAML); err != nil {
		return RunRecord{}, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return RunRecord{}, fmt.Errorf("parsing created_at of run %s: %w", rec.ID, err)
	}
	rec.CreatedAt = t
	rec.Scenario = sim.Scenario(scenario)
	rec.Elapsed = time.Duration(elapsed)
	return rec, nil
}

func nullable(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
