package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/zhouzirui/onboard/internal/model/onboarding"
)

// SQLiteStore implements Repository using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) the database at dbPath.
func NewSQLite(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL lets the REST endpoints read while a conversation is writing.
	dsn := dbPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		completed_at INTEGER,
		current_step TEXT NOT NULL,
		is_complete INTEGER NOT NULL DEFAULT 0,
		zip_code TEXT NOT NULL DEFAULT '',
		full_name TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		license_type TEXT NOT NULL DEFAULT '',
		license_status TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_started ON sessions(started_at);

	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		content TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_records_session ON records(session_id, seq);

	CREATE TABLE IF NOT EXISTS vehicles (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		vin TEXT NOT NULL,
		use_type TEXT NOT NULL,
		blind_spot TEXT NOT NULL,
		commute_days TEXT NOT NULL DEFAULT '',
		commute_miles TEXT NOT NULL DEFAULT '',
		annual_mileage TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_vehicles_session ON vehicles(session_id, seq);
	`
	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Ping verifies database connectivity.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) CreateSession(ctx context.Context) (onboarding.Session, error) {
	session := onboarding.Session{
		ID:          uuid.NewString(),
		StartedAt:   time.Now().UTC(),
		CurrentStep: onboarding.StepZip,
	}

	query := `INSERT INTO sessions (id, started_at, current_step) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, query, session.ID, session.StartedAt.UnixNano(), string(session.CurrentStep)); err != nil {
		return onboarding.Session{}, fmt.Errorf("insert session: %w", err)
	}
	return session, nil
}

const sessionColumns = `id, started_at, completed_at, current_step, is_complete,
	zip_code, full_name, email, license_type, license_status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (onboarding.Session, error) {
	var session onboarding.Session
	var startedAt int64
	var completedAt sql.NullInt64
	var step string

	err := row.Scan(
		&session.ID, &startedAt, &completedAt, &step, &session.IsComplete,
		&session.ZipCode, &session.FullName, &session.Email,
		&session.LicenseType, &session.LicenseStatus,
	)
	if err != nil {
		return onboarding.Session{}, err
	}

	session.StartedAt = time.Unix(0, startedAt).UTC()
	session.CurrentStep = onboarding.Step(step)
	if completedAt.Valid {
		t := time.Unix(0, completedAt.Int64).UTC()
		session.CompletedAt = &t
	}
	return session, nil
}

func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (onboarding.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, sessionID)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return onboarding.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return onboarding.Session{}, fmt.Errorf("scan session row: %w", err)
	}
	return session, nil
}

func (s *SQLiteStore) UpdateSession(ctx context.Context, session onboarding.Session) error {
	query := `
	UPDATE sessions SET
		completed_at = ?, current_step = ?, is_complete = ?,
		zip_code = ?, full_name = ?, email = ?, license_type = ?, license_status = ?
	WHERE id = ?`

	var completedAt any
	if session.CompletedAt != nil {
		completedAt = session.CompletedAt.UnixNano()
	}

	result, err := s.db.ExecContext(ctx, query,
		completedAt, string(session.CurrentStep), session.IsComplete,
		session.ZipCode, session.FullName, session.Email, session.LicenseType, session.LicenseStatus,
		session.ID,
	)
	if err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (s *SQLiteStore) ListSessions(ctx context.Context, filter ListFilter) ([]onboarding.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions`
	var args []any
	if filter.Complete != nil {
		query += ` WHERE is_complete = ?`
		args = append(args, *filter.Complete)
	}
	query += ` ORDER BY started_at, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := make([]onboarding.Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func (s *SQLiteStore) SaveRecord(ctx context.Context, record onboarding.Record) error {
	if record.SessionID == "" {
		return ErrSessionNotFound
	}
	if err := s.requireSession(ctx, record.SessionID); err != nil {
		return err
	}

	record.ID = uuid.NewString()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO records (id, session_id, role, content, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, record.ID, record.SessionID, string(record.Role), record.Content, record.CreatedAt.UnixNano())
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (s *SQLiteStore) LoadTranscript(ctx context.Context, sessionID string) ([]onboarding.Record, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}

	query := `SELECT id, session_id, role, content, created_at FROM records WHERE session_id = ? ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	records := make([]onboarding.Record, 0, 16)
	for rows.Next() {
		var rec onboarding.Record
		var role string
		var createdAt int64
		if err := rows.Scan(&rec.ID, &rec.SessionID, &role, &rec.Content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan record row: %w", err)
		}
		rec.Role = onboarding.Role(role)
		rec.CreatedAt = time.Unix(0, createdAt).UTC()
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *SQLiteStore) SaveVehicle(ctx context.Context, sessionID string, vehicle onboarding.Vehicle) error {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return err
	}
	if vehicle.CreatedAt.IsZero() {
		vehicle.CreatedAt = time.Now().UTC()
	}

	query := `
	INSERT INTO vehicles (session_id, vin, use_type, blind_spot, commute_days, commute_miles, annual_mileage, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query,
		sessionID, vehicle.VIN, vehicle.Use, vehicle.BlindSpot,
		vehicle.CommuteDays, vehicle.CommuteMiles, vehicle.AnnualMileage,
		vehicle.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert vehicle: %w", err)
	}
	return nil
}

func (s *SQLiteStore) ListVehicles(ctx context.Context, sessionID string) ([]onboarding.Vehicle, error) {
	if err := s.requireSession(ctx, sessionID); err != nil {
		return nil, err
	}

	query := `
	SELECT vin, use_type, blind_spot, commute_days, commute_miles, annual_mileage, created_at
	FROM vehicles WHERE session_id = ? ORDER BY seq`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := make([]onboarding.Vehicle, 0)
	for rows.Next() {
		var v onboarding.Vehicle
		var createdAt int64
		if err := rows.Scan(&v.VIN, &v.Use, &v.BlindSpot, &v.CommuteDays, &v.CommuteMiles, &v.AnnualMileage, &createdAt); err != nil {
			return nil, fmt.Errorf("scan vehicle row: %w", err)
		}
		v.CreatedAt = time.Unix(0, createdAt).UTC()
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

func (s *SQLiteStore) requireSession(ctx context.Context, sessionID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSessionNotFound
	}
	if err != nil {
		return fmt.Errorf("lookup session: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
