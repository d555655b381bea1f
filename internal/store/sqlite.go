package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"skillbridge/internal/assessment"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Open opens (creating if needed) the database at path and applies
// pending migrations.
func Open(ctx context.Context, path string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("store: create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}
	// SQLite allows a single writer; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:     db,
		logger: logger.Named("store"),
		now:    time.Now,
		newID:  uuid.NewString,
	}

	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	s.logger.Info("store ready", zap.String("path", path))
	return s, nil
}

const recordColumns = "id, raw_input, artifact, secondary, created_at, updated_at"

func (s *SQLiteStore) Create(ctx context.Context, rawInput string) (assessment.Record, error) {
	now := s.now().UTC()
	rec := assessment.Record{
		ID:        s.newID(),
		RawInput:  rawInput,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id, raw_input, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		rec.ID, rec.RawInput, formatTime(now), formatTime(now),
	)
	if err != nil {
		return assessment.Record{}, fmt.Errorf("store: insert assessment: %w", err)
	}
	return rec, nil
}

func (s *SQLiteStore) GetExact(ctx context.Context, id string) (assessment.Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM assessments WHERE id = ?`, id)

	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return assessment.Record{}, ErrNotFound
	}
	if err != nil {
		return assessment.Record{}, fmt.Errorf("store: get assessment %q: %w", id, err)
	}
	return rec, nil
}

func (s *SQLiteStore) GetFuzzy(ctx context.Context, pattern string, limit int) ([]assessment.Record, error) {
	if strings.TrimSpace(pattern) == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 1
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM assessments
		 WHERE id LIKE ? ESCAPE '\'
		 ORDER BY updated_at DESC
		 LIMIT ?`,
		"%"+escapeLike(pattern)+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("store: fuzzy query: %w", err)
	}
	defer rows.Close()

	var out []assessment.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("store: scan fuzzy row: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: fuzzy rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AttachArtifact(ctx context.Context, id string, a assessment.Assessment) error {
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("store: encode artifact: %w", err)
	}
	return s.update(ctx, id, "artifact", string(raw))
}

func (s *SQLiteStore) AttachSecondary(ctx context.Context, id string, raw json.RawMessage) error {
	if !json.Valid(raw) {
		return fmt.Errorf("store: secondary artifact is not valid JSON")
	}
	return s.update(ctx, id, "secondary", string(raw))
}

// update writes one JSON column; column is always a literal from this file.
func (s *SQLiteStore) update(ctx context.Context, id, column, value string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET `+column+` = ?, updated_at = ? WHERE id = ?`,
		value, formatTime(s.now().UTC()), id,
	)
	if err != nil {
		return fmt.Errorf("store: update %s: %w", column, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: update %s: %w", column, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(sc scanner) (assessment.Record, error) {
	var (
		rec                  assessment.Record
		artifact, secondary  sql.NullString
		createdAt, updatedAt string
	)
	if err := sc.Scan(&rec.ID, &rec.RawInput, &artifact, &secondary, &createdAt, &updatedAt); err != nil {
		return assessment.Record{}, err
	}

	if artifact.Valid && artifact.String != "" {
		var a assessment.Assessment
		if err := json.Unmarshal([]byte(artifact.String), &a); err != nil {
			return assessment.Record{}, fmt.Errorf("decode artifact: %w", err)
		}
		rec.Artifact = &a
	}
	if secondary.Valid && secondary.String != "" {
		rec.Secondary = json.RawMessage(secondary.String)
	}

	var err error
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return assessment.Record{}, err
	}
	if rec.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return assessment.Record{}, err
	}
	return rec, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
