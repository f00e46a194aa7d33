package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS generations (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    request_id  TEXT NOT NULL,
    created_at  TEXT NOT NULL,
    voice       TEXT NOT NULL,
    lang_code   TEXT NOT NULL,
    speed       REAL NOT NULL,
    text_chars  INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    status      TEXT NOT NULL,
    message     TEXT,
    audio_file  TEXT
);
CREATE INDEX IF NOT EXISTS idx_generations_created_at ON generations(created_at);
`

// Store manages generation history backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// OpenReadOnly connects for querying without creating or migrating anything.
// Used by the CLI so it never fights the daemon over the schema.
func OpenReadOnly(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append inserts one generation record.
func (s *Store) Append(ctx context.Context, rec Record) error {
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO generations (
            request_id, created_at, voice, lang_code, speed,
            text_chars, duration_ms, status, message, audio_file
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RequestID,
		createdAt.Format(time.RFC3339Nano),
		rec.Voice,
		rec.LangCode,
		rec.Speed,
		rec.TextChars,
		rec.Duration.Milliseconds(),
		string(rec.Status),
		nullableString(rec.Message),
		nullableString(rec.AudioFile),
	)
	if err != nil {
		return fmt.Errorf("insert generation: %w", err)
	}
	return nil
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, request_id, created_at, voice, lang_code, speed,
                text_chars, duration_ms, status, message, audio_file
           FROM generations ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query generations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			rec        Record
			createdAt  string
			durationMS int64
			status     string
			message    sql.NullString
			audioFile  sql.NullString
		)
		if err := rows.Scan(
			&rec.ID, &rec.RequestID, &createdAt, &rec.Voice, &rec.LangCode,
			&rec.Speed, &rec.TextChars, &durationMS, &status, &message, &audioFile,
		); err != nil {
			return nil, fmt.Errorf("scan generation: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339Nano, createdAt); err == nil {
			rec.CreatedAt = ts
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		rec.Status = Status(status)
		rec.Message = message.String
		rec.AudioFile = audioFile.String
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate generations: %w", err)
	}
	return records, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}
