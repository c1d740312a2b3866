package convlog

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteStore persists the conversation log in a local SQLite file. This is
// the default backend; the file plays the role of the classic
// conversation.db next to the binary.
type SQLiteStore struct {
	mu sync.Mutex
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}
	if err := initSQLiteSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initSQLiteSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT NOT NULL,
		user_text TEXT NOT NULL,
		ai_text TEXT NOT NULL
	);`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("init sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Append(ctx context.Context, userText, aiText string) (Turn, error) {
	// Serialize appends so id assignment stays race-free across callers.
	s.mu.Lock()
	defer s.mu.Unlock()

	ts := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO messages (timestamp, user_text, ai_text) VALUES (?, ?, ?)`,
		ts.Format(time.RFC3339Nano), userText, aiText,
	)
	if err != nil {
		return Turn{}, fmt.Errorf("append turn: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Turn{}, fmt.Errorf("read turn id: %w", err)
	}
	return Turn{ID: id, Timestamp: ts, UserText: userText, AIText: aiText}, nil
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Turn, error) {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, timestamp, user_text, ai_text FROM messages ORDER BY id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query recent turns: %w", err)
	}
	defer rows.Close()

	turns := make([]Turn, 0, limit)
	for rows.Next() {
		var t Turn
		var ts string
		if err := rows.Scan(&t.ID, &ts, &t.UserText, &t.AIText); err != nil {
			return nil, fmt.Errorf("scan turn row: %w", err)
		}
		t.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("parse turn timestamp %q: %w", ts, err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate turn rows: %w", err)
	}

	reverseTurns(turns)
	return turns, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// reverseTurns flips a DESC-ordered result into chronological order.
func reverseTurns(turns []Turn) {
	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
}
