// Package store persists per-chat settings, the chat registry, and spam
// warning counters in a local SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

type Settings struct {
	ChatID      int64
	Enabled     bool
	WelcomeText string
}

type Chat struct {
	ID    int64
	Title string
}

type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path, ensuring the parent
// directory exists, and applies the schema.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db at %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db at %s: %w", path, err)
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS chat_settings (
			chat_id INTEGER PRIMARY KEY,
			enabled INTEGER NOT NULL DEFAULT 1,
			welcome_text TEXT NOT NULL DEFAULT '',
			updated_at INTEGER NOT NULL DEFAULT (unixepoch())
		);

		CREATE TABLE IF NOT EXISTS chats (
			chat_id INTEGER PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			first_seen_at INTEGER NOT NULL DEFAULT (unixepoch())
		);

		CREATE TABLE IF NOT EXISTS warnings (
			chat_id INTEGER NOT NULL,
			user_id INTEGER NOT NULL,
			count INTEGER NOT NULL DEFAULT 0,
			updated_at INTEGER NOT NULL DEFAULT (unixepoch()),
			PRIMARY KEY (chat_id, user_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// ChatSettings returns the settings row for chatID, creating a
// default-enabled record when none exists.
func (s *Store) ChatSettings(ctx context.Context, chatID int64) (Settings, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO chat_settings (chat_id) VALUES (?) ON CONFLICT(chat_id) DO NOTHING`, chatID)
	if err != nil {
		return Settings{}, fmt.Errorf("upsert chat settings %d: %w", chatID, err)
	}

	var out Settings
	var enabled int
	row := s.db.QueryRowContext(ctx,
		`SELECT chat_id, enabled, welcome_text FROM chat_settings WHERE chat_id = ?`, chatID)
	if err := row.Scan(&out.ChatID, &enabled, &out.WelcomeText); err != nil {
		return Settings{}, fmt.Errorf("load chat settings %d: %w", chatID, err)
	}
	out.Enabled = enabled != 0
	return out, nil
}

func (s *Store) SetChatEnabled(ctx context.Context, chatID int64, enabled bool) error {
	v := 0
	if enabled {
		v = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_settings (chat_id, enabled) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET enabled = excluded.enabled, updated_at = unixepoch()`,
		chatID, v)
	if err != nil {
		return fmt.Errorf("set chat %d enabled=%v: %w", chatID, enabled, err)
	}
	return nil
}

func (s *Store) SetWelcome(ctx context.Context, chatID int64, text string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chat_settings (chat_id, welcome_text) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET welcome_text = excluded.welcome_text, updated_at = unixepoch()`,
		chatID, text)
	if err != nil {
		return fmt.Errorf("set welcome for chat %d: %w", chatID, err)
	}
	return nil
}

// Welcome returns the stored template, or "" when none is set.
func (s *Store) Welcome(ctx context.Context, chatID int64) (string, error) {
	var text string
	row := s.db.QueryRowContext(ctx,
		`SELECT welcome_text FROM chat_settings WHERE chat_id = ?`, chatID)
	if err := row.Scan(&text); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("load welcome for chat %d: %w", chatID, err)
	}
	return text, nil
}

// SaveChat registers a chat in the broadcast registry. Idempotent; the
// title follows the latest observed value.
func (s *Store) SaveChat(ctx context.Context, chatID int64, title string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO chats (chat_id, title) VALUES (?, ?)
		ON CONFLICT(chat_id) DO UPDATE SET title = excluded.title`,
		chatID, title)
	if err != nil {
		return fmt.Errorf("save chat %d: %w", chatID, err)
	}
	return nil
}

func (s *Store) AllChats(ctx context.Context) ([]Chat, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT chat_id, title FROM chats ORDER BY chat_id`)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []Chat
	for rows.Next() {
		var c Chat
		if err := rows.Scan(&c.ID, &c.Title); err != nil {
			return nil, fmt.Errorf("scan chat: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	return out, nil
}

// AddWarning increments the warning counter and returns the new count.
func (s *Store) AddWarning(ctx context.Context, chatID, userID int64) (int, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO warnings (chat_id, user_id, count) VALUES (?, ?, 1)
		ON CONFLICT(chat_id, user_id) DO UPDATE SET count = count + 1, updated_at = unixepoch()`,
		chatID, userID)
	if err != nil {
		return 0, fmt.Errorf("add warning %d/%d: %w", chatID, userID, err)
	}
	return s.Warnings(ctx, chatID, userID)
}

func (s *Store) Warnings(ctx context.Context, chatID, userID int64) (int, error) {
	var n int
	row := s.db.QueryRowContext(ctx,
		`SELECT count FROM warnings WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	if err := row.Scan(&n); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("load warnings %d/%d: %w", chatID, userID, err)
	}
	return n, nil
}

func (s *Store) ResetWarnings(ctx context.Context, chatID, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM warnings WHERE chat_id = ? AND user_id = ?`, chatID, userID)
	if err != nil {
		return fmt.Errorf("reset warnings %d/%d: %w", chatID, userID, err)
	}
	return nil
}
