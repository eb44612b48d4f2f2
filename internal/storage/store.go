// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides local conversation persistence for driftline.
//
// Conversations, messages, and citations are stored in a SQLite database
// under the config directory. Only finished assistant messages are
// persisted; in-flight streaming state lives in memory.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/driftline/internal/model"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNotFound indicates the conversation does not exist locally.
	ErrNotFound = errors.New("conversation not found")
)

// =============================================================================
// SCHEMA
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS conversations (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
	seq             INTEGER NOT NULL,
	role            TEXT NOT NULL,
	content         TEXT NOT NULL,
	status          TEXT NOT NULL,
	err_message     TEXT NOT NULL DEFAULT '',
	timestamp       TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS citations (
	message_id  TEXT NOT NULL REFERENCES messages(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	cite_id     INTEGER NOT NULL,
	url         TEXT NOT NULL,
	root_url    TEXT NOT NULL,
	title       TEXT NOT NULL,
	snippet     TEXT NOT NULL DEFAULT '',
	favicon_url TEXT NOT NULL DEFAULT '',
	source_type TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (message_id, position)
);

CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, seq);
`

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// Meta summarizes a stored conversation for listing.
type Meta struct {
	ID           string
	Title        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	MessageCount int
}

// Store persists conversations in SQLite.
type Store struct {
	db *sql.DB

	// maxConversations bounds the archive; 0 means unlimited.
	maxConversations int
}

// Open opens (or creates) the database at path.
func Open(path string, maxConversations int) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite supports one writer at a time; keep the pool small.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &Store{db: db, maxConversations: maxConversations}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// =============================================================================
// SAVE
// =============================================================================

// Save upserts a conversation with all its messages and citations.
// Messages are rewritten wholesale inside one transaction; a
// conversation is small and correctness beats cleverness here.
func (s *Store) Save(conv *model.Conversation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		conv.ID, conv.Title, conv.CreatedAt, conv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("failed to clear messages: %w", err)
	}

	for seq, msg := range conv.Messages {
		_, err := tx.Exec(`
			INSERT INTO messages (id, conversation_id, seq, role, content, status, err_message, timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			msg.ID, conv.ID, seq, string(msg.Role), msg.Content, string(msg.Status), msg.ErrMessage, msg.Timestamp)
		if err != nil {
			return fmt.Errorf("failed to save message: %w", err)
		}
		for pos, c := range msg.Citations {
			_, err := tx.Exec(`
				INSERT INTO citations (message_id, position, cite_id, url, root_url, title, snippet, favicon_url, source_type)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				msg.ID, pos, c.ID, c.URL, c.RootURL, c.Title, c.Snippet, c.FaviconURL, c.SourceType)
			if err != nil {
				return fmt.Errorf("failed to save citation: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return s.prune()
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads a conversation with its messages and citations.
func (s *Store) Load(id string) (*model.Conversation, error) {
	conv := &model.Conversation{ID: id}

	err := s.db.QueryRow(`
		SELECT title, created_at, updated_at FROM conversations WHERE id = ?`, id).
		Scan(&conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, role, content, status, err_message, timestamp
		FROM messages WHERE conversation_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var msg model.Message
		var role, status string
		if err := rows.Scan(&msg.ID, &role, &msg.Content, &status, &msg.ErrMessage, &msg.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msg.Status = model.Status(status)
		conv.Messages = append(conv.Messages, &msg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	for _, msg := range conv.Messages {
		if err := s.loadCitations(msg); err != nil {
			return nil, err
		}
	}
	return conv, nil
}

func (s *Store) loadCitations(msg *model.Message) error {
	rows, err := s.db.Query(`
		SELECT cite_id, url, root_url, title, snippet, favicon_url, source_type
		FROM citations WHERE message_id = ? ORDER BY position`, msg.ID)
	if err != nil {
		return fmt.Errorf("failed to load citations: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Citation
		if err := rows.Scan(&c.ID, &c.URL, &c.RootURL, &c.Title, &c.Snippet, &c.FaviconURL, &c.SourceType); err != nil {
			return fmt.Errorf("failed to scan citation: %w", err)
		}
		msg.Citations = append(msg.Citations, c)
	}
	return rows.Err()
}

// =============================================================================
// LIST / SEARCH / DELETE
// =============================================================================

// List returns conversation summaries, most recently updated first.
func (s *Store) List() ([]Meta, error) {
	rows, err := s.db.Query(`
		SELECT c.id, c.title, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id)
		FROM conversations c
		ORDER BY c.updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.Title, &m.CreatedAt, &m.UpdatedAt, &m.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Search returns conversations whose title or message content matches
// the query, most recently updated first.
func (s *Store) Search(query string) ([]Meta, error) {
	pattern := "%" + query + "%"
	rows, err := s.db.Query(`
		SELECT DISTINCT c.id, c.title, c.created_at, c.updated_at,
		       (SELECT COUNT(*) FROM messages m2 WHERE m2.conversation_id = c.id)
		FROM conversations c
		LEFT JOIN messages m ON m.conversation_id = c.id
		WHERE c.title LIKE ? OR m.content LIKE ?
		ORDER BY c.updated_at DESC`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to search conversations: %w", err)
	}
	defer rows.Close()

	var metas []Meta
	for rows.Next() {
		var m Meta
		if err := rows.Scan(&m.ID, &m.Title, &m.CreatedAt, &m.UpdatedAt, &m.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		metas = append(metas, m)
	}
	return metas, rows.Err()
}

// Delete removes a conversation and its messages.
func (s *Store) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM conversations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Clear removes all conversations.
func (s *Store) Clear() error {
	_, err := s.db.Exec(`DELETE FROM conversations`)
	return err
}

// prune drops the oldest conversations beyond the configured cap.
func (s *Store) prune() error {
	if s.maxConversations <= 0 {
		return nil
	}
	_, err := s.db.Exec(`
		DELETE FROM conversations WHERE id IN (
			SELECT id FROM conversations
			ORDER BY updated_at DESC
			LIMIT -1 OFFSET ?
		)`, s.maxConversations)
	if err != nil {
		return fmt.Errorf("failed to prune conversations: %w", err)
	}
	return nil
}
