package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/madhavxchaturvedi/ShadowTalk-sub000/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id          TEXT PRIMARY KEY,
	shadow      TEXT NOT NULL,
	level       INTEGER NOT NULL DEFAULT 1,
	points      INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE IF NOT EXISTS rooms (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	topic       TEXT NOT NULL DEFAULT '',
	creator_id  TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS room_members (
	room_id     TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	PRIMARY KEY (room_id, user_id)
);
CREATE TABLE IF NOT EXISTS messages (
	id          TEXT PRIMARY KEY,
	room_id     TEXT NOT NULL,
	sender_id   TEXT NOT NULL,
	shadow      TEXT NOT NULL,
	content     TEXT NOT NULL,
	parent_id   TEXT NOT NULL DEFAULT '',
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_room ON messages(room_id, created_at);
CREATE TABLE IF NOT EXISTS direct_messages (
	id           TEXT PRIMARY KEY,
	sender_id    TEXT NOT NULL,
	recipient_id TEXT NOT NULL,
	shadow       TEXT NOT NULL,
	content      TEXT NOT NULL,
	created_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_dms_pair ON direct_messages(sender_id, recipient_id, created_at);
CREATE TABLE IF NOT EXISTS reactions (
	message_id  TEXT NOT NULL,
	user_id     TEXT NOT NULL,
	emoji       TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	PRIMARY KEY (message_id, user_id, emoji)
);
`

// SQLite is the Store implementation over modernc.org/sqlite.
type SQLite struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and applies the schema.
// Use ":memory:" in tests.
func Open(path string) (*SQLite, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := path
	if path != ":memory:" {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func toMillis(t time.Time) int64   { return t.UTC().UnixMilli() }
func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

func (s *SQLite) CreateUser(ctx context.Context, u *domain.User) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (id, shadow, level, points) VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET shadow = excluded.shadow`,
		string(u.ID), u.Shadow, max(u.Level, 1), u.Points)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *SQLite) GetUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx,
		`SELECT id, shadow, level, points FROM users WHERE id = ?`, string(id)).
		Scan(&u.ID, &u.Shadow, &u.Level, &u.Points)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

// AddPoints bumps reputation and recomputes the level (100 points each).
func (s *SQLite) AddPoints(ctx context.Context, id domain.UserID, delta int) error {
	res, err := s.db.ExecContext(ctx, `
UPDATE users SET points = points + ?, level = 1 + (points + ?) / 100 WHERE id = ?`,
		delta, delta, string(id))
	if err != nil {
		return fmt.Errorf("add points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLite) CreateRoom(ctx context.Context, r *domain.Room) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO rooms (id, name, topic, creator_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		string(r.ID), string(r.Name), r.Topic, string(r.CreatorID), toMillis(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	// Creator is a member from the start.
	return s.AddRoomMember(ctx, r.ID, r.CreatorID)
}

func (s *SQLite) ListRooms(ctx context.Context) ([]domain.Room, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, topic, creator_id, created_at FROM rooms ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()
	var out []domain.Room
	for rows.Next() {
		var r domain.Room
		var created int64
		if err := rows.Scan(&r.ID, &r.Name, &r.Topic, &r.CreatorID, &created); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		r.CreatedAt = fromMillis(created)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLite) AddRoomMember(ctx context.Context, rid domain.RoomID, uid domain.UserID) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO room_members (room_id, user_id) VALUES (?, ?)
ON CONFLICT(room_id, user_id) DO NOTHING`, string(rid), string(uid))
	if err != nil {
		return fmt.Errorf("add room member: %w", err)
	}
	return nil
}

func (s *SQLite) IsRoomMember(ctx context.Context, rid domain.RoomID, uid domain.UserID) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM room_members WHERE room_id = ? AND user_id = ?`,
		string(rid), string(uid)).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("room membership: %w", err)
	}
	return true, nil
}

func (s *SQLite) SaveMessage(ctx context.Context, m *domain.Message) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO messages (id, room_id, sender_id, shadow, content, parent_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
		string(m.ID), string(m.RoomID), string(m.SenderID), m.Shadow,
		m.Content, string(m.ParentID), toMillis(m.CreatedAt))
	if err != nil {
		return fmt.Errorf("save message: %w", err)
	}
	return nil
}

func (s *SQLite) GetMessage(ctx context.Context, id domain.MessageID) (*domain.Message, error) {
	var m domain.Message
	var created int64
	err := s.db.QueryRowContext(ctx, `
SELECT id, room_id, sender_id, shadow, content, parent_id, created_at
FROM messages WHERE id = ?`, string(id)).
		Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Shadow, &m.Content, &m.ParentID, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	m.CreatedAt = fromMillis(created)
	return &m, nil
}

func (s *SQLite) RoomMessages(ctx context.Context, rid domain.RoomID, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, room_id, sender_id, shadow, content, parent_id, created_at
FROM messages WHERE room_id = ? ORDER BY created_at DESC LIMIT ?`,
		string(rid), limit)
	if err != nil {
		return nil, fmt.Errorf("room messages: %w", err)
	}
	defer rows.Close()
	var out []domain.Message
	for rows.Next() {
		var m domain.Message
		var created int64
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Shadow, &m.Content, &m.ParentID, &created); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.CreatedAt = fromMillis(created)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (s *SQLite) SaveDirectMessage(ctx context.Context, dm *domain.DirectMessage) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO direct_messages (id, sender_id, recipient_id, shadow, content, created_at)
VALUES (?, ?, ?, ?, ?, ?)`,
		string(dm.ID), string(dm.SenderID), string(dm.RecipientID), dm.Shadow,
		dm.Content, toMillis(dm.CreatedAt))
	if err != nil {
		return fmt.Errorf("save dm: %w", err)
	}
	return nil
}

func (s *SQLite) Conversation(ctx context.Context, a, b domain.UserID, limit int) ([]domain.DirectMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, sender_id, recipient_id, shadow, content, created_at
FROM direct_messages
WHERE (sender_id = ? AND recipient_id = ?) OR (sender_id = ? AND recipient_id = ?)
ORDER BY created_at DESC LIMIT ?`,
		string(a), string(b), string(b), string(a), limit)
	if err != nil {
		return nil, fmt.Errorf("conversation: %w", err)
	}
	defer rows.Close()
	var out []domain.DirectMessage
	for rows.Next() {
		var dm domain.DirectMessage
		var created int64
		if err := rows.Scan(&dm.ID, &dm.SenderID, &dm.RecipientID, &dm.Shadow, &dm.Content, &created); err != nil {
			return nil, fmt.Errorf("scan dm: %w", err)
		}
		dm.CreatedAt = fromMillis(created)
		out = append(out, dm)
	}
	return out, rows.Err()
}

func (s *SQLite) AddReaction(ctx context.Context, r *domain.Reaction) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO reactions (message_id, user_id, emoji, created_at) VALUES (?, ?, ?, ?)
ON CONFLICT(message_id, user_id, emoji) DO NOTHING`,
		string(r.MessageID), string(r.UserID), r.Emoji, toMillis(r.CreatedAt))
	if err != nil {
		return fmt.Errorf("add reaction: %w", err)
	}
	return nil
}

func (s *SQLite) MessageReactions(ctx context.Context, id domain.MessageID) ([]domain.Reaction, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT message_id, user_id, emoji, created_at FROM reactions
WHERE message_id = ? ORDER BY created_at`, string(id))
	if err != nil {
		return nil, fmt.Errorf("message reactions: %w", err)
	}
	defer rows.Close()
	var out []domain.Reaction
	for rows.Next() {
		var r domain.Reaction
		var created int64
		if err := rows.Scan(&r.MessageID, &r.UserID, &r.Emoji, &created); err != nil {
			return nil, fmt.Errorf("scan reaction: %w", err)
		}
		r.CreatedAt = fromMillis(created)
		out = append(out, r)
	}
	return out, rows.Err()
}
