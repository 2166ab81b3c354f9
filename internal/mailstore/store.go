package mailstore

import (
	"crypto/rand"
	"database/sql"
	"fmt"
	"time"

	"github.com/xcawolfe-amzn/overstory/internal/dbutil"
	"github.com/xcawolfe-amzn/overstory/internal/errs"
)

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	"from"     TEXT NOT NULL,
	"to"       TEXT NOT NULL,
	subject    TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	type       TEXT NOT NULL DEFAULT 'status',
	priority   TEXT NOT NULL DEFAULT 'normal',
	thread_id  TEXT NOT NULL DEFAULT '',
	payload    TEXT NOT NULL DEFAULT '',
	read       INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_to_read ON messages("to", read);
CREATE INDEX IF NOT EXISTS idx_messages_thread ON messages(thread_id);
`

// idAlphabet is lowercase alphanumeric; message ids are 12 characters
// drawn from it, cryptographically random.
const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Store is the mail bus.
type Store struct {
	db *sql.DB
}

// Open opens (creating if necessary) the mail database at path.
func Open(path string) (*Store, error) {
	db, err := dbutil.Open(path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close issues a best-effort passive checkpoint and closes the handle.
func (s *Store) Close() error {
	dbutil.Checkpoint(s.db)
	return s.db.Close()
}

// NewMessageID returns a fresh 12-character lowercase alphanumeric id.
func NewMessageID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is a fatal environment issue; fall back to
		// an id of twelve identical characters rather than panicking. That
		// id is the same on every such failure, so it is not unique.
		for i := range buf {
			buf[i] = idAlphabet[0]
		}
	}
	out := make([]byte, 12)
	for i, b := range buf {
		out[i] = idAlphabet[int(b)%len(idAlphabet)]
	}
	return string(out)
}

func fmtTime(t time.Time) string { return t.UTC().Format(time.RFC3339Nano) }
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

// Send inserts msg, assigning defaults and an id if the caller left one
// empty.
func (s *Store) Send(msg *Message) (*Message, error) {
	if msg.ID == "" {
		msg.ID = NewMessageID()
	}
	if msg.Type == "" {
		msg.Type = TypeStatus
	}
	if msg.Priority == "" {
		msg.Priority = PriorityNormal
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	_, err := s.db.Exec(`
		INSERT INTO messages (id, "from", "to", subject, body, type, priority, thread_id, payload, read, created_at)
		VALUES (?,?,?,?,?,?,?,?,?,0,?)`,
		msg.ID, msg.From, msg.To, msg.Subject, msg.Body, string(msg.Type), string(msg.Priority),
		msg.ThreadID, msg.Payload, fmtTime(msg.CreatedAt),
	)
	if err != nil {
		return nil, errs.Mailf(msg.ID, "sending message: %v", err)
	}
	return msg, nil
}

// SendProtocol encodes a typed Payload and sends it in the message's
// payload field (the body is left empty) for protocol message types.
func (s *Store) SendProtocol(from, to string, priority Priority, subject string, p Payload) (*Message, error) {
	raw, err := EncodePayload(p)
	if err != nil {
		return nil, errs.Mailf("", "encoding payload: %v", err)
	}
	return s.Send(&Message{
		From: from, To: to, Subject: subject, Type: p.MessageType(),
		Priority: priority, Payload: raw,
	})
}

func scanMessage(row interface{ Scan(...any) error }) (*Message, error) {
	var m Message
	var read int
	var createdAt string
	if err := row.Scan(&m.ID, &m.From, &m.To, &m.Subject, &m.Body, &m.Type, &m.Priority,
		&m.ThreadID, &m.Payload, &read, &createdAt); err != nil {
		return nil, err
	}
	m.Read = read != 0
	m.CreatedAt = parseTime(createdAt)
	return &m, nil
}

const selectCols = `id, "from", "to", subject, body, type, priority, thread_id, payload, read, created_at`

// Get returns the message with the given id, or nil if none.
func (s *Store) Get(id string) (*Message, error) {
	row := s.db.QueryRow("SELECT "+selectCols+" FROM messages WHERE id = ?", id)
	m, err := scanMessage(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return m, err
}

// Check drains the unread inbox for recipient: it returns every unread
// message ordered by created time ascending and marks them read in the
// same transaction, so a second concurrent Check can never return the
// same message twice.
func (s *Store) Check(recipient string) ([]*Message, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.Query("SELECT "+selectCols+` FROM messages WHERE "to" = ? AND read = 0 ORDER BY created_at ASC`, recipient)
	if err != nil {
		return nil, err
	}
	var out []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(out) > 0 {
		if _, err := tx.Exec(`UPDATE messages SET read = 1 WHERE "to" = ? AND read = 0`, recipient); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	for _, m := range out {
		m.Read = true
	}
	return out, nil
}

// MarkRead marks id read. Idempotent: returns alreadyRead=true on a
// second call without mutating other fields.
func (s *Store) MarkRead(id string) (alreadyRead bool, err error) {
	m, err := s.Get(id)
	if err != nil {
		return false, err
	}
	if m == nil {
		return false, errs.Mailf(id, "message not found")
	}
	if m.Read {
		return true, nil
	}
	_, err = s.db.Exec("UPDATE messages SET read = 1 WHERE id = ?", id)
	return false, err
}

// Reply constructs and sends a reply to an original message: recipient
// is "the other side" relative to fromIdentity, subject gets "Re: "
// prefix, thread id carries the original's thread (or its own id), type
// and priority are copied.
func (s *Store) Reply(originalID, fromIdentity, body string) (*Message, error) {
	orig, err := s.Get(originalID)
	if err != nil {
		return nil, err
	}
	if orig == nil {
		return nil, errs.Mailf(originalID, "replying to unknown message")
	}

	var to string
	if fromIdentity == orig.From {
		to = orig.To
	} else {
		to = orig.From
	}

	return s.Send(&Message{
		From:     fromIdentity,
		To:       to,
		Subject:  "Re: " + orig.Subject,
		Body:     body,
		Type:     orig.Type,
		Priority: orig.Priority,
		ThreadID: orig.EffectiveThreadID(),
	})
}

// PurgeFilter selects which messages Purge deletes.
type PurgeFilter struct {
	From string
	To   string
	All  bool
}

// Purge deletes messages matching filter, returning the affected-row
// count. Used when cleaning worktrees to drop mail belonging to retired
// agents.
func (s *Store) Purge(filter PurgeFilter) (int64, error) {
	var res sql.Result
	var err error
	switch {
	case filter.All:
		res, err = s.db.Exec("DELETE FROM messages")
	case filter.From != "" && filter.To != "":
		res, err = s.db.Exec(`DELETE FROM messages WHERE "from" = ? OR "to" = ?`, filter.From, filter.To)
	case filter.From != "":
		res, err = s.db.Exec(`DELETE FROM messages WHERE "from" = ?`, filter.From)
	case filter.To != "":
		res, err = s.db.Exec(`DELETE FROM messages WHERE "to" = ?`, filter.To)
	default:
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns messages matching an optional recipient filter, newest
// first, for `overstory mail list`. Empty recipient returns everything.
func (s *Store) List(recipient string, limit int) ([]*Message, error) {
	query := "SELECT " + selectCols + " FROM messages"
	var args []any
	if recipient != "" {
		query += ` WHERE "to" = ?`
		args = append(args, recipient)
	}
	query += " ORDER BY created_at DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
