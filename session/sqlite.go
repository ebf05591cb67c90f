package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session (
  key   TEXT PRIMARY KEY,
  value BLOB NOT NULL
);`

// OpenDB opens (creating if necessary) the console's session database.
func OpenDB(path string) (*sql.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("create session db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init session db schema: %w", err)
	}
	return db, nil
}

// SQLiteStore persists the session as a key/value table, one row per field.
type SQLiteStore struct {
	db     *sql.DB
	sealer *Sealer
}

type SQLiteStoreOption func(*SQLiteStore)

// WithSealer encrypts token values at rest.
func WithSealer(s *Sealer) SQLiteStoreOption {
	return func(st *SQLiteStore) {
		st.sealer = s
	}
}

func NewSQLiteStore(db *sql.DB, options ...SQLiteStoreOption) *SQLiteStore {
	st := &SQLiteStore{db: db}
	for _, opt := range options {
		opt(st)
	}
	return st
}

var _ Store = (*SQLiteStore)(nil)

// Save writes all session fields in a single transaction.
func (st *SQLiteStore) Save(ctx context.Context, s *Session) error {
	userJSON, err := json.Marshal(s.User)
	if err != nil {
		return fmt.Errorf("marshal session user: %w", err)
	}

	accessToken, err := st.sealValue([]byte(s.AccessToken))
	if err != nil {
		return err
	}
	refreshToken, err := st.sealValue([]byte(s.RefreshToken))
	if err != nil {
		return err
	}

	fields := map[string][]byte{
		keyAccessToken:  accessToken,
		keyRefreshToken: refreshToken,
		keyUser:         userJSON,
		keySessionID:    []byte(s.ID),
		keyTokenExpiry:  []byte(strconv.FormatInt(s.AccessTokenExpiresAt.UnixMilli(), 10)),
	}

	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin session save: %w", err)
	}
	defer tx.Rollback()

	for key, value := range fields {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO session (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return fmt.Errorf("save session[%s]: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit session save: %w", err)
	}
	return nil
}

// Load reads the stored session. A missing or partial record is an absent
// session, not an error.
func (st *SQLiteStore) Load(ctx context.Context) (*Session, error) {
	rows, err := st.db.QueryContext(ctx, `SELECT key, value FROM session`)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	defer rows.Close()

	fields := make(map[string][]byte)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan session row: %w", err)
		}
		fields[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session rows: %w", err)
	}

	accessToken, err := st.openValue(fields[keyAccessToken])
	if err != nil {
		return nil, nil // sealed with a different passphrase: treat as absent
	}
	refreshToken, err := st.openValue(fields[keyRefreshToken])
	if err != nil {
		return nil, nil
	}

	if len(accessToken) == 0 || len(refreshToken) == 0 ||
		len(fields[keyUser]) == 0 || len(fields[keySessionID]) == 0 {
		return nil, nil
	}

	var user User
	if err := json.Unmarshal(fields[keyUser], &user); err != nil {
		return nil, nil
	}

	s := &Session{
		ID:           string(fields[keySessionID]),
		AccessToken:  string(accessToken),
		RefreshToken: string(refreshToken),
		User:         user,
	}
	if raw := string(fields[keyTokenExpiry]); raw != "" {
		millis, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, nil
		}
		s.AccessTokenExpiresAt = time.UnixMilli(millis)
	}
	return s, nil
}

// Clear removes all session fields.
func (st *SQLiteStore) Clear(ctx context.Context) error {
	if _, err := st.db.ExecContext(ctx, `DELETE FROM session`); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

func (st *SQLiteStore) sealValue(plain []byte) ([]byte, error) {
	if st.sealer == nil || len(plain) == 0 {
		return plain, nil
	}
	return st.sealer.Seal(plain)
}

func (st *SQLiteStore) openValue(sealed []byte) ([]byte, error) {
	if st.sealer == nil || len(sealed) == 0 {
		return sealed, nil
	}
	return st.sealer.Open(sealed)
}
