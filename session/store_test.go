package session_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/eventhub/admin-console/session"
)

var testDBCounter int

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	testDBCounter++
	db, err := sql.Open("sqlite", fmt.Sprintf("file:sessionstore%d?mode=memory&cache=shared", testDBCounter))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`CREATE TABLE session (key TEXT PRIMARY KEY, value BLOB NOT NULL)`)
	require.NoError(t, err)
	return db
}

func testSession() *session.Session {
	return &session.Session{
		ID:                   "sess-1",
		AccessToken:          "access-token",
		RefreshToken:         "refresh-token",
		AccessTokenExpiresAt: time.Now().Add(15 * time.Minute).Truncate(time.Millisecond),
		User:                 session.User{Name: "ops", Email: "ops@example.com", IsAdmin: true},
	}
}

func runStoreContract(t *testing.T, store session.Store) {
	t.Helper()
	ctx := context.Background()

	// empty store reads as absent, clear is a no-op
	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)
	require.NoError(t, store.Clear(ctx))

	want := testSession()
	require.NoError(t, store.Save(ctx, want))

	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, want.ID, loaded.ID)
	require.Equal(t, want.AccessToken, loaded.AccessToken)
	require.Equal(t, want.RefreshToken, loaded.RefreshToken)
	require.Equal(t, want.User, loaded.User)
	require.Equal(t, want.AccessTokenExpiresAt.UnixMilli(), loaded.AccessTokenExpiresAt.UnixMilli())

	// overwrite keeps a single session
	want.AccessToken = "rotated-token"
	require.NoError(t, store.Save(ctx, want))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, "rotated-token", loaded.AccessToken)

	require.NoError(t, store.Clear(ctx))
	loaded, err = store.Load(ctx)
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestInMemoryStore(t *testing.T) {
	runStoreContract(t, session.NewInMemoryStore())
}

func TestSQLiteStore(t *testing.T) {
	runStoreContract(t, session.NewSQLiteStore(setupDB(t)))
}

func TestSQLiteStoreSealed(t *testing.T) {
	sealer, err := session.NewSealer("local-passphrase")
	require.NoError(t, err)
	runStoreContract(t, session.NewSQLiteStore(setupDB(t), session.WithSealer(sealer)))
}

func TestSQLiteStoreSealedTokensNotPlaintext(t *testing.T) {
	db := setupDB(t)
	sealer, err := session.NewSealer("local-passphrase")
	require.NoError(t, err)
	store := session.NewSQLiteStore(db, session.WithSealer(sealer))

	require.NoError(t, store.Save(context.Background(), testSession()))

	var value []byte
	require.NoError(t, db.QueryRow(`SELECT value FROM session WHERE key = 'accessToken'`).Scan(&value))
	require.NotEqual(t, []byte("access-token"), value)
}

func TestSQLiteStorePartialRecordReadsAsAbsent(t *testing.T) {
	db := setupDB(t)
	store := session.NewSQLiteStore(db)

	// only a lone access token on disk, e.g. an interrupted legacy write
	_, err := db.Exec(`INSERT INTO session (key, value) VALUES ('accessToken', 'orphan')`)
	require.NoError(t, err)

	loaded, err := store.Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestSQLiteStoreWrongPassphraseReadsAsAbsent(t *testing.T) {
	db := setupDB(t)

	sealer, err := session.NewSealer("first-passphrase")
	require.NoError(t, err)
	require.NoError(t, session.NewSQLiteStore(db, session.WithSealer(sealer)).Save(context.Background(), testSession()))

	other, err := session.NewSealer("second-passphrase")
	require.NoError(t, err)
	loaded, err := session.NewSQLiteStore(db, session.WithSealer(other)).Load(context.Background())
	require.NoError(t, err)
	require.Nil(t, loaded)
}

func TestSealerRoundTrip(t *testing.T) {
	sealer, err := session.NewSealer("passphrase")
	require.NoError(t, err)

	sealed, err := sealer.Seal([]byte("secret"))
	require.NoError(t, err)
	require.NotEqual(t, []byte("secret"), sealed)

	plain, err := sealer.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, []byte("secret"), plain)

	_, err = sealer.Open([]byte("short"))
	require.Error(t, err)
}
