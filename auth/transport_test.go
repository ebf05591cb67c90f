package auth_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/admin-console/auth"
	"github.com/eventhub/admin-console/internal/config"
	"github.com/eventhub/admin-console/session"
)

// fakeRefresher stands in for the coordinator; it swaps the stored access
// token the way a real refresh would.
type fakeRefresher struct {
	store session.Store
	err   error

	lock  sync.Mutex
	calls int
}

func (f *fakeRefresher) Refresh(ctx context.Context) error {
	f.lock.Lock()
	f.calls++
	f.lock.Unlock()

	if f.err != nil {
		return f.err
	}
	s, err := f.store.Load(ctx)
	if err != nil {
		return err
	}
	if s == nil {
		s = &session.Session{}
	}
	s.AccessToken = "refreshed-token"
	s.AccessTokenExpiresAt = time.Now().Add(15 * time.Minute)
	return f.store.Save(ctx, s)
}

func (f *fakeRefresher) callCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}

func seedTransportSession(t *testing.T, store session.Store, token string) {
	t.Helper()
	err := store.Save(context.Background(), &session.Session{
		ID:           "sess-1",
		AccessToken:  token,
		RefreshToken: "refresh-1",
		User:         session.User{Email: "ops@example.com"},
	})
	require.NoError(t, err)
}

func TestTransportAttachesBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := session.NewInMemoryStore()
	seedTransportSession(t, store, "access-1")

	client := &http.Client{Transport: auth.NewTransport(store, &fakeRefresher{store: store}, config.AuthModeBearer, zerolog.Nop())}
	resp, err := client.Get(srv.URL + "/event/api/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Bearer access-1", gotAuth)
}

func TestTransportRefreshesAndRetriesOn401(t *testing.T) {
	var (
		lock  sync.Mutex
		seen  []string
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lock.Lock()
		calls++
		seen = append(seen, r.Header.Get("Authorization"))
		n := calls
		lock.Unlock()

		if n == 1 {
			http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := session.NewInMemoryStore()
	seedTransportSession(t, store, "stale-token")
	refresher := &fakeRefresher{store: store}

	client := &http.Client{Transport: auth.NewTransport(store, refresher, config.AuthModeBearer, zerolog.Nop())}
	resp, err := client.Get(srv.URL + "/event/api/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, refresher.callCount())
	require.Equal(t, []string{"Bearer stale-token", "Bearer refreshed-token"}, seen)
}

func TestTransportRetriesWithReplayedBody(t *testing.T) {
	var (
		lock   sync.Mutex
		bodies []string
		calls  int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		payload, _ := io.ReadAll(r.Body)

		lock.Lock()
		calls++
		bodies = append(bodies, string(payload))
		n := calls
		lock.Unlock()

		if n == 1 {
			http.Error(w, "expired", http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	store := session.NewInMemoryStore()
	seedTransportSession(t, store, "stale-token")

	client := &http.Client{Transport: auth.NewTransport(store, &fakeRefresher{store: store}, config.AuthModeBearer, zerolog.Nop())}
	resp, err := client.Post(srv.URL+"/event/api/v1/events", "application/json",
		bytes.NewReader([]byte(`{"name":"Jazz Night"}`)))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.Equal(t, []string{`{"name":"Jazz Night"}`, `{"name":"Jazz Night"}`}, bodies)
}

func TestTransportSecond401Propagates(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewInMemoryStore()
	seedTransportSession(t, store, "stale-token")
	refresher := &fakeRefresher{store: store}

	client := &http.Client{Transport: auth.NewTransport(store, refresher, config.AuthModeBearer, zerolog.Nop())}
	resp, err := client.Get(srv.URL + "/event/api/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 2, calls, "exactly one retry, never a loop")
	require.Equal(t, 1, refresher.callCount())
}

func TestTransportRefreshFailureReturnsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewInMemoryStore()
	seedTransportSession(t, store, "stale-token")
	refresher := &fakeRefresher{store: store, err: context.DeadlineExceeded}

	client := &http.Client{Transport: auth.NewTransport(store, refresher, config.AuthModeBearer, zerolog.Nop())}
	resp, err := client.Get(srv.URL + "/event/api/v1/events")

	require.Error(t, err)
	require.Nil(t, resp)
	require.Equal(t, 1, refresher.callCount())
}

// jarRefresher swaps the access_token cookie in the shared jar, the way the
// auth client's Set-Cookie handling does after a real refresh.
type jarRefresher struct {
	jar *cookiejar.Jar
	url *url.URL

	lock  sync.Mutex
	calls int
}

func (f *jarRefresher) Refresh(context.Context) error {
	f.lock.Lock()
	f.calls++
	f.lock.Unlock()

	f.jar.SetCookies(f.url, []*http.Cookie{{Name: "access_token", Value: "fresh-token", Path: "/"}})
	return nil
}

func (f *jarRefresher) callCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.calls
}

func TestTransportCookieModeReplayUsesRefreshedCookie(t *testing.T) {
	var (
		lock  sync.Mutex
		seen  []string
		calls int
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var token string
		if c, err := r.Cookie("access_token"); err == nil {
			token = c.Value
		}

		lock.Lock()
		calls++
		seen = append(seen, token)
		n := calls
		lock.Unlock()

		if n == 1 {
			http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	srvURL, err := url.Parse(srv.URL)
	require.NoError(t, err)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	jar.SetCookies(srvURL, []*http.Cookie{{Name: "access_token", Value: "stale-token", Path: "/"}})
	refresher := &jarRefresher{jar: jar, url: srvURL}

	transport := auth.NewTransport(session.NewInMemoryStore(), refresher, config.AuthModeCookie, zerolog.Nop(),
		auth.WithCookieJar(jar))
	client := &http.Client{Transport: transport, Jar: jar}

	resp, err := client.Get(srv.URL + "/event/api/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, 1, refresher.callCount())
	require.Equal(t, []string{"stale-token", "fresh-token"}, seen, "replay carries the refreshed cookie")
}

func TestTransportCookieModeSendsNoBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store := session.NewInMemoryStore()
	seedTransportSession(t, store, "access-1")

	client := &http.Client{Transport: auth.NewTransport(store, &fakeRefresher{store: store}, config.AuthModeCookie, zerolog.Nop())}
	resp, err := client.Get(srv.URL + "/event/api/v1/events")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Empty(t, gotAuth)
}

func TestTransportDoesNotRetryNonReplayableBody(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := session.NewInMemoryStore()
	seedTransportSession(t, store, "stale-token")
	refresher := &fakeRefresher{store: store}

	transport := auth.NewTransport(store, refresher, config.AuthModeBearer, zerolog.Nop())

	// A raw pipe-style body has no GetBody, so a replay would send nothing.
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/event/api/v1/events", io.NopCloser(bytes.NewReader([]byte("payload"))))
	require.NoError(t, err)

	resp, err := transport.RoundTrip(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, 1, calls)
	require.Equal(t, 0, refresher.callCount())
}
