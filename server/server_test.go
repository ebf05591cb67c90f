package server_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/auth"
	"github.com/eventhub/admin-console/auth/authfakes"
	"github.com/eventhub/admin-console/internal/config"
	"github.com/eventhub/admin-console/server"
	"github.com/eventhub/admin-console/session"
)

// fakeAPI backs the handlers with scripted platform data.
type fakeAPI struct {
	events     []aggregator.Event
	categories []aggregator.Category
	err        error

	created []aggregator.EventInput
	updated map[string]aggregator.EventInput
	deleted []string
	revoked int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updated: make(map[string]aggregator.EventInput)}
}

func (f *fakeAPI) ListEvents(context.Context) ([]aggregator.Event, error) {
	return f.events, f.err
}

func (f *fakeAPI) GetEvent(_ context.Context, id string) (*aggregator.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.events {
		if f.events[i].ID == id {
			return &f.events[i], nil
		}
	}
	return nil, &aggregator.APIError{StatusCode: http.StatusNotFound, Message: "event not found"}
}

func (f *fakeAPI) CreateEvent(_ context.Context, input aggregator.EventInput) (*aggregator.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, input)
	return &aggregator.Event{ID: "ev-new", Name: input.Name}, nil
}

func (f *fakeAPI) UpdateEvent(_ context.Context, id string, input aggregator.EventInput) (*aggregator.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updated[id] = input
	return &aggregator.Event{ID: id, Name: input.Name}, nil
}

func (f *fakeAPI) DeleteEvent(_ context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeAPI) ListCategories(context.Context) ([]aggregator.Category, error) {
	return f.categories, f.err
}

func (f *fakeAPI) GetCategory(_ context.Context, id string) (*aggregator.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.categories {
		if f.categories[i].ID == id {
			return &f.categories[i], nil
		}
	}
	return nil, &aggregator.APIError{StatusCode: http.StatusNotFound, Message: "category not found"}
}

func (f *fakeAPI) CreateCategory(_ context.Context, input aggregator.CategoryInput) (*aggregator.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.categories = append(f.categories, aggregator.Category{ID: "cat-new", Name: input.Name})
	return &f.categories[len(f.categories)-1], nil
}

func (f *fakeAPI) UpdateCategory(_ context.Context, id string, input aggregator.CategoryInput) (*aggregator.Category, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &aggregator.Category{ID: id, Name: input.Name}, nil
}

func (f *fakeAPI) DeleteCategory(_ context.Context, id string) error {
	return f.err
}

func (f *fakeAPI) Revoke(context.Context) error {
	f.revoked++
	return f.err
}

type fakeRegistrar struct {
	err      error
	requests []aggregator.RegisterRequest
}

func (f *fakeRegistrar) Register(_ context.Context, req aggregator.RegisterRequest) error {
	if f.err != nil {
		return f.err
	}
	f.requests = append(f.requests, req)
	return nil
}

type fixture struct {
	srv       *server.Server
	api       *fakeAPI
	registrar *fakeRegistrar
	backend   *authfakes.FakeBackend
	manager   *auth.Manager
	store     session.Store
}

func adminSession() *session.Session {
	return &session.Session{
		ID:                   "sess-1",
		AccessToken:          "hdr.payload-1.sig",
		RefreshToken:         "refresh-1",
		AccessTokenExpiresAt: time.Now().Add(time.Hour),
		User:                 session.User{Name: "ops", Email: "ops@example.com", IsAdmin: true},
	}
}

// newFixture builds a server whose auth manager is initialized from the
// given stored session (nil for an unauthenticated console).
func newFixture(t *testing.T, sess *session.Session) *fixture {
	t.Helper()

	t.Setenv("ENV", "PROD") // keep route logging out of test output

	store := session.NewInMemoryStore()
	if sess != nil {
		require.NoError(t, store.Save(context.Background(), sess))
	}

	backend := authfakes.NewFakeBackend()
	events := auth.NewBroadcaster()
	coordinator := auth.NewCoordinator(store, backend, events, zerolog.Nop())
	manager, err := auth.NewManager(auth.Deps{
		Store:       store,
		API:         backend,
		Coordinator: coordinator,
		Events:      events,
	}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(manager.Close)
	manager.Initialize(context.Background())

	api := newFakeAPI()
	registrar := &fakeRegistrar{}

	srv, err := server.New(config.New(), manager, api, registrar, zerolog.Nop())
	require.NoError(t, err)

	return &fixture{srv: srv, api: api, registrar: registrar, backend: backend, manager: manager, store: store}
}

func (f *fixture) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) postForm(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

// csrfToken renders the given form page and pulls the minted token out of it.
func (f *fixture) csrfToken(t *testing.T, formPath string) string {
	t.Helper()
	rec := f.get(t, formPath)
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	marker := `name="csrf_token" value="`
	idx := strings.Index(body, marker)
	require.GreaterOrEqual(t, idx, 0, "form page must carry a csrf token")
	rest := body[idx+len(marker):]
	return rest[:strings.Index(rest, `"`)]
}

func TestIndexRedirects(t *testing.T) {
	authed := newFixture(t, adminSession())
	rec := authed.get(t, "/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))

	guest := newFixture(t, nil)
	rec = guest.get(t, "/")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login", rec.Header().Get("Location"))
}

func TestDashboardRequiresAuth(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get(t, "/dashboard")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login?redirect=%2Fdashboard", rec.Header().Get("Location"))
}

func TestDashboardRendersCounts(t *testing.T) {
	f := newFixture(t, adminSession())
	f.api.events = []aggregator.Event{
		{ID: "ev-1", Name: "Jazz Night", Category: "music", Date: "2026-09-12"},
		{ID: "ev-2", Name: "Food Fair", Category: "food", Date: "2026-09-20"},
	}
	f.api.categories = []aggregator.Category{{ID: "cat-1", Name: "music"}}

	rec := f.get(t, "/dashboard")

	require.Equal(t, http.StatusOK, rec.Code)
	body, _ := io.ReadAll(rec.Body)
	require.Contains(t, string(body), "Jazz Night")
	require.Contains(t, string(body), "Categories")
}

func TestLoginPageShowsSessionExpiredReason(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.get(t, "/auth/login?reason=session_expired")

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "Your session has expired")
}

func TestLoginPageBouncesAuthenticatedOperator(t *testing.T) {
	f := newFixture(t, adminSession())

	rec := f.get(t, "/auth/login")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLoginSubmissionSuccess(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.LoginFunc = func(_ context.Context, email, password string) (*session.Session, error) {
		require.Equal(t, "ops@example.com", email)
		return adminSession(), nil
	}

	rec := f.postForm(t, "/auth/login", url.Values{
		"email":    {"ops@example.com"},
		"password": {"s3cret"},
		"redirect": {"/dashboard/events"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard/events", rec.Header().Get("Location"))
	require.True(t, f.manager.State().IsAuthenticated)
}

func TestLoginSubmissionRejected(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.LoginFunc = func(context.Context, string, string) (*session.Session, error) {
		return nil, &aggregator.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid email or password"}
	}

	rec := f.postForm(t, "/auth/login", url.Values{
		"email":    {"ops@example.com"},
		"password": {"wrong"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	location := rec.Header().Get("Location")
	require.Contains(t, location, "/auth/login?error=")
	require.Contains(t, location, "email=ops%40example.com")
	require.False(t, f.manager.State().IsAuthenticated)
}

func TestLoginRejectsOffsiteRedirect(t *testing.T) {
	f := newFixture(t, nil)
	f.backend.LoginFunc = func(context.Context, string, string) (*session.Session, error) {
		return adminSession(), nil
	}

	rec := f.postForm(t, "/auth/login", url.Values{
		"email":    {"ops@example.com"},
		"password": {"s3cret"},
		"redirect": {"https://evil.example.com/phish"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestLogoutSignsOutEvenWhenBackendFails(t *testing.T) {
	f := newFixture(t, adminSession())
	f.backend.LogoutFunc = func(context.Context, string) error {
		return &aggregator.APIError{StatusCode: http.StatusInternalServerError, Message: "boom"}
	}

	rec := f.postForm(t, "/auth/logout", url.Values{})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/auth/login", rec.Header().Get("Location"))
	require.False(t, f.manager.State().IsAuthenticated)
	require.Equal(t, 1, f.api.revoked, "access token revoked before logout")
}

func TestRegisterSubmission(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.postForm(t, "/auth/register", url.Values{
		"name":     {"ops"},
		"email":    {"ops@example.com"},
		"password": {"s3cret"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "/auth/login?notice=")
	require.Len(t, f.registrar.requests, 1)
	require.Equal(t, "ops@example.com", f.registrar.requests[0].Email)
}

func TestEventCreateRoundTrip(t *testing.T) {
	f := newFixture(t, adminSession())
	f.api.categories = []aggregator.Category{{ID: "cat-1", Name: "music"}}

	token := f.csrfToken(t, "/dashboard/events/new")
	rec := f.postForm(t, "/dashboard/events", url.Values{
		"csrf_token": {token},
		"name":       {"Jazz Night"},
		"category":   {"music"},
		"date":       {"2026-09-12"},
		"time":       {"20:00"},
		"location":   {"Blue Note"},
		"price":      {"25.50"},
	})

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "/dashboard/events?notice=")
	require.Len(t, f.api.created, 1)
	require.Equal(t, "Jazz Night", f.api.created[0].Name)
	require.InDelta(t, 25.50, f.api.created[0].Price, 0.001)
}

func TestEventCreateRejectsMissingCSRFToken(t *testing.T) {
	f := newFixture(t, adminSession())

	rec := f.postForm(t, "/dashboard/events", url.Values{
		"name":     {"Jazz Night"},
		"category": {"music"},
		"date":     {"2026-09-12"},
	})

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Empty(t, f.api.created)
}

func TestEventCreateCSRFTokenIsOneTime(t *testing.T) {
	f := newFixture(t, adminSession())
	f.api.categories = []aggregator.Category{{ID: "cat-1", Name: "music"}}

	token := f.csrfToken(t, "/dashboard/events/new")
	form := url.Values{
		"csrf_token": {token},
		"name":       {"Jazz Night"},
		"category":   {"music"},
		"date":       {"2026-09-12"},
	}

	first := f.postForm(t, "/dashboard/events", form)
	require.Equal(t, http.StatusSeeOther, first.Code)

	replay := f.postForm(t, "/dashboard/events", form)
	require.Equal(t, http.StatusForbidden, replay.Code)
	require.Len(t, f.api.created, 1)
}

func TestEventUpdateAndDelete(t *testing.T) {
	f := newFixture(t, adminSession())
	f.api.events = []aggregator.Event{{ID: "ev-1", Name: "Jazz Night", Category: "music", Date: "2026-09-12"}}
	f.api.categories = []aggregator.Category{{ID: "cat-1", Name: "music"}}

	token := f.csrfToken(t, "/dashboard/events/ev-1/edit")
	rec := f.postForm(t, "/dashboard/events/ev-1", url.Values{
		"csrf_token": {token},
		"name":       {"Jazz Night II"},
		"category":   {"music"},
		"date":       {"2026-09-13"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "Jazz Night II", f.api.updated["ev-1"].Name)

	token = f.csrfToken(t, "/dashboard/events/ev-1/edit")
	rec = f.postForm(t, "/dashboard/events/ev-1/delete", url.Values{"csrf_token": {token}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, []string{"ev-1"}, f.api.deleted)
}

func TestCategoriesRequireAdmin(t *testing.T) {
	memberSess := adminSession()
	memberSess.User.IsAdmin = false
	f := newFixture(t, memberSess)

	rec := f.get(t, "/dashboard/categories")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/dashboard", rec.Header().Get("Location"))
}

func TestExpiredSessionRedirectsToLogin(t *testing.T) {
	f := newFixture(t, adminSession())

	// The platform rejects the call and the refresh credential is dead too:
	// the coordinator tears the session down mid-request.
	f.api.err = &aggregator.APIError{StatusCode: http.StatusUnauthorized, Message: "token expired"}
	f.backend.RefreshFunc = func(context.Context, string) (*aggregator.RefreshResponse, error) {
		return nil, &aggregator.APIError{StatusCode: http.StatusUnauthorized, Message: "invalid refresh token"}
	}
	require.Error(t, f.manager.Refresh(context.Background()))

	rec := f.get(t, "/dashboard/events")

	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Contains(t, rec.Header().Get("Location"), "/auth/login?redirect=")
}
