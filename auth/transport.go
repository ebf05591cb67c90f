package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/eventhub/admin-console/internal/config"
	"github.com/eventhub/admin-console/session"
)

// Refresher is the slice of the Coordinator the transport needs.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// Transport is the authenticated request pipeline, an http.RoundTripper for
// every call to the protected platform endpoints. In bearer mode it attaches
// the stored access token; in cookie mode the http.Client's jar carries the
// credentials and the transport only handles recovery.
//
// A 401 response triggers exactly one refresh-and-replay of the original
// request. A second 401 propagates; the coordinator's failure path owns
// session teardown.
type Transport struct {
	base      http.RoundTripper
	store     session.Store
	refresher Refresher
	jar       http.CookieJar
	mode      config.AuthMode
	logger    zerolog.Logger
}

type TransportOption func(*Transport)

// WithBaseTransport overrides the underlying round tripper
// (http.DefaultTransport otherwise).
func WithBaseTransport(rt http.RoundTripper) TransportOption {
	return func(t *Transport) {
		t.base = rt
	}
}

// WithCookieJar hands the transport the jar it shares with the auth client.
// The http.Client attaches cookies before the first attempt only; a replay
// must pick up whatever the refresh just put in the jar, not the Cookie
// header cloned from the failed attempt.
func WithCookieJar(jar http.CookieJar) TransportOption {
	return func(t *Transport) {
		t.jar = jar
	}
}

func NewTransport(store session.Store, refresher Refresher, mode config.AuthMode, logger zerolog.Logger, options ...TransportOption) *Transport {
	t := &Transport{
		base:      http.DefaultTransport,
		store:     store,
		refresher: refresher,
		mode:      mode,
		logger:    logger.With().Str("component", "auth-transport").Logger(),
	}
	for _, opt := range options {
		opt(t)
	}
	return t
}

var _ http.RoundTripper = (*Transport)(nil)

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	resp, err := t.send(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}

	// Replaying a request with a consumed one-shot body would send garbage.
	if req.Body != nil && req.GetBody == nil {
		t.logger.Warn().Str("url", req.URL.Path).Msg("401 on non-replayable request")
		return resp, nil
	}

	t.logger.Info().Str("url", req.URL.Path).Msg("received 401, attempting token refresh")
	drainBody(resp)

	if err := t.refresher.Refresh(ctx); err != nil {
		return nil, fmt.Errorf("refresh after 401 on %s: %w", req.URL.Path, err)
	}

	t.logger.Info().Str("url", req.URL.Path).Msg("retrying original request")
	return t.send(ctx, req)
}

// send issues one attempt. The caller's request is never mutated; each
// attempt gets its own clone with a fresh body.
func (t *Transport) send(ctx context.Context, req *http.Request) (*http.Response, error) {
	attempt := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("reread request body: %w", err)
		}
		attempt.Body = body
	}

	switch t.mode {
	case config.AuthModeBearer:
		s, err := t.store.Load(ctx)
		if err != nil {
			return nil, fmt.Errorf("load session: %w", err)
		}
		if s != nil && s.AccessToken != "" {
			attempt.Header.Set("Authorization", "Bearer "+s.AccessToken)
		}
	case config.AuthModeCookie:
		if t.jar != nil {
			attempt.Header.Del("Cookie")
			for _, c := range t.jar.Cookies(attempt.URL) {
				attempt.AddCookie(c)
			}
		}
	}

	return t.base.RoundTrip(attempt)
}

func drainBody(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}
