package auth

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/internal/config"
	"github.com/eventhub/admin-console/internal/errors"
	"github.com/eventhub/admin-console/session"
)

// Coordinator serializes token refreshes: however many callers hit an
// expired access token at once, exactly one refresh request reaches the
// auth service and every caller observes its outcome.
//
// On success the refreshed token and expiry are persisted before waiters are
// released. A 401/403 from the refresh endpoint is fatal to the session:
// the store is cleared and a session-expired event is broadcast. A failure
// with no HTTP response resolves waiters with the error but, by default,
// leaves the session in place for a later retry.
type Coordinator struct {
	store  session.Store
	api    BackendAPI
	events *Broadcaster
	logger zerolog.Logger

	mode                config.AuthMode
	clearOnNetworkError bool

	mu         sync.Mutex
	refreshing bool
	waiters    []chan error
}

type CoordinatorOption func(*Coordinator)

// WithCookieMode makes the coordinator rely on the auth service's refresh
// cookie instead of a locally stored refresh token.
func WithCookieMode() CoordinatorOption {
	return func(c *Coordinator) {
		c.mode = config.AuthModeCookie
	}
}

// WithClearOnNetworkError makes a refresh attempt that got no HTTP response
// tear the session down, instead of keeping it for a later retry.
func WithClearOnNetworkError() CoordinatorOption {
	return func(c *Coordinator) {
		c.clearOnNetworkError = true
	}
}

func NewCoordinator(store session.Store, api BackendAPI, events *Broadcaster, logger zerolog.Logger, options ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:  store,
		api:    api,
		events: events,
		logger: logger.With().Str("component", "refresh-coordinator").Logger(),
		mode:   config.AuthModeBearer,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Refresh obtains a fresh access token, joining an in-flight refresh if one
// exists. The caller's context only bounds its wait; the refresh itself runs
// to completion so every queued caller sees a settled outcome.
func (c *Coordinator) Refresh(ctx context.Context) error {
	c.mu.Lock()
	if c.refreshing {
		ch := make(chan error, 1)
		c.waiters = append(c.waiters, ch)
		c.mu.Unlock()

		c.logger.Debug().Msg("refresh in flight, queuing caller")
		select {
		case err := <-ch:
			return err
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	c.refreshing = true
	c.mu.Unlock()

	err := c.doRefresh(context.WithoutCancel(ctx))

	c.mu.Lock()
	c.refreshing = false
	waiters := c.waiters
	c.waiters = nil
	c.mu.Unlock()

	for _, ch := range waiters {
		ch <- err
	}
	return err
}

func (c *Coordinator) doRefresh(ctx context.Context) error {
	current, err := c.store.Load(ctx)
	if err != nil {
		return errors.Wrapf(err, "load session for refresh")
	}

	var refreshToken string
	if c.mode == config.AuthModeBearer {
		if current == nil || current.RefreshToken == "" {
			c.logger.Warn().Msg("no refresh token available")
			c.events.Emit(ReasonMissingRefreshToken)
			return errors.ErrNoRefreshToken
		}
		refreshToken = current.RefreshToken
	}

	resp, err := c.api.Refresh(ctx, refreshToken)
	if err != nil {
		return c.refreshFailed(ctx, err)
	}

	if current == nil {
		current = &session.Session{}
	}
	if resp.AccessToken != "" {
		current.AccessToken = resp.AccessToken
	}
	current.AccessTokenExpiresAt = resp.AccessTokenExpiresAt

	if err := c.store.Save(ctx, current); err != nil {
		return errors.Wrapf(err, "persist refreshed session")
	}

	c.logger.Info().Time("expires_at", resp.AccessTokenExpiresAt).Msg("token refreshed")
	return nil
}

// refreshFailed classifies the failure and performs session teardown when
// the refresh credential itself was rejected.
func (c *Coordinator) refreshFailed(ctx context.Context, err error) error {
	if aggregator.IsAuthError(err) {
		c.logger.Warn().Err(err).Msg("refresh token rejected, clearing session")
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("failed to clear session store")
		}
		c.events.Emit(ReasonInvalidRefreshToken)
		return errors.Wrapf(errors.ErrInvalidRefreshToken, "refresh rejected: %v", err)
	}

	c.logger.Error().Err(err).Msg("refresh failed without auth response")
	if c.clearOnNetworkError {
		if clearErr := c.store.Clear(ctx); clearErr != nil {
			c.logger.Error().Err(clearErr).Msg("failed to clear session store")
		}
		c.events.Emit(ReasonRefreshFailed)
	}
	return errors.Wrapf(err, "refresh token")
}
