// Package authfakes provides a hand-written fake of the auth backend for
// tests that need to script responses and count calls.
package authfakes

import (
	"context"
	"sync"

	"github.com/eventhub/admin-console/aggregator"
	"github.com/eventhub/admin-console/auth"
	"github.com/eventhub/admin-console/internal/errors"
	"github.com/eventhub/admin-console/session"
)

var _ auth.BackendAPI = (*FakeBackend)(nil)

// FakeBackend implements auth.BackendAPI with scriptable function fields.
// Unset fields return errors.ErrUnsupported. Call counts are safe to read
// from concurrent tests.
type FakeBackend struct {
	LoginFunc   func(ctx context.Context, email, password string) (*session.Session, error)
	LogoutFunc  func(ctx context.Context, sessionID string) error
	RefreshFunc func(ctx context.Context, refreshToken string) (*aggregator.RefreshResponse, error)
	MeFunc      func(ctx context.Context) (*aggregator.MeResponse, error)

	lock         sync.Mutex
	loginCalls   int
	logoutCalls  int
	refreshCalls int
	meCalls      int
}

func NewFakeBackend() *FakeBackend {
	return &FakeBackend{}
}

func (f *FakeBackend) Login(ctx context.Context, email, password string) (*session.Session, error) {
	f.lock.Lock()
	f.loginCalls++
	f.lock.Unlock()

	if f.LoginFunc == nil {
		return nil, errors.ErrUnsupported
	}
	return f.LoginFunc(ctx, email, password)
}

func (f *FakeBackend) Logout(ctx context.Context, sessionID string) error {
	f.lock.Lock()
	f.logoutCalls++
	f.lock.Unlock()

	if f.LogoutFunc == nil {
		return errors.ErrUnsupported
	}
	return f.LogoutFunc(ctx, sessionID)
}

func (f *FakeBackend) Refresh(ctx context.Context, refreshToken string) (*aggregator.RefreshResponse, error) {
	f.lock.Lock()
	f.refreshCalls++
	f.lock.Unlock()

	if f.RefreshFunc == nil {
		return nil, errors.ErrUnsupported
	}
	return f.RefreshFunc(ctx, refreshToken)
}

func (f *FakeBackend) Me(ctx context.Context) (*aggregator.MeResponse, error) {
	f.lock.Lock()
	f.meCalls++
	f.lock.Unlock()

	if f.MeFunc == nil {
		return nil, errors.ErrUnsupported
	}
	return f.MeFunc(ctx)
}

func (f *FakeBackend) LoginCallCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.loginCalls
}

func (f *FakeBackend) LogoutCallCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.logoutCalls
}

func (f *FakeBackend) RefreshCallCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.refreshCalls
}

func (f *FakeBackend) MeCallCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.meCalls
}
