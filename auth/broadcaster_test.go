package auth_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventhub/admin-console/auth"
)

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := auth.NewBroadcaster()

	var got []auth.Reason
	b.Subscribe(func(r auth.Reason) { got = append(got, r) })
	b.Subscribe(func(r auth.Reason) { got = append(got, r) })

	b.Emit(auth.ReasonInvalidRefreshToken)

	require.Equal(t, []auth.Reason{auth.ReasonInvalidRefreshToken, auth.ReasonInvalidRefreshToken}, got)
}

func TestBroadcasterSuppressesRepeatEmissions(t *testing.T) {
	b := auth.NewBroadcaster()

	calls := 0
	b.Subscribe(func(auth.Reason) { calls++ })

	b.Emit(auth.ReasonInvalidRefreshToken)
	b.Emit(auth.ReasonRefreshFailed)
	b.Emit(auth.ReasonMissingRefreshToken)

	require.Equal(t, 1, calls)
}

func TestBroadcasterResetStartsNewEpisode(t *testing.T) {
	b := auth.NewBroadcaster()

	var got []auth.Reason
	b.Subscribe(func(r auth.Reason) { got = append(got, r) })

	b.Emit(auth.ReasonInvalidRefreshToken)
	b.Reset()
	b.Emit(auth.ReasonRefreshFailed)

	require.Equal(t, []auth.Reason{auth.ReasonInvalidRefreshToken, auth.ReasonRefreshFailed}, got)
}

func TestBroadcasterUnsubscribe(t *testing.T) {
	b := auth.NewBroadcaster()

	calls := 0
	unsubscribe := b.Subscribe(func(auth.Reason) { calls++ })
	unsubscribe()

	b.Emit(auth.ReasonInvalidRefreshToken)

	require.Equal(t, 0, calls)
}
