package membership

import (
	"context"
	"testing"

	"github.com/cavos-labs/forma-app/internal/logger"
	"github.com/cavos-labs/forma-app/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { logger.Init() }

type fakeLister struct {
	memberships []upstream.Membership
	err         error
	calls       []upstream.ListMembershipsParams
}

func (f *fakeLister) ListMemberships(_ context.Context, p upstream.ListMembershipsParams) (*upstream.MembershipsResponse, error) {
	f.calls = append(f.calls, p)
	if f.err != nil {
		return nil, f.err
	}
	return &upstream.MembershipsResponse{Success: true, Memberships: f.memberships}, nil
}

func TestStore_ReloadReplacesWholesale(t *testing.T) {
	client := &fakeLister{memberships: PlaceholderMemberships()}
	s := NewStore(client, Config{GymID: "gym-1"})

	require.NoError(t, s.Reload(context.Background(), FilterAll))
	assert.Len(t, s.All(), 4)
	assert.True(t, s.Loaded())

	client.memberships = client.memberships[:1]
	require.NoError(t, s.Reload(context.Background(), FilterAll))
	assert.Len(t, s.All(), 1)

	require.Len(t, client.calls, 2)
	assert.Equal(t, "gym-1", client.calls[0].GymID)
	assert.Equal(t, 100, client.calls[0].Limit)
	assert.Equal(t, 0, client.calls[0].Offset)
	assert.Empty(t, client.calls[0].Status)
}

func TestStore_ReloadScopesQueryByStatus(t *testing.T) {
	client := &fakeLister{}
	s := NewStore(client, Config{GymID: "gym-1"})

	require.NoError(t, s.Reload(context.Background(), StatusFilter(upstream.MembershipExpired)))
	require.Len(t, client.calls, 1)
	assert.Equal(t, upstream.MembershipExpired, client.calls[0].Status)
}

func TestStore_FailureWithFallbackShowsPlaceholders(t *testing.T) {
	client := &fakeLister{err: &upstream.Error{StatusCode: 500, Message: "boom"}}
	s := NewStore(client, Config{GymID: "gym-1", FallbackOnError: true})

	err := s.Reload(context.Background(), FilterAll)
	require.Error(t, err)
	assert.Len(t, s.All(), 4)
	assert.True(t, s.Fallback())
	assert.True(t, s.Loaded())
}

func TestStore_FailureWithoutFallbackEmptiesOut(t *testing.T) {
	client := &fakeLister{memberships: PlaceholderMemberships()}
	s := NewStore(client, Config{GymID: "gym-1"})
	require.NoError(t, s.Reload(context.Background(), FilterAll))

	client.err = &upstream.Error{StatusCode: 500, Message: "boom"}
	require.Error(t, s.Reload(context.Background(), FilterAll))
	assert.Empty(t, s.All())
	assert.False(t, s.Fallback())
}

func TestStore_RecoveryClearsFallback(t *testing.T) {
	client := &fakeLister{err: &upstream.Error{StatusCode: 500, Message: "boom"}}
	s := NewStore(client, Config{GymID: "gym-1", FallbackOnError: true})
	require.Error(t, s.Reload(context.Background(), FilterAll))
	require.True(t, s.Fallback())

	client.err = nil
	client.memberships = PlaceholderMemberships()[:2]
	require.NoError(t, s.Reload(context.Background(), FilterAll))
	assert.False(t, s.Fallback())
	assert.Len(t, s.All(), 2)
}

func TestStore_Find(t *testing.T) {
	client := &fakeLister{memberships: PlaceholderMemberships()}
	s := NewStore(client, Config{GymID: "gym-1"})
	require.NoError(t, s.Reload(context.Background(), FilterAll))

	m, ok := s.Find("2")
	require.True(t, ok)
	assert.Equal(t, "Carlos", m.User.FirstName)

	_, ok = s.Find("missing")
	assert.False(t, ok)
}
