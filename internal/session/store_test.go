package session

import (
	"context"
	"testing"
	"time"

	"schemebot/internal/verify"
	"schemebot/pkg/types"

	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type stubBackend struct{}

func (stubBackend) Search(ctx context.Context, query string) (types.SearchOutcome, error) {
	return types.SearchOutcome{Status: types.SearchStatusSuccess}, nil
}

func (stubBackend) Verify(ctx context.Context, schemeName string, profile types.UserProfile) (*types.VerificationResult, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func newStore(ttl time.Duration) *Store {
	logger, _ := logtest.NewNullLogger()
	return NewStore(stubBackend{}, logger, nil, time.Second, ttl)
}

func TestStore_CreateAndGet(t *testing.T) {
	st := newStore(time.Hour)

	s := st.Create()
	require.NotEmpty(t, s.ID)

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = st.Get("missing")
	assert.False(t, ok)

	other := st.Create()
	assert.NotEqual(t, s.ID, other.ID)
	assert.Equal(t, 2, st.Len())
}

func TestSession_OpenVerificationReplacesPrevious(t *testing.T) {
	defer goleak.VerifyNone(t)

	st := newStore(time.Hour)
	s := st.Create()
	defer s.close()

	first := s.OpenVerification(types.SchemeSummary{Name: "Widow Pension"})
	done, err := first.Submit(types.UserProfileForm{Gender: "Female"})
	require.NoError(t, err)

	second := s.OpenVerification(types.SchemeSummary{Name: "Widow Pension"})
	<-done

	assert.Equal(t, verify.StepClosed, first.Step())
	assert.Equal(t, verify.StepInput, second.Step())
	assert.Same(t, second, s.Verification())
	assert.Equal(t, types.DefaultUserProfileForm(), second.View().Form)

	s.CloseVerification()
	assert.Nil(t, s.Verification())
	assert.Equal(t, verify.StepClosed, second.Step())
}

func TestStore_SweepExpiresIdleSessions(t *testing.T) {
	st := newStore(time.Minute)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	idle := st.Create()
	active := st.Create()
	verification := idle.OpenVerification(types.SchemeSummary{Name: "x"})

	now = now.Add(45 * time.Second)
	_, ok := st.Get(active.ID)
	require.True(t, ok)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, st.Sweep())

	_, ok = st.Get(idle.ID)
	assert.False(t, ok)
	_, ok = st.Get(active.ID)
	assert.True(t, ok)
	assert.Equal(t, verify.StepClosed, verification.Step())

	_, issued := idle.Search.Search("pension")
	assert.False(t, issued, "search controller of an expired session is closed")
}

func TestStore_SweepWithoutTTLKeepsSessions(t *testing.T) {
	st := newStore(0)

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }

	s := st.Create()
	verification := s.OpenVerification(types.SchemeSummary{Name: "Widow Pension"})
	defer st.closeAll()

	now = now.Add(24 * time.Hour)
	assert.Equal(t, 0, st.Sweep())

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.Equal(t, verify.StepInput, verification.Step())
}

func TestStore_RunClosesSessionsOnShutdown(t *testing.T) {
	st := newStore(time.Hour)
	s := st.Create()

	ctx, cancel := context.WithCancel(context.Background())
	errc := make(chan error, 1)
	go func() { errc <- st.Run(ctx, 10*time.Millisecond) }()

	time.Sleep(25 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return")
	}

	assert.Equal(t, 0, st.Len())
	_, issued := s.Search.Search("pension")
	assert.False(t, issued)
}
