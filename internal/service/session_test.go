package service

import (
	"sync"
	"testing"
	"time"

	"github.com/Harshitk-cp/sahai/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func newTestSessionManager(ttl time.Duration) (*SessionManager, *fakeClock) {
	clock := newClock()
	m := NewSessionManager(ttl, zap.NewNop())
	m.SetClock(clock.Now)
	return m, clock
}

func TestSessionManagerAcquire(t *testing.T) {
	m, clock := newTestSessionManager(30 * time.Minute)

	sess, release := m.Acquire("")
	id := sess.ID
	require.NotEmpty(t, id)
	sess.Facts[domain.FieldAge] = &domain.Fact{Field: domain.FieldAge, Value: 45, Confirmed: true}
	release()

	clock.Advance(10 * time.Minute)
	again, release := m.Acquire(id)
	assert.Same(t, sess, again)
	assert.Equal(t, clock.Now(), again.LastActivity, "acquire touches activity")
	release()

	unknown, release := m.Acquire("no-such-session")
	assert.NotEqual(t, "no-such-session", unknown.ID)
	assert.Empty(t, unknown.Facts)
	release()

	assert.Equal(t, 2, m.Len())
}

func TestSessionManagerExpiry(t *testing.T) {
	m, clock := newTestSessionManager(30 * time.Minute)

	sess, release := m.Acquire("")
	id := sess.ID
	release()

	clock.Advance(31 * time.Minute)

	_, _, err := m.Lookup(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	fresh, release := m.Acquire(id)
	assert.NotEqual(t, id, fresh.ID)
	release()
	assert.Equal(t, 1, m.Len())
}

func TestSessionManagerAcquireWithTinyTTL(t *testing.T) {
	clock := newClock()
	m := NewSessionManager(time.Nanosecond, zap.NewNop())
	// Every read moves time past the TTL.
	m.SetClock(func() time.Time {
		clock.Advance(time.Millisecond)
		return clock.Now()
	})

	done := make(chan *domain.Session, 1)
	go func() {
		sess, release := m.Acquire("")
		release()
		done <- sess
	}()

	select {
	case sess := <-done:
		require.NotNil(t, sess)
		assert.Equal(t, 1, m.Len())
	case <-time.After(2 * time.Second):
		t.Fatal("acquire did not return a freshly created session")
	}
}

func TestSessionManagerSweepSkipsBusySessions(t *testing.T) {
	m, clock := newTestSessionManager(time.Minute)

	idle, release := m.Acquire("")
	idleID := idle.ID
	release()

	busy, releaseBusy := m.Acquire("")
	busyID := busy.ID

	clock.Advance(2 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, _, err := m.Lookup(idleID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	releaseBusy()
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, m.Sweep())
	_, _, err = m.Lookup(busyID)
	assert.ErrorIs(t, err, ErrSessionNotFound)
	assert.Equal(t, 0, m.Len())
}

func TestSessionManagerDelete(t *testing.T) {
	m, _ := newTestSessionManager(time.Hour)

	sess, release := m.Acquire("")
	release()

	assert.True(t, m.Delete(sess.ID))
	assert.False(t, m.Delete(sess.ID))
	assert.False(t, m.Delete(""))
}

func TestSessionManagerSerializesTurns(t *testing.T) {
	m, _ := newTestSessionManager(time.Hour)
	sess, release := m.Acquire("")
	id := sess.ID
	release()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, release := m.Acquire(id)
			defer release()
			s.AppendTurn(domain.Turn{Role: domain.RoleUser, Content: "x"}, 0)
		}()
	}
	wg.Wait()

	s, release, err := m.Lookup(id)
	require.NoError(t, err)
	defer release()
	assert.Len(t, s.History, 50)
}

func TestSessionSweeperStartStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	m := NewSessionManager(time.Nanosecond, zap.NewNop())
	sess, release := m.Acquire("")
	release()
	require.Equal(t, 1, m.Len())

	sweeper := NewSessionSweeper(m, zap.NewNop())
	sweeper.SetInterval(5 * time.Millisecond)
	sweeper.Start()

	assert.Eventually(t, func() bool {
		_, _, err := m.Lookup(sess.ID)
		return err != nil && m.Len() == 0
	}, time.Second, 5*time.Millisecond)

	sweeper.Stop()
}
