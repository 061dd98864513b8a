package conversation

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionKey(t *testing.T) {
	assert.Equal(t, "s-1", SessionKey(" s-1 ", "farmer01"))
	assert.Equal(t, "farmer01", SessionKey("", "farmer01"))

	k := SessionKey("", "")
	_, err := uuid.Parse(k)
	assert.NoError(t, err)
	assert.NotEqual(t, k, SessionKey("", ""))
}

func TestRender(t *testing.T) {
	assert.Equal(t, "", Render(nil))
	got := Render([]Turn{{Question: "q1", Answer: "a1"}, {Question: "q2", Answer: "a2"}})
	assert.Equal(t, "Human: q1\nAI: a1\nHuman: q2\nAI: a2", got)
}

// exerciseStore runs the shared contract against any Store.
func exerciseStore(t *testing.T, s Store, maxTurns int) {
	ctx := context.Background()
	a, b := "session-a-"+uuid.NewString(), "session-b-"+uuid.NewString()
	t.Cleanup(func() {
		_ = s.Reset(ctx, a)
		_ = s.Reset(ctx, b)
	})

	h, err := s.History(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, h)

	for i := 0; i < maxTurns+2; i++ {
		require.NoError(t, s.Append(ctx, a, Turn{Question: fmt.Sprintf("q%d", i), Answer: "a", At: time.Now()}))
	}
	require.NoError(t, s.Append(ctx, b, Turn{Question: "other farmer", Answer: "x"}))

	h, err = s.History(ctx, a)
	require.NoError(t, err)
	require.Len(t, h, maxTurns)
	assert.Equal(t, "q2", h[0].Question)
	assert.Equal(t, fmt.Sprintf("q%d", maxTurns+1), h[len(h)-1].Question)

	hb, err := s.History(ctx, b)
	require.NoError(t, err)
	require.Len(t, hb, 1)
	assert.Equal(t, "other farmer", hb[0].Question)

	require.NoError(t, s.Reset(ctx, a))
	h, err = s.History(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, h)
}

func TestMemory_Contract(t *testing.T) {
	exerciseStore(t, NewMemory(3, time.Hour), 3)
}

func TestMemory_HistoryIsACopy(t *testing.T) {
	m := NewMemory(0, 0)
	ctx := context.Background()
	require.NoError(t, m.Append(ctx, "k", Turn{Question: "q"}))
	h, _ := m.History(ctx, "k")
	h[0].Question = "mutated"
	h2, _ := m.History(ctx, "k")
	assert.Equal(t, "q", h2[0].Question)
}

func TestMemory_ConcurrentAppends(t *testing.T) {
	m := NewMemory(0, 0)
	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.Append(ctx, "shared", Turn{Question: fmt.Sprint(i)})
		}(i)
	}
	wg.Wait()
	h, _ := m.History(ctx, "shared")
	assert.Len(t, h, 50)
}

func TestMemory_ExpiresIdleSessions(t *testing.T) {
	m := NewMemory(5, 24*time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, m.Append(ctx, "active", Turn{Question: "q1"}))
	now = now.Add(25 * time.Hour)

	h, err := m.History(ctx, "active")
	require.NoError(t, err)
	assert.Empty(t, h)

	require.NoError(t, m.Append(ctx, "active", Turn{Question: "q2"}))
	h, err = m.History(ctx, "active")
	require.NoError(t, err)
	require.Len(t, h, 1)
	assert.Equal(t, "q2", h[0].Question)
}

func TestMemory_StaleAnonymousSessionsDoNotAccumulate(t *testing.T) {
	m := NewMemory(5, 24*time.Hour)
	ctx := context.Background()
	old := time.Now().Add(-48 * time.Hour)

	for i := 0; i < 50000; i++ {
		require.NoError(t, m.Append(ctx, SessionKey("", ""), Turn{Question: "q", At: old}))
	}
	assert.Zero(t, m.Len())
}

func TestMemory_SweepDropsIdleSessions(t *testing.T) {
	m := NewMemory(5, time.Hour)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 100; i++ {
		require.NoError(t, m.Append(ctx, fmt.Sprint("s", i), Turn{Question: "q"}))
	}
	assert.Equal(t, 100, m.Len())

	now = now.Add(2 * time.Hour)
	require.NoError(t, m.Append(ctx, "fresh", Turn{Question: "q"}))
	assert.Equal(t, 1, m.Len())
}

func TestRedis_Contract(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("REDIS_TEST_URL not set")
	}
	s, err := DialRedis(context.Background(), url, 3, time.Minute)
	require.NoError(t, err)
	defer s.Close()
	exerciseStore(t, s, 3)
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not-a-url", 3, time.Minute)
	assert.Error(t, err)
}
