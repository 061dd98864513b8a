package events

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func TestEmit_LogsFailures(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	rec := &Recorder{Err: errors.New("broker down")}

	Emit(context.Background(), rec, zap.New(core), SubjectChatSaved, ChatSaved{ID: 1})
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, SubjectChatSaved, logs.All()[0].ContextMap()["subject"])
}

func TestEmit_Records(t *testing.T) {
	rec := &Recorder{}
	Emit(context.Background(), rec, zaptest.NewLogger(t), SubjectDetectionSaved, DetectionSaved{ID: 3, Disease: "Leaf Blight"})
	assert.Equal(t, []string{SubjectDetectionSaved}, rec.Subjects())

	assert.NotPanics(t, func() { Emit(context.Background(), nil, zaptest.NewLogger(t), "x", nil) })
	assert.NoError(t, Noop{}.Publish(context.Background(), "x", nil))
}

func TestNATS_Publish(t *testing.T) {
	url := os.Getenv("NATS_TEST_URL")
	if url == "" {
		t.Skip("NATS_TEST_URL not set")
	}
	pub, err := NewNATS(url, zaptest.NewLogger(t))
	require.NoError(t, err)
	defer pub.Close()

	sub, err := nats.Connect(url)
	require.NoError(t, err)
	defer sub.Close()
	ch := make(chan *nats.Msg, 1)
	s, err := sub.ChanSubscribe(SubjectDetectionSaved, ch)
	require.NoError(t, err)
	defer s.Unsubscribe()
	require.NoError(t, sub.Flush())

	require.NoError(t, pub.Publish(context.Background(), SubjectDetectionSaved, DetectionSaved{ID: 9, UserID: "farmer01"}))

	select {
	case msg := <-ch:
		var got DetectionSaved
		require.NoError(t, json.Unmarshal(msg.Data, &got))
		assert.Equal(t, uint(9), got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}
}

func TestNewNATS_Unreachable(t *testing.T) {
	_, err := NewNATS("nats://127.0.0.1:1", zaptest.NewLogger(t))
	assert.Error(t, err)
}
