package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testEventuallyTimeout = time.Second
	testPollInterval      = 10 * time.Millisecond
)

func TestHub_BroadcastReachesEveryConnectionOfUser(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(1, nil)
	require.NoError(t, err)
	other, err := hub.Register(2, nil)
	require.NoError(t, err)

	hub.Broadcast(1, `{"type":"notification_created"}`)

	assert.Equal(t, `{"type":"notification_created"}`, string(<-a.Send))
	assert.Equal(t, `{"type":"notification_created"}`, string(<-b.Send))
	assert.Len(t, other.Send, 0)
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()
	defer func() { _ = hub.Shutdown(context.Background()) }()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(5, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(5, nil)
	assert.ErrorIs(t, err, ErrUserConnLimit)
	assert.Equal(t, maxConnsPerUser, hub.ConnectionCount(5))
}

func TestHub_UnregisterIsIdempotent(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(3, nil)
	require.NoError(t, err)

	hub.UnregisterClient(c)
	hub.UnregisterClient(c)
	assert.Equal(t, 0, hub.ConnectionCount(3))

	// Sending to a closed client must not panic.
	assert.NotPanics(t, func() { c.TrySend([]byte("late")) })
}

func TestHub_RegisterAfterShutdown(t *testing.T) {
	hub := NewHub()
	require.NoError(t, hub.Shutdown(context.Background()))
	_, err := hub.Register(1, nil)
	assert.ErrorIs(t, err, ErrHubClosed)
}

func TestClient_TrySendKeepsNewestBehindDropNotice(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(9, nil)
	require.NoError(t, err)

	for i := 0; i < sendBufferSize; i++ {
		c.TrySend([]byte("fill"))
	}
	c.TrySend([]byte("overflow"))

	require.Len(t, c.Send, sendBufferSize)
	var frames [][]byte
	for len(c.Send) > 0 {
		frames = append(frames, <-c.Send)
	}
	assert.Equal(t, "fill", string(frames[0]))
	assert.Equal(t, "overflow", string(frames[len(frames)-1]))

	var ev Event
	require.NoError(t, json.Unmarshal(frames[len(frames)-2], &ev))
	assert.Equal(t, EventMessagesDropped, ev.Type)
}

func TestHub_ShutdownClosesSendQueues(t *testing.T) {
	hub := NewHub()
	a, err := hub.Register(1, nil)
	require.NoError(t, err)
	b, err := hub.Register(2, nil)
	require.NoError(t, err)
	a.TrySend([]byte("pending"))

	require.NoError(t, hub.Shutdown(context.Background()))
	require.NoError(t, hub.Shutdown(context.Background()))

	// Queued frames still drain before the close, which WritePump turns into a close frame.
	assert.Equal(t, "pending", string(<-a.Send))
	_, open := <-a.Send
	assert.False(t, open)
	_, open = <-b.Send
	assert.False(t, open)
	assert.Equal(t, 0, hub.ConnectionCount(1))
}

func TestHandleIncoming_PingGetsPong(t *testing.T) {
	hub := NewHub()
	c, err := hub.Register(4, nil)
	require.NoError(t, err)

	c.IncomingHandler(c, []byte(`{"type":"ping"}`))
	c.IncomingHandler(c, []byte(`not json`))
	c.IncomingHandler(c, []byte(`{"type":"subscribe"}`))

	require.Len(t, c.Send, 1)
	var ev Event
	require.NoError(t, json.Unmarshal(<-c.Send, &ev))
	assert.Equal(t, EventPong, ev.Type)
}

func TestHub_StartWiringForwardsPublishedEvents(t *testing.T) {
	n := NewNotifier(newTestRedis(t))
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := hub.Register(11, nil)
	require.NoError(t, err)
	require.NoError(t, hub.StartWiring(ctx, n))

	require.NoError(t, n.PublishEvent(context.Background(), 11, EventNotificationsReadAll, ReadAllPayload{Count: 4}))
	// Malformed channel names are ignored.
	require.NoError(t, n.rdb.Publish(context.Background(), "notifications:user:x", "junk").Err())

	assert.Eventually(t, func() bool { return len(c.Send) == 1 }, testEventuallyTimeout, testPollInterval)
	var ev struct {
		Type    string         `json:"type"`
		Payload ReadAllPayload `json:"payload"`
	}
	require.NoError(t, json.Unmarshal(<-c.Send, &ev))
	assert.Equal(t, EventNotificationsReadAll, ev.Type)
	assert.Equal(t, int64(4), ev.Payload.Count)
}
