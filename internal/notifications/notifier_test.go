package notifications

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func TestNotifier_NilRedisIsNoop(t *testing.T) {
	n := NewNotifier(nil)
	assert.False(t, n.Enabled())
	assert.NoError(t, n.PublishBroadcast(context.Background(), "posts", []byte("{}")))
	assert.NoError(t, n.StartBroadcastSubscriber(context.Background(), func(string, string) {
		t.Fatal("unexpected message")
	}))
}

func TestBroadcastChannel(t *testing.T) {
	assert.Equal(t, "broadcast:posts", BroadcastChannel("posts"))
}

func TestNotifier_SubscriberStopsOnCancel(t *testing.T) {
	rdb := newTestRedis(t)
	n := NewNotifier(rdb)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var received int32
	payloads := make(chan string, 2)
	require.NoError(t, n.StartBroadcastSubscriber(ctx, func(channel, payload string) {
		assert.Equal(t, "broadcast:posts", channel)
		atomic.AddInt32(&received, 1)
		payloads <- payload
	}))

	require.NoError(t, n.PublishBroadcast(context.Background(), "posts", []byte("before-cancel")))
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&received) >= 1
	}, testEventuallyTimeout, testPollInterval)
	assert.Equal(t, "before-cancel", <-payloads)

	cancel()
	time.Sleep(20 * time.Millisecond)

	require.NoError(t, n.PublishBroadcast(context.Background(), "posts", []byte("after-cancel")))
	assert.Never(t, func() bool {
		select {
		case payload := <-payloads:
			return payload == "after-cancel"
		default:
			return false
		}
	}, 200*time.Millisecond, testPollInterval)
}

func TestBroadcaster_RedisFanOutDeliversOnce(t *testing.T) {
	rdb := newTestRedis(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := NewHub()
	notifier := NewNotifier(rdb)
	require.NoError(t, hub.StartWiring(ctx, notifier))
	c, err := hub.Register(0, nil)
	require.NoError(t, err)

	b := NewBroadcaster(hub, notifier)
	require.NoError(t, b.Emit(context.Background(), "posts", testEvent{Action: "create", Post: map[string]any{"id": 1}}))

	assert.Eventually(t, func() bool { return len(c.Send) == 1 }, testEventuallyTimeout, testPollInterval)
	assert.Never(t, func() bool { return len(c.Send) > 1 }, 100*time.Millisecond, testPollInterval)

	msg := <-c.Send
	assert.JSONEq(t, `{"event":"posts","data":{"action":"create","post":{"id":1}}}`, string(msg))
}
