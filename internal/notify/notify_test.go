package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/Skotchmaster/bookcart/internal/cart"
	"github.com/Skotchmaster/bookcart/internal/logging"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakePublisher struct {
	mu    sync.Mutex
	got   []cart.Notification
	err   error
	block chan struct{}
}

func (p *fakePublisher) Publish(_ context.Context, n cart.Notification) error {
	if p.block != nil {
		<-p.block
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, n)
	return p.err
}

func (p *fakePublisher) published() []cart.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]cart.Notification(nil), p.got...)
}

func note(id string) cart.Notification {
	return cart.Notification{Kind: cart.KindItemAdded, ItemID: id, Title: "Book added", Description: id + " was added to your cart"}
}

func TestAsync_DeliversInOrderAndDrains(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	a := NewAsync(pub, 16, logging.Discard())
	for _, id := range []string{"a", "b", "c"} {
		a.Notify(context.Background(), note(id))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, a.Close(ctx))

	got := pub.published()
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ItemID)
	assert.Equal(t, "b", got[1].ItemID)
	assert.Equal(t, "c", got[2].ItemID)
}

func TestAsync_DropsWhenFull(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	log := logging.NewWithWriter(&buf, "debug")

	pub := &fakePublisher{block: make(chan struct{})}
	a := NewAsync(pub, 1, log)

	// the worker takes the first one and blocks; the second fills the queue
	a.Notify(context.Background(), note("a"))
	require.Eventually(t, func() bool { return len(a.queue) == 0 }, time.Second, 5*time.Millisecond)
	a.Notify(context.Background(), note("b"))
	a.Notify(context.Background(), note("c"))

	close(pub.block)
	require.NoError(t, a.Close(context.Background()))

	got := pub.published()
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ItemID)
	assert.Equal(t, "b", got[1].ItemID)
	assert.Contains(t, buf.String(), "notify_queue_full")
}

func TestAsync_PublishErrorIsLogged(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	pub := &fakePublisher{err: errors.New("broker down")}
	a := NewAsync(pub, 0, logging.NewWithWriter(&buf, "info"))

	a.Notify(context.Background(), note("a"))
	require.NoError(t, a.Close(context.Background()))
	assert.Contains(t, buf.String(), "notify_publish_error")
	assert.Contains(t, buf.String(), "broker down")
}

func TestAsync_NotifyAfterCloseIsIgnored(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{}
	a := NewAsync(pub, 4, logging.Discard())
	require.NoError(t, a.Close(context.Background()))
	require.NoError(t, a.Close(context.Background()))

	assert.NotPanics(t, func() { a.Notify(context.Background(), note("late")) })
	assert.Empty(t, pub.published())
}

func TestAsync_CloseHonorsContext(t *testing.T) {
	t.Parallel()

	pub := &fakePublisher{block: make(chan struct{})}
	a := NewAsync(pub, 4, logging.Discard())
	a.Notify(context.Background(), note("stuck"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, a.Close(ctx), context.DeadlineExceeded)

	close(pub.block)
	require.NoError(t, a.Close(context.Background()))
}

func TestMulti(t *testing.T) {
	t.Parallel()

	var first, second []cart.Notification
	m := Multi{
		cart.NotifierFunc(func(_ context.Context, n cart.Notification) { first = append(first, n) }),
		nil,
		cart.NotifierFunc(func(_ context.Context, n cart.Notification) { second = append(second, n) }),
	}
	m.Notify(context.Background(), note("x"))

	assert.Equal(t, []cart.Notification{note("x")}, first)
	assert.Equal(t, []cart.Notification{note("x")}, second)
}

func TestLog(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	Log{L: slog.New(slog.NewJSONHandler(&buf, nil))}.Notify(context.Background(), note("b7"))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "notification", entry["msg"])
	assert.Equal(t, "item_added", entry["kind"])
	assert.Equal(t, "b7", entry["item_id"])
	assert.Equal(t, "Book added", entry["title"])
}

func TestRoutingKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "cart.item_added", RoutingKey(cart.KindItemAdded))
	assert.Equal(t, "cart.item_removed", RoutingKey(cart.KindItemRemoved))
	assert.Equal(t, "cart.quantity_updated", RoutingKey(cart.KindQuantityUpdated))
}

func TestEncodeEvent(t *testing.T) {
	t.Parallel()

	at := time.Date(2025, 3, 4, 5, 6, 7, 0, time.FixedZone("CET", 3600))
	data, err := encodeEvent(note("b1"), "bookcart", at)
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type":"item_added",
		"itemID":"b1",
		"title":"Book added",
		"description":"b1 was added to your cart",
		"source":"bookcart",
		"at":"2025-03-04T04:06:07Z"
	}`, string(data))
}

func TestNewKafka_RequiresBrokers(t *testing.T) {
	t.Parallel()

	_, err := NewKafka(nil, "", "bookcart")
	assert.Error(t, err)

	k, err := NewKafka([]string{"localhost:9092"}, "", "bookcart")
	require.NoError(t, err)
	assert.Equal(t, DefaultTopic, k.writer.Topic)
	require.NoError(t, k.Close())
}
