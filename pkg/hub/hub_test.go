package hub

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errClosed = errors.New("closed")

type written struct {
	typ  int
	data []byte
}

// fakeConn is an in-memory websocket connection. ReadMessage blocks until
// Close; a blocking conn also stalls every write.
type fakeConn struct {
	writes    chan written
	closed    chan struct{}
	closeOnce sync.Once
	block     bool
}

func newFakeConn(block bool) *fakeConn {
	return &fakeConn{
		writes: make(chan written, 1024),
		closed: make(chan struct{}),
		block:  block,
	}
}

func (c *fakeConn) SetReadLimit(int64)                {}
func (c *fakeConn) SetReadDeadline(time.Time) error   { return nil }
func (c *fakeConn) SetWriteDeadline(time.Time) error  { return nil }
func (c *fakeConn) SetPongHandler(func(string) error) {}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.closed
	return 0, nil, errClosed
}

func (c *fakeConn) WriteMessage(typ int, data []byte) error {
	if c.block {
		<-c.closed
		return errClosed
	}
	select {
	case <-c.closed:
		return errClosed
	default:
	}
	c.writes <- written{typ, data}
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) next(t *testing.T) written {
	t.Helper()
	select {
	case w := <-c.writes:
		return w
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for write")
		return written{}
	}
}

func startHub(t *testing.T) (*Hub, context.CancelFunc) {
	t.Helper()
	h := New("test")
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	t.Cleanup(cancel)
	return h, cancel
}

func connect(t *testing.T, h *Hub, block bool, greeting ...Message) *fakeConn {
	t.Helper()
	conn := newFakeConn(block)
	c := NewClient(h, conn, greeting...)
	require.NotNil(t, c)
	go c.Run()
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_BroadcastToAll(t *testing.T) {
	h, _ := startHub(t)
	a := connect(t, h, false)
	b := connect(t, h, false)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	require.NoError(t, h.BroadcastJSON(map[string]int{"seq": 1}))

	for _, c := range []*fakeConn{a, b} {
		w := c.next(t)
		assert.Equal(t, websocket.TextMessage, w.typ)
		assert.JSONEq(t, `{"seq":1}`, string(w.data))
	}
	assert.Equal(t, uint64(1), h.Stats().Broadcast)
}

func TestHub_GreetingFirst(t *testing.T) {
	h, _ := startHub(t)
	c := connect(t, h, false, Message(`"hello"`))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	h.Broadcast(Message(`"frame"`))

	first := c.next(t)
	assert.Equal(t, websocket.TextMessage, first.typ)
	assert.Equal(t, `"hello"`, string(first.data))
	assert.Equal(t, `"frame"`, string(c.next(t).data))
}

func TestEncodeJSON(t *testing.T) {
	msg, err := EncodeJSON(struct {
		Seq uint64 `json:"seq"`
	}{Seq: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"seq":3}`, string(msg))

	_, err = EncodeJSON(make(chan int))
	assert.Error(t, err)

	h := New("test")
	assert.Error(t, h.BroadcastJSON(func() {}))
}

func TestHub_Unregister(t *testing.T) {
	h, _ := startHub(t)
	c := connect(t, h, false)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	c.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_EvictsSlowClient(t *testing.T) {
	h, _ := startHub(t)
	fast := connect(t, h, false)
	connect(t, h, true)
	require.Eventually(t, func() bool { return h.ClientCount() == 2 }, time.Second, 5*time.Millisecond)

	msg := Message(`{}`)
	require.Eventually(t, func() bool {
		h.Broadcast(msg)
		return h.Stats().Evicted == 1
	}, 5*time.Second, time.Millisecond)

	assert.Equal(t, 1, h.ClientCount())
	fast.next(t)
}

func TestHub_StopClosesClients(t *testing.T) {
	h, cancel := startHub(t)
	c := connect(t, h, false)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-h.Done()
	assert.False(t, h.IsRunning())
	assert.Equal(t, websocket.CloseMessage, c.next(t).typ)

	assert.Nil(t, NewClient(h, newFakeConn(false)))
}
