package websocket

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	inbound chan []byte
	mutex   sync.Mutex
	written [][]byte
	closed  bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{inbound: make(chan []byte, 4)}
}

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	msg, ok := <-f.inbound
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, msg, nil
}

func (f *fakeConn) WriteMessage(_ int, data []byte) error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.written = append(f.written, data)
	return nil
}

func (f *fakeConn) SetReadLimit(int64) {}
func (f *fakeConn) SetReadDeadline(time.Time) error { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error { return nil }
func (f *fakeConn) SetPongHandler(func(string) error) {}

func (f *fakeConn) Close() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	f.closed = true
	return nil
}

func TestReadPumpDeliversAndUnregisters(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := NewManager()
	m.Start(ctx)

	conn := newFakeConn()
	client := NewClient("u1", conn)
	require.True(t, m.Add(client))
	require.Eventually(t, func() bool { return m.Count() == 1 }, time.Second, 5*time.Millisecond)

	received := make(chan string, 1)
	go client.ReadPump(m, func(msg []byte) { received <- string(msg) })

	conn.inbound <- []byte(`{"tab":"get"}`)
	assert.Equal(t, `{"tab":"get"}`, <-received)

	close(conn.inbound)
	<-client.Done()
	require.Eventually(t, func() bool { return m.Count() == 0 }, time.Second, 5*time.Millisecond)
	assert.False(t, client.Enqueue([]byte("late")), "closed clients refuse frames")
}

func TestWritePumpFlushesQueuedFrames(t *testing.T) {
	conn := newFakeConn()
	client := NewClient("u1", conn)

	require.True(t, client.Enqueue([]byte("view-1")))
	client.close()

	client.WritePump()

	conn.mutex.Lock()
	defer conn.mutex.Unlock()
	require.Len(t, conn.written, 2)
	assert.Equal(t, "view-1", string(conn.written[0]))
	assert.True(t, conn.closed)
}

func TestAddAfterShutdownDoesNotBlock(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewManager()
	m.Start(ctx)
	cancel()
	<-m.stopped

	client := NewClient("u1", newFakeConn())
	added := make(chan bool, 1)
	go func() { added <- m.Add(client) }()

	select {
	case ok := <-added:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Add blocked after the manager stopped")
	}
	assert.Zero(t, m.Count())
	assert.False(t, client.Enqueue([]byte("late")))
}
