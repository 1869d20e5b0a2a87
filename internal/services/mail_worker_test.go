package services

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []*Message
	err  error
}

func (r *recordingSender) Send(msg *Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return r.err
}

func (r *recordingSender) messages() []*Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Message(nil), r.sent...)
}

func TestMailWorkerDeliversEnqueuedMessages(t *testing.T) {
	sender := &recordingSender{}
	worker := NewMailWorker(sender, 2, 8)
	worker.Start()

	for i := 0; i < 5; i++ {
		require.True(t, worker.Enqueue(&Message{To: "profe@x.com", Subject: "test"}))
	}
	worker.Stop()

	assert.Len(t, sender.messages(), 5)
}

func TestMailWorkerSwallowsDeliveryErrors(t *testing.T) {
	sender := &recordingSender{err: errors.New("transport down")}
	worker := NewMailWorker(sender, 1, 4)
	worker.Start()

	require.True(t, worker.Enqueue(&Message{To: "profe@x.com", Subject: "test"}))
	// Stop must not panic or surface the send error
	worker.Stop()

	assert.Len(t, sender.messages(), 1)
}

func TestMailWorkerEnqueueReportsFullQueue(t *testing.T) {
	sender := &recordingSender{}
	worker := NewMailWorker(sender, 1, 1)
	// Not started: the single queue slot fills and the next enqueue must
	// report false instead of blocking the request
	require.True(t, worker.Enqueue(&Message{To: "a@x.com"}))
	assert.False(t, worker.Enqueue(&Message{To: "b@x.com"}))
}
