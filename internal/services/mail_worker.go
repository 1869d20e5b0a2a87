package services

import (
	"log"
	"sync"
)

// MailWorker is a bounded pool that delivers messages in the background.
// Delivery errors are logged, never surfaced: callers that enqueue here
// have already answered their request.
type MailWorker struct {
	sender  Sender
	tasks   chan *Message
	workers int

	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewMailWorker creates a pool with the given number of workers and a
// bounded queue of pending messages.
func NewMailWorker(sender Sender, workers, queueSize int) *MailWorker {
	if workers <= 0 {
		workers = 2
	}
	if queueSize <= 0 {
		queueSize = 32
	}
	return &MailWorker{
		sender:  sender,
		tasks:   make(chan *Message, queueSize),
		workers: workers,
	}
}

func (w *MailWorker) Start() {
	for i := 0; i < w.workers; i++ {
		w.wg.Add(1)
		go w.run()
	}
}

func (w *MailWorker) run() {
	defer w.wg.Done()
	for msg := range w.tasks {
		if err := w.sender.Send(msg); err != nil {
			log.Printf("Background email to %s failed: %v", msg.To, err)
		}
	}
}

// Enqueue hands a message to the pool without blocking. It reports false
// when the queue is full so the caller can fall back to a synchronous send.
func (w *MailWorker) Enqueue(msg *Message) bool {
	select {
	case w.tasks <- msg:
		return true
	default:
		log.Printf("Mail queue full, falling back to synchronous send for %s", msg.To)
		return false
	}
}

// Stop closes the queue and waits for in-flight sends to finish
func (w *MailWorker) Stop() {
	w.stopOnce.Do(func() {
		close(w.tasks)
	})
	w.wg.Wait()
}
