package chatseal

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// MessageUpdate is the event emitted when an async decrypt resolves (or a
// placeholder is applied) for a message.
type MessageUpdate struct {
	MessageID string
	ChatID    string
	// Text is the display text written for the message.
	Text string
	// Placeholder marks Text as a rendering placeholder rather than
	// decrypted content.
	Placeholder bool
	// Err is the decrypt failure behind a placeholder update, nil for
	// successful decrypts.
	Err error
}

// updateSubscriber is a registered update callback.
type updateSubscriber struct {
	id       string
	callback func(MessageUpdate)
	active   atomic.Bool
}

// updateQueue applies message display updates through a single writer
// goroutine with last-successful-write-wins merge semantics: once a
// message has resolved to real plaintext, later placeholder updates for
// that message are dropped. This makes concurrent fire-and-forget decrypts
// safe without ordering guarantees between them.
type updateQueue struct {
	store MessageStore
	log   *logrus.Logger

	ch   chan MessageUpdate
	done chan struct{}

	// resolved tracks messages that have real plaintext applied. Touched
	// only by the run goroutine.
	resolved map[string]struct{}

	mu     sync.RWMutex
	subs   map[string]*updateSubscriber
	nextID atomic.Uint64

	// postMu serializes post against close so a send never races a
	// channel close.
	postMu sync.RWMutex
	closed bool
}

func newUpdateQueue(store MessageStore, log *logrus.Logger) *updateQueue {
	q := &updateQueue{
		store:    store,
		log:      log,
		ch:       make(chan MessageUpdate, 64),
		done:     make(chan struct{}),
		resolved: make(map[string]struct{}),
		subs:     make(map[string]*updateSubscriber),
	}
	go q.run()
	return q
}

func (q *updateQueue) run() {
	defer close(q.done)
	for update := range q.ch {
		q.apply(update)
	}
}

// apply writes one update. Single-writer: no lock is needed for the
// resolved set.
func (q *updateQueue) apply(update MessageUpdate) {
	if update.Placeholder {
		if _, ok := q.resolved[update.MessageID]; ok {
			// A successful decrypt already landed; never clobber it.
			return
		}
	} else {
		q.resolved[update.MessageID] = struct{}{}
	}

	if err := q.store.SetDisplayText(context.Background(), update.MessageID, update.Text, update.Placeholder); err != nil {
		q.log.WithFields(logrus.Fields{
			"message": update.MessageID,
			"err":     err,
		}).Warn("failed to apply message update")
		return
	}

	q.notify(update)
}

// post enqueues an update. Updates posted after close are dropped.
func (q *updateQueue) post(update MessageUpdate) {
	q.postMu.RLock()
	defer q.postMu.RUnlock()
	if q.closed {
		return
	}
	q.ch <- update
}

// subscribe registers a callback for applied updates. Returns an
// unsubscribe function that is safe to call multiple times.
func (q *updateQueue) subscribe(callback func(MessageUpdate)) func() {
	id := strconv.FormatUint(q.nextID.Add(1), 10)

	sub := &updateSubscriber{id: id, callback: callback}
	sub.active.Store(true)

	q.mu.Lock()
	q.subs[id] = sub
	q.mu.Unlock()

	return func() {
		q.mu.Lock()
		if s, ok := q.subs[id]; ok {
			s.active.Store(false)
			delete(q.subs, id)
		}
		q.mu.Unlock()
	}
}

// notify invokes callbacks without holding the lock.
func (q *updateQueue) notify(update MessageUpdate) {
	q.mu.RLock()
	subs := make([]*updateSubscriber, 0, len(q.subs))
	for _, sub := range q.subs {
		subs = append(subs, sub)
	}
	q.mu.RUnlock()

	for _, sub := range subs {
		if sub.active.Load() {
			sub.callback(update)
		}
	}
}

// close drains the queue and stops the writer goroutine.
func (q *updateQueue) close() {
	q.postMu.Lock()
	if q.closed {
		q.postMu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.postMu.Unlock()
	<-q.done
}
