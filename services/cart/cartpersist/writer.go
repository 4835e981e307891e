package cartpersist

import (
	"context"
	"sync"

	"github.com/MarcGrol/tripcart/lib/mylog"
	"github.com/MarcGrol/tripcart/services/cart/cartmodel"
)

// Writer persists snapshots in the background. Only the latest pending snapshot
// is written, every write being a full overwrite.
type Writer struct {
	adapter *Adapter
	logger  mylog.Logger

	mu      sync.Mutex
	pending *cartmodel.CartState
	closed  bool

	wake      chan struct{}
	flushes   chan chan struct{}
	stop      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

func NewWriter(adapter *Adapter, logger mylog.Logger) *Writer {
	w := &Writer{
		adapter: adapter,
		logger:  logger,
		wake:    make(chan struct{}, 1),
		flushes: make(chan chan struct{}),
		stop:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go w.run()
	return w
}

// Submit never blocks, failures are logged
func (w *Writer) Submit(state cartmodel.CartState) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		w.logger.Log(context.Background(), w.adapter.Key(), mylog.SeverityWarn, "Dropping snapshot submitted after close")
		return
	}
	w.pending = &state
	w.mu.Unlock()

	select {
	case w.wake <- struct{}{}:
	default:
	}
}

// Flush returns once everything submitted before the call has been written
func (w *Writer) Flush(c context.Context) error {
	done := make(chan struct{})
	select {
	case w.flushes <- done:
	case <-w.stopped:
		return nil
	case <-c.Done():
		return c.Err()
	}

	select {
	case <-done:
		return nil
	case <-c.Done():
		return c.Err()
	}
}

// Close writes what is pending and stops the background goroutine
func (w *Writer) Close() error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		w.mu.Unlock()
		close(w.stop)
	})
	<-w.stopped
	return nil
}

func (w *Writer) run() {
	defer close(w.stopped)
	for {
		select {
		case <-w.wake:
			w.writePending()
		case done := <-w.flushes:
			w.writePending()
			close(done)
		case <-w.stop:
			w.writePending()
			return
		}
	}
}

func (w *Writer) writePending() {
	w.mu.Lock()
	state := w.pending
	w.pending = nil
	w.mu.Unlock()

	if state == nil {
		return
	}

	c := context.Background()
	err := w.adapter.Save(c, *state)
	if err != nil {
		w.logger.Log(c, w.adapter.Key(), mylog.SeverityError, "Error persisting snapshot: %s", err)
		return
	}
	w.logger.Log(c, w.adapter.Key(), mylog.SeverityDebug, "Persisted snapshot with %d items", len(state.Items))
}
