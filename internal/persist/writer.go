package persist

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Iron-Ham/linefilter/internal/errors"
	"github.com/Iron-Ham/linefilter/internal/logging"
)

// DefaultQueueSize is the number of pending writes a Writer buffers before
// Set and Rename start to block.
const DefaultQueueSize = 64

// defaultOpTimeout bounds a single store operation on the writer goroutine.
const defaultOpTimeout = 10 * time.Second

// ErrorHandler receives persistence failures. It runs on the writer
// goroutine and must not block.
type ErrorHandler func(documentID string, err *errors.PersistenceError)

type opKind int

const (
	opSet opKind = iota
	opRename
	opFlush
)

type writeOp struct {
	kind     opKind
	id       string
	newID    string
	patterns []string
	done     chan struct{}
}

// Writer applies Store writes on one background goroutine. Callers enqueue
// and return immediately; writes for a document are applied in the order
// they were submitted. A failure is reported once per document until a
// later write for that document succeeds. Failed writes are not retried.
type Writer struct {
	store     Store
	onError   ErrorHandler
	logger    *logging.Logger
	opTimeout time.Duration

	ops  chan writeOp
	done chan struct{}

	sendMu sync.Mutex
	closed bool

	reportMu sync.Mutex
	reported map[string]bool
}

// WriterOption configures a Writer.
type WriterOption func(*Writer)

// WithErrorHandler sets the failure callback.
func WithErrorHandler(h ErrorHandler) WriterOption {
	return func(w *Writer) { w.onError = h }
}

// WithLogger sets the logger. The default discards output.
func WithLogger(l *logging.Logger) WriterOption {
	return func(w *Writer) {
		if l != nil {
			w.logger = l
		}
	}
}

// WithOpTimeout bounds each store call.
func WithOpTimeout(d time.Duration) WriterOption {
	return func(w *Writer) {
		if d > 0 {
			w.opTimeout = d
		}
	}
}

// NewWriter starts a Writer for store. Call Close to stop it.
func NewWriter(store Store, opts ...WriterOption) *Writer {
	w := &Writer{
		store:     store,
		logger:    logging.NopLogger(),
		opTimeout: defaultOpTimeout,
		ops:       make(chan writeOp, DefaultQueueSize),
		done:      make(chan struct{}),
		reported:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.WithComponent("persist")

	go w.run()
	return w
}

// Set queues a replacement of the record for id. An empty list removes it.
// It reports false when the Writer is closed and the write was dropped.
func (w *Writer) Set(id string, patterns []string) bool {
	return w.enqueue(writeOp{kind: opSet, id: id, patterns: slices.Clone(patterns)})
}

// Rename queues a move of the record from oldID to newID.
func (w *Writer) Rename(oldID, newID string) bool {
	return w.enqueue(writeOp{kind: opRename, id: oldID, newID: newID})
}

// Flush waits until every write queued before the call has been applied.
func (w *Writer) Flush(ctx context.Context) error {
	done := make(chan struct{})
	if !w.enqueue(writeOp{kind: opFlush, done: done}) {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close applies the queued writes and stops the goroutine. The underlying
// Store is left open.
func (w *Writer) Close() {
	w.sendMu.Lock()
	if w.closed {
		w.sendMu.Unlock()
		<-w.done
		return
	}
	w.closed = true
	close(w.ops)
	w.sendMu.Unlock()

	<-w.done
}

// enqueue holds the lock while sending so Close cannot close the channel
// under a pending send.
func (w *Writer) enqueue(op writeOp) bool {
	w.sendMu.Lock()
	defer w.sendMu.Unlock()

	if w.closed {
		return false
	}
	w.ops <- op
	return true
}

func (w *Writer) run() {
	defer close(w.done)

	for op := range w.ops {
		switch op.kind {
		case opFlush:
			close(op.done)
		case opSet:
			w.apply(op.id, "set", func(ctx context.Context) error {
				return w.store.Set(ctx, op.id, op.patterns)
			})
		case opRename:
			w.apply(op.id, "rename", func(ctx context.Context) error {
				return w.store.Rename(ctx, op.id, op.newID)
			})
		}
	}
}

func (w *Writer) apply(id, operation string, fn func(ctx context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), w.opTimeout)
	defer cancel()

	err := fn(ctx)
	if err == nil {
		w.setReported(id, false)
		w.logger.Debug("filter record written", "document_id", id, "op", operation)
		return
	}

	if w.setReported(id, true) {
		return
	}

	perr := errors.NewPersistenceError(operation, err).WithDocumentID(id)
	w.logger.Error("persistence failed", "document_id", id, "op", operation, "error", err.Error())
	if w.onError != nil {
		w.onError(id, perr)
	}
}

// setReported updates the reported flag for id and returns its previous value.
func (w *Writer) setReported(id string, v bool) bool {
	w.reportMu.Lock()
	defer w.reportMu.Unlock()

	prev := w.reported[id]
	if v {
		w.reported[id] = true
	} else {
		delete(w.reported, id)
	}
	return prev
}
