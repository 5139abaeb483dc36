package sink

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/valyala/fasttemplate"

	"github.com/maksimkurb/keen-threatfeed/src/internal/config"
	"github.com/maksimkurb/keen-threatfeed/src/internal/log"
)

type Sink interface {
	Send(message string)
}

// Log writes each message to the application log at info level.
type Log struct{}

func (Log) Send(message string) {
	log.Infof("%s", message)
}

// Writer prints each message on its own line.
type Writer struct {
	mu  sync.Mutex
	out io.Writer
}

func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

func (w *Writer) Send(message string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := fmt.Fprintln(w.out, message); err != nil {
		log.Debugf("Failed to print message: %v", err)
	}
}

// Template renders each message through a fasttemplate before passing it on.
// Available variables are {{module}} and {{message}}.
type Template struct {
	tmpl   *fasttemplate.Template
	module string
	next   Sink
}

func NewTemplate(format, module string, next Sink) *Template {
	if format == "" {
		format = config.DefaultMessageFormat
	}
	return &Template{
		tmpl:   fasttemplate.New(format, "{{", "}}"),
		module: module,
		next:   next,
	}
}

func (t *Template) Send(message string) {
	t.next.Send(t.tmpl.ExecuteString(map[string]interface{}{
		config.MSG_TMPL_MODULE:  t.module,
		config.MSG_TMPL_MESSAGE: message,
	}))
}

type tee []Sink

// Tee delivers every message to all sinks in order.
func Tee(sinks ...Sink) Sink {
	return tee(sinks)
}

func (t tee) Send(message string) {
	for _, s := range t {
		s.Send(message)
	}
}

// Queue is a bounded output queue. Send never blocks: when the queue is full
// the message is dropped and counted. Sends after Close are dropped too.
type Queue struct {
	mu      sync.RWMutex
	ch      chan string
	closed  bool
	dropped atomic.Uint64
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 1
	}
	return &Queue{ch: make(chan string, size)}
}

func (q *Queue) Send(message string) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		q.dropped.Add(1)
		return
	}
	select {
	case q.ch <- message:
	default:
		q.dropped.Add(1)
	}
}

// Messages returns the receive side of the queue. It is closed by Close.
func (q *Queue) Messages() <-chan string {
	return q.ch
}

func (q *Queue) Dropped() uint64 {
	return q.dropped.Load()
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}

// Entry is a message remembered by History.
type Entry struct {
	Time    time.Time `json:"time"`
	Message string    `json:"message"`
}

// History keeps the most recent messages in memory.
type History struct {
	mu      sync.Mutex
	limit   int
	entries []Entry
	now     func() time.Time
}

func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = 1
	}
	return &History{limit: limit, now: time.Now}
}

func (h *History) Send(message string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = append(h.entries, Entry{Time: h.now(), Message: message})
	if len(h.entries) > h.limit {
		h.entries = append([]Entry(nil), h.entries[len(h.entries)-h.limit:]...)
	}
}

// Recent returns a copy of the remembered messages, oldest first.
func (h *History) Recent() []Entry {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Entry(nil), h.entries...)
}
