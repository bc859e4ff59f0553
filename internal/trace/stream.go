package trace

import (
	"io"
	"sync"
)

// StreamTracer writes every accepted event to w as it arrives. Write
// errors are dropped: a broken trace sink never fails a check run.
type StreamTracer struct {
	gate
	mu     sync.Mutex
	w      io.Writer
	format Format
	n      int // events written, for the Chrome separators
}

// NewStreamTracer returns a tracer writing to w. The Chrome format opens
// its event array here and closes it in Close.
func NewStreamTracer(w io.Writer, level Level, format Format) *StreamTracer {
	if format == FormatAuto {
		format = FormatText
	}
	t := &StreamTracer{gate: gate{level}, w: w, format: format}
	if format == FormatChrome {
		_, _ = io.WriteString(w, "{\"traceEvents\":[\n")
	}
	return t
}

func (t *StreamTracer) Emit(ev *Event) {
	if !t.accepts(ev) {
		return
	}
	data := FormatEvent(ev, t.format)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.format == FormatChrome && t.n > 0 {
		_, _ = io.WriteString(t.w, ",\n")
	}
	t.n++
	_, _ = t.w.Write(data)
}

// Flush flushes w when it buffers.
func (t *StreamTracer) Flush() error {
	if f, ok := t.w.(interface{ Flush() error }); ok {
		return f.Flush()
	}
	return nil
}

// Close terminates the Chrome array, flushes, and closes w when it is an
// io.Closer other than the standard streams.
func (t *StreamTracer) Close() error {
	t.mu.Lock()
	if t.format == FormatChrome {
		_, _ = io.WriteString(t.w, "\n]}\n")
	}
	t.mu.Unlock()

	if err := t.Flush(); err != nil {
		return err
	}
	if c, ok := t.w.(io.Closer); ok && !isStdStream(t.w) {
		return c.Close()
	}
	return nil
}
