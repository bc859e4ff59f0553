package trace

import (
	"time"
)

// Span brackets one operation with a begin and an end event. A Span from a
// disabled tracer, or for a scope the level filters out, is inert.
type Span struct {
	tracer  Tracer
	begin   *Event
	started time.Time
	extra   map[string]string
}

// Begin emits the begin event of a new span under parent (0 for a root).
func Begin(t Tracer, scope Scope, name string, parent uint64) *Span {
	if !admits(t, scope) {
		return &Span{}
	}
	ev := newEvent(KindSpanBegin, scope, name)
	ev.SpanID = spanCounter.Add(1)
	ev.ParentID = parent
	t.Emit(ev)
	return &Span{tracer: t, begin: ev, started: ev.Time}
}

// End emits the end event carrying detail and any extras, and returns the
// span's duration.
func (s *Span) End(detail string) time.Duration {
	if s == nil || s.begin == nil {
		return 0
	}
	ev := newEvent(KindSpanEnd, s.begin.Scope, s.begin.Name)
	ev.SpanID = s.begin.SpanID
	ev.ParentID = s.begin.ParentID
	ev.Detail = detail
	ev.Extra = s.extra
	s.tracer.Emit(ev)
	return ev.Time.Sub(s.started)
}

// WithExtra records key=value for the end event.
func (s *Span) WithExtra(key, value string) *Span {
	if s == nil || s.begin == nil {
		return s
	}
	if s.extra == nil {
		s.extra = make(map[string]string, 2)
	}
	s.extra[key] = value
	return s
}

// ID returns the span id, 0 for an inert span.
func (s *Span) ID() uint64 {
	if s == nil || s.begin == nil {
		return 0
	}
	return s.begin.SpanID
}

// Point emits an instant event under parent.
func Point(t Tracer, scope Scope, name, detail string, parent uint64) {
	if !admits(t, scope) {
		return
	}
	ev := newEvent(KindPoint, scope, name)
	ev.ParentID = parent
	ev.Detail = detail
	t.Emit(ev)
}

func admits(t Tracer, scope Scope) bool {
	return t != nil && t.Enabled() && t.Level().ShouldEmit(scope)
}
