package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	for _, s := range []string{"off", "error", "phase", "detail", "debug", "DEBUG"} {
		if _, err := ParseLevel(s); err != nil {
			t.Fatalf("ParseLevel(%q): %v", s, err)
		}
	}
	if _, err := ParseLevel("verbose"); err == nil {
		t.Fatalf("expected error for unknown level")
	}
}

func TestLevelShouldEmit(t *testing.T) {
	if LevelPhase.ShouldEmit(ScopeFile) {
		t.Fatalf("phase level must not emit file scope")
	}
	if !LevelDetail.ShouldEmit(ScopeFile) || LevelDetail.ShouldEmit(ScopeCall) {
		t.Fatalf("detail level must stop at file scope")
	}
	if !LevelDebug.ShouldEmit(ScopeCall) {
		t.Fatalf("debug level must emit call scope")
	}
}

func TestStreamTracerNDJSON(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDetail, FormatNDJSON)

	span := Begin(tr, ScopeFile, "file:a.c", 0)
	Point(tr, ScopeFile, "cache", "miss", span.ID())
	Begin(tr, ScopeCall, "g_variant_get", span.ID()).End("")
	span.WithExtra("calls", "2").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d events, want 3 (call scope filtered):\n%s", len(lines), buf.String())
	}
	var last struct {
		Kind   string            `json:"kind"`
		Name   string            `json:"name"`
		Detail string            `json:"detail"`
		Extra  map[string]string `json:"extra"`
	}
	if err := json.Unmarshal([]byte(lines[2]), &last); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if last.Name != "file:a.c" || last.Detail != "ok" || last.Extra["calls"] != "2" {
		t.Fatalf("unexpected end event: %+v", last)
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	ring := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(ring, ScopeCall, name, "", 0)
	}
	events := ring.Snapshot()
	if len(events) != 2 || events[0].Name != "b" || events[1].Name != "c" {
		t.Fatalf("unexpected snapshot: %+v", events)
	}

	var buf bytes.Buffer
	if err := ring.Dump(&buf, FormatText); err != nil {
		t.Fatalf("dump: %v", err)
	}
	if !strings.Contains(buf.String(), "c") {
		t.Fatalf("dump lacks last event: %q", buf.String())
	}
}

func TestFindRing(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	stream := NewStreamTracer(&bytes.Buffer{}, LevelPhase, FormatText)
	if FindRing(ring) != ring {
		t.Fatalf("FindRing on a ring tracer")
	}
	if FindRing(NewMultiTracer(LevelPhase, stream, ring)) != ring {
		t.Fatalf("FindRing inside a multi tracer")
	}
	if FindRing(stream) != nil || FindRing(Nop) != nil || FindRing(nil) != nil {
		t.Fatalf("FindRing found a ring where there is none")
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
	ring := NewRingTracer(4, LevelDebug)
	ctx := WithTracer(context.Background(), ring)
	if FromContext(ctx) != Tracer(ring) {
		t.Fatalf("tracer not propagated")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 42})
	if got := CurrentSpan(ctx).SpanID; got != 42 {
		t.Fatalf("span id = %d, want 42", got)
	}
}

func TestNopSpan(t *testing.T) {
	span := Begin(Nop, ScopeDriver, "run", 0)
	if span.ID() != 0 {
		t.Fatalf("nop span has id %d", span.ID())
	}
	if d := span.End("done"); d != 0 {
		t.Fatalf("nop span duration %v", d)
	}
}

func TestNewPicksTracer(t *testing.T) {
	tr, err := New(Config{Level: LevelOff, Mode: ModeStream})
	if err != nil || tr != Nop {
		t.Fatalf("off level: got %T, %v", tr, err)
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeRing, RingSize: 2})
	if err != nil || FindRing(tr) == nil {
		t.Fatalf("ring mode: got %T, %v", tr, err)
	}
	tr, err = New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &bytes.Buffer{}})
	if err != nil {
		t.Fatalf("both mode: %v", err)
	}
	if _, ok := tr.(*MultiTracer); !ok || FindRing(tr) == nil {
		t.Fatalf("both mode: got %T", tr)
	}
	if _, err := ParseMode("tape"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestFormatForPath(t *testing.T) {
	cases := map[string]Format{
		"":                FormatText,
		"-":               FormatText,
		"run.ndjson":      FormatNDJSON,
		"run.json":        FormatChrome,
		"run.chrome.json": FormatChrome,
		"trace.log":       FormatText,
	}
	for path, want := range cases {
		if got := formatForPath(path); got != want {
			t.Fatalf("formatForPath(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestStreamTracerChromeArray(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatChrome)
	Begin(tr, ScopeDriver, "check_files", 0).End("2 files")
	Point(tr, ScopePass, "cache", "hit", 0)
	if err := tr.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	var doc struct {
		TraceEvents []struct {
			Name string            `json:"name"`
			Ph   string            `json:"ph"`
			Args map[string]string `json:"args"`
		} `json:"traceEvents"`
	}
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("chrome output is not JSON: %v\n%s", err, buf.String())
	}
	if len(doc.TraceEvents) != 3 {
		t.Fatalf("got %d events, want 3", len(doc.TraceEvents))
	}
	if doc.TraceEvents[0].Ph != "B" || doc.TraceEvents[1].Ph != "E" || doc.TraceEvents[2].Ph != "i" {
		t.Fatalf("unexpected phases: %+v", doc.TraceEvents)
	}
	if doc.TraceEvents[1].Args["detail"] != "2 files" {
		t.Fatalf("end event lacks detail: %+v", doc.TraceEvents[1])
	}
}

func TestHeartbeat(t *testing.T) {
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatalf("heartbeat on a disabled tracer")
	}
	var nilBeat *Heartbeat
	nilBeat.Stop()

	// heartbeats pass even the error level, which filters every scope
	ring := NewRingTracer(16, LevelError)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	events := ring.Snapshot()
	if len(events) == 0 || events[0].Kind != KindHeartbeat || events[0].Detail != "#1" {
		t.Fatalf("unexpected heartbeat events: %+v", events)
	}
}
