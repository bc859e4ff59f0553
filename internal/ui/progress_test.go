package ui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"

	"tartan/internal/driver"
)

func TestApplyEventTracksFinalStates(t *testing.T) {
	m := NewProgressModel("checking", []string{"a.c", "b.c", "c.c"}, nil).(*progressModel)

	m.applyEvent(driver.Event{File: "a.c", Stage: driver.StageParse, Status: driver.StatusWorking})
	if got := m.items[0].status; got != "parsing" {
		t.Fatalf("a.c status = %q, want parsing", got)
	}
	m.applyEvent(driver.Event{File: "a.c", Status: driver.StatusError})
	m.applyEvent(driver.Event{File: "b.c", Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "a.c", Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "unknown.c", Status: driver.StatusDone})
	m.applyEvent(driver.Event{Status: driver.StatusDone})

	if m.finished != 2 || m.failed != 1 || m.cached != 1 {
		t.Fatalf("finished=%d failed=%d cached=%d", m.finished, m.failed, m.cached)
	}
	if got := m.items[0].status; got != "error" {
		t.Fatalf("final status must stick, got %q", got)
	}

	view := m.View()
	if !strings.Contains(view, "checking 2/3") {
		t.Fatalf("header missing from view:\n%s", view)
	}
	if !strings.Contains(view, "1 with errors, 1 cached") {
		t.Fatalf("summary missing from view:\n%s", view)
	}
}

func TestVisibleLimitsRows(t *testing.T) {
	files := make([]string, maxVisible+5)
	for i := range files {
		files[i] = fmt.Sprintf("f%02d.c", i)
	}
	m := NewProgressModel("checking", files, nil).(*progressModel)
	last := files[len(files)-1]
	m.applyEvent(driver.Event{File: last, Stage: driver.StageCheck, Status: driver.StatusWorking})

	rows := m.visible()
	if len(rows) != maxVisible {
		t.Fatalf("visible rows = %d, want %d", len(rows), maxVisible)
	}
	if rows[0].path != last {
		t.Fatalf("in-flight file should come first, got %s", rows[0].path)
	}
	if !strings.Contains(m.View(), "5 more") {
		t.Fatal("hidden rows are not summarized")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		value string
		width int
		want  string
	}{
		{"abcdef", 5, "ab..."},
		{"src/gvariant-nested.c", 10, "src/gva..."},
		{"日本語テキスト", 7, "日本..."},
		{"abc", 3, "abc"},
		{"abc", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tt := range tests {
		got := truncate(tt.value, tt.width)
		if got != tt.want {
			t.Fatalf("truncate(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.want)
		}
		if tt.width > 0 && runewidth.StringWidth(got) > tt.width {
			t.Fatalf("truncate(%q, %d) is %d columns wide", tt.value, tt.width, runewidth.StringWidth(got))
		}
	}
}
