// Package observ measures the phases a file goes through (load, parse,
// check) and aggregates them across a run.
package observ

import (
	"time"
)

// Phase is one measured step. Dur is zero until the phase ends.
type Phase struct {
	Name  string
	Start time.Time
	Dur   time.Duration
	Note  string
}

// Timer records phases in the order they begin. It is not safe for
// concurrent use; the driver keeps one timer per file.
type Timer struct {
	now    func() time.Time
	phases []Phase
}

// NewTimer returns a Timer reading the wall clock.
func NewTimer() *Timer { return NewTimerWithClock(time.Now) }

// NewTimerWithClock returns a Timer reading now; tests pass a fake clock.
func NewTimerWithClock(now func() time.Time) *Timer {
	return &Timer{now: now, phases: make([]Phase, 0, 4)}
}

// Begin starts a phase and returns its index for End.
func (t *Timer) Begin(name string) int {
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes the phase idx. Unknown indexes are ignored.
func (t *Timer) End(idx int, note string) {
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Note = note
}

// PhaseReport представляет сжатую информацию о фазе для сериализации.
type PhaseReport struct {
	Name       string  `json:"name"`
	DurationMS float64 `json:"duration_ms"`
	Note       string  `json:"note,omitempty"`
}

// Report описывает фазы одного файла либо их сумму по прогону.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report returns the finished phases; phases still running count as zero.
func (t *Timer) Report() Report {
	if len(t.phases) == 0 {
		return Report{}
	}
	report := Report{Phases: make([]PhaseReport, len(t.phases))}
	var total time.Duration
	for i, phase := range t.phases {
		total += phase.Dur
		report.Phases[i] = PhaseReport{
			Name:       phase.Name,
			DurationMS: durationToMillis(phase.Dur),
			Note:       phase.Note,
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Merge adds other into r, summing phases of the same name. New names are
// appended in the order they first appear; notes are dropped since they
// describe a single file.
func (r *Report) Merge(other Report) {
	r.TotalMS += other.TotalMS
	for _, p := range other.Phases {
		i := 0
		for i < len(r.Phases) && r.Phases[i].Name != p.Name {
			i++
		}
		if i == len(r.Phases) {
			r.Phases = append(r.Phases, PhaseReport{Name: p.Name})
		}
		r.Phases[i].DurationMS += p.DurationMS
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
