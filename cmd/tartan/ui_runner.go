package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tartan/internal/driver"
	"tartan/internal/ui"
)

type checkOutcome struct {
	results []*driver.FileResult
	err     error
}

// runCheckWithUI checks files while a progress view consumes the driver
// events. The view quits once the run closes the event channel.
func runCheckWithUI(ctx context.Context, title string, files []string, opts driver.CheckOptions) ([]*driver.FileResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan driver.Event, 256)
	outcomeCh := make(chan checkOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = driver.ChannelSink{Ch: events}
		res, err := driver.CheckFiles(ctx, files, optsCopy)
		outcomeCh <- checkOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stderr), tea.WithContext(ctx))
	_, uiErr := program.Run()

	// The view only quits on its own after the run is over; anything
	// else is ctrl-c or a terminal failure, so stop the workers.
	var outcome checkOutcome
	select {
	case outcome = <-outcomeCh:
	default:
		cancel()
		go func() {
			for range events {
			}
		}()
		outcome = <-outcomeCh
	}
	if uiErr != nil && outcome.err == nil && ctx.Err() == nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
