package main

import (
	"context"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"tacsim/internal/batch"
	"tacsim/internal/ui"
)

type batchOutcome struct {
	results []batch.FileResult
	err     error
}

func runBatchWithUI(ctx context.Context, title string, files []string, opts batch.Options) ([]batch.FileResult, error) {
	events := make(chan batch.Event, 256)
	outcomeCh := make(chan batchOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Sink = batch.ChannelSink{Ch: events}
		res, err := batch.Run(ctx, files, optsCopy)
		outcomeCh <- batchOutcome{results: res, err: err}
		close(events)
	}()

	model := ui.NewProgressModel(title, files, events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	outcome := <-outcomeCh
	if uiErr != nil {
		return outcome.results, uiErr
	}
	return outcome.results, outcome.err
}
