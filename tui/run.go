package tui

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/alDuncanson/embscope/analysis"
)

// AnalyzeFunc runs an analysis, reporting intermediate layouts through progress.
type AnalyzeFunc func(ctx context.Context, progress func(analysis.Progress)) (*analysis.Result, error)

// Run opens the viewer and runs analyze in the background, streaming its frames to the
// plot. Quitting the viewer cancels the analysis. The analysis error, if any, is returned
// after the viewer closes unless the viewer itself caused the cancellation.
func Run(ctx context.Context, analyze AnalyzeFunc, version string, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := tea.NewProgram(NewModel(version, cancel), append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)

	analysisErr := make(chan error, 1)
	go func() {
		result, err := analyze(ctx, func(p analysis.Progress) {
			program.Send(ProgressMsg(p))
		})
		analysisErr <- err
		program.Send(ResultMsg{Result: result, Err: err})
	}()

	if _, err := program.Run(); err != nil {
		return err
	}

	cancel()
	if err := <-analysisErr; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// Show opens the viewer over a finished result.
func Show(result *analysis.Result, version string, opts ...tea.ProgramOption) error {
	model, _ := NewModel(version, nil).Update(ResultMsg{Result: result})
	_, err := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...).Run()
	return err
}
