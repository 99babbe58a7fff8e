package ui

import (
	"context"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/sysdeck/internal/actions"
	"golang.org/x/term"
)

// PromptConfirmer asks on the terminal before a dangerous action runs.
// Without a terminal on stdin it declines, so scripts never hang.
type PromptConfirmer struct {
	// AssumeYes skips the prompt and accepts (--yes).
	AssumeYes bool

	isTerminal func() bool
	ask        func(ctx context.Context, title, description string) (bool, error)
}

var _ actions.Confirmer = (*PromptConfirmer)(nil)

// NewPromptConfirmer creates a confirmer backed by a huh form.
func NewPromptConfirmer(assumeYes bool) *PromptConfirmer {
	return &PromptConfirmer{
		AssumeYes:  assumeYes,
		isTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		ask:        askHuh,
	}
}

// Confirm implements actions.Confirmer.
func (p *PromptConfirmer) Confirm(ctx context.Context, a actions.Action) bool {
	if p.AssumeYes {
		return true
	}
	if !p.isTerminal() {
		return false
	}
	ok, err := p.ask(ctx, SymbolWarning+" "+a.Label+"?", a.Description)
	return err == nil && ok
}

func askHuh(ctx context.Context, title, description string) (bool, error) {
	var proceed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative("Yes").
				Negative("No").
				Value(&proceed),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return proceed, nil
}
