package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/kekst/socialnuke/pkg/account"
	"github.com/kekst/socialnuke/pkg/platform"
	"github.com/kekst/socialnuke/pkg/queue"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	warnStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("208"))
)

// pickAccount selects one stored account for the platform, skipping the
// prompt when there is only one or when accountID pins it.
func (a *app) pickAccount(p platform.Platform, accountID string) (account.Account, error) {
	accounts := a.store.ByPlatform(p.Key())
	if len(accounts) == 0 {
		return account.Account{}, fmt.Errorf("no %s accounts; run `socialnuke login %s` first", p.Name(), p.Key())
	}

	if accountID != "" {
		for _, acc := range accounts {
			if acc.ID == accountID {
				return acc, nil
			}
		}
		return account.Account{}, fmt.Errorf("no %s account with id %s", p.Name(), accountID)
	}
	if len(accounts) == 1 {
		return accounts[0], nil
	}

	options := make([]huh.Option[string], len(accounts))
	for i, acc := range accounts {
		options[i] = huh.NewOption(fmt.Sprintf("%s (%s)", acc.Name, acc.ID), acc.ID)
	}

	var chosen string
	err := huh.NewSelect[string]().
		Title("Account").
		Options(options...).
		Value(&chosen).
		Run()
	if err != nil {
		return account.Account{}, err
	}
	return a.pickAccount(p, chosen)
}

// pickTargetType selects one of the platform's target categories.
func pickTargetType(p platform.Platform, typeKey string) (string, error) {
	types := p.TargetTypes()
	if typeKey != "" {
		for _, t := range types {
			if t.Key == typeKey {
				return t.Key, nil
			}
		}
		return "", fmt.Errorf("%s has no target type %q", p.Name(), typeKey)
	}
	if len(types) == 1 {
		return types[0].Key, nil
	}

	options := make([]huh.Option[string], len(types))
	for i, t := range types {
		options[i] = huh.NewOption(t.Name, t.Key)
	}

	var chosen string
	err := huh.NewSelect[string]().
		Title("What kind of target?").
		Options(options...).
		Value(&chosen).
		Run()
	return chosen, err
}

// pickTarget selects a target, descending one level into children when
// the chosen target has them (a guild narrowed to one channel).
func pickTarget(ctx context.Context, actor platform.Actor, typeKey string) (platform.Target, error) {
	targets, err := actor.Targets(ctx, typeKey)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets found")
	}

	target, err := selectOne("Target", targets)
	if err != nil {
		return nil, err
	}
	if !target.HasChildren() {
		return target, nil
	}

	children, err := target.Children(ctx)
	if err != nil {
		return nil, err
	}
	if len(children) == 0 {
		return target, nil
	}

	options := []huh.Option[int]{huh.NewOption("Everything in "+target.Name(), -1)}
	for i, child := range children {
		label := child.Name()
		if child.Disabled() {
			continue
		}
		if child.ParentID() != "" {
			label = "  " + label
		}
		options = append(options, huh.NewOption(label, i))
	}

	var idx int
	err = huh.NewSelect[int]().
		Title("Channel").
		Options(options...).
		Value(&idx).
		Run()
	if err != nil {
		return nil, err
	}
	if idx < 0 {
		return target, nil
	}
	return children[idx], nil
}

func selectOne(title string, targets []platform.Target) (platform.Target, error) {
	options := make([]huh.Option[int], 0, len(targets))
	for i, t := range targets {
		if t.Disabled() {
			continue
		}
		options = append(options, huh.NewOption(t.Name(), i))
	}
	if len(options) == 1 {
		return targets[options[0].Value], nil
	}

	var idx int
	err := huh.NewSelect[int]().
		Title(title).
		Options(options...).
		Value(&idx).
		Run()
	if err != nil {
		return nil, err
	}
	return targets[idx], nil
}

// confirm asks a yes/no question, defaulting to no.
func confirm(title string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	return ok, err
}

// newProgressQueue builds a queue that prints a single updating
// progress line for the running task.
func newProgressQueue(log *slog.Logger) *queue.Queue {
	var q *queue.Queue
	q = queue.New(
		queue.WithLogger(log),
		queue.WithOnChange(func() { renderProgress(q.Tasks()) }),
	)
	return q
}

func renderProgress(tasks []queue.Info) {
	if len(tasks) == 0 {
		return
	}
	t := tasks[0]
	if t.State != queue.StateProgress {
		return
	}

	var counter string
	if t.HasTotal {
		counter = fmt.Sprintf("%d/%d", t.Current, t.Total)
	} else {
		counter = fmt.Sprintf("%d", t.Current)
	}
	fmt.Printf("\r  %s %s %s",
		titleStyle.Render(string(t.Kind)),
		dimStyle.Render(t.Description),
		counter+strings.Repeat(" ", 8))
}
