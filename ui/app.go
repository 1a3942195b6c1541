package ui

import (
	"context"
	"fmt"
	"strings"

	"cmdapi/handler"
	"cmdapi/model"
	"cmdapi/runner"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"
)

type mode int

const (
	modeNormal mode = iota
	modeAdd
	modeEdit
	modeDelete
)

var formLabels = []string{"How to", "Platform", "Command line"}

type App struct {
	h        *handler.Handler
	commands []model.Command
	filtered []model.Command

	mode   mode
	cursor int
	width  int
	height int
	err    string
	status string

	searchInput textinput.Model

	output      viewport.Model
	outputLines []string
	running     bool
	outputChan  chan runner.Output
	cancelRun   context.CancelFunc
	runID       int

	formInputs []textinput.Model
	formFocus  int
	editingID  int64
}

func NewApp(h *handler.Handler) (*App, error) {
	res := h.ListCommands()
	if res.Status != handler.StatusOK {
		return nil, fmt.Errorf("list commands: %w", res.Err)
	}

	search := textinput.New()
	search.Placeholder = "Search commands..."
	search.Focus()

	return &App{
		h:           h,
		commands:    res.Commands,
		filtered:    res.Commands,
		searchInput: search,
		output:      viewport.New(80, 10),
	}, nil
}

func (a *App) Init() tea.Cmd {
	return textinput.Blink
}

// outputMsg carries one message of run number run, read from ch.
type outputMsg struct {
	runner.Output
	run int
	ch  chan runner.Output
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width - 4
		a.height = msg.Height - 2
		a.output.Width = a.width - 4
		a.output.Height = a.height / 3
		return a, nil

	case outputMsg:
		if msg.run != a.runID {
			// A stopped run is still drained so its goroutine can exit.
			if msg.Done {
				return a, nil
			}
			return a, waitForOutput(msg.ch, msg.run)
		}
		return a.appendOutput(msg.Output)

	case tea.KeyMsg:
		a.err = ""
		a.status = ""

		switch a.mode {
		case modeNormal:
			return a.updateNormal(msg)
		case modeAdd, modeEdit:
			return a.updateForm(msg)
		case modeDelete:
			return a.updateDelete(msg)
		}
	}

	return a, nil
}

func (a *App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		a.stopRun()
		return a, tea.Quit

	case "up", "k":
		if a.cursor > 0 {
			a.cursor--
		}

	case "down", "j":
		if a.cursor < len(a.filtered)-1 {
			a.cursor++
		}

	case "enter":
		if len(a.filtered) > 0 && !a.running {
			return a.runSelected()
		}

	case "ctrl+x":
		a.stopRun()

	case "a":
		a.mode = modeAdd
		a.initForm(nil)

	case "e":
		if len(a.filtered) > 0 {
			a.startEdit(a.filtered[a.cursor].ID)
		}

	case "d":
		if len(a.filtered) > 0 {
			a.mode = modeDelete
		}

	case "esc":
		a.searchInput.SetValue("")
		a.filterCommands()

	default:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.filterCommands()
		return a, cmd
	}

	return a, nil
}

// startEdit re-reads the command so the form never shows stale fields.
func (a *App) startEdit(id int64) {
	res := a.h.GetCommand(id)
	if res.Status != handler.StatusOK {
		a.err = describe(res)
		a.refreshCommands()
		return
	}
	a.mode = modeEdit
	a.editingID = id
	a.initForm(res.Command)
}

func (a *App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		a.stopRun()
		return a, tea.Quit

	case "esc":
		a.mode = modeNormal
		a.searchInput.Focus()
		return a, nil

	case "tab", "down":
		a.formFocus = (a.formFocus + 1) % len(a.formInputs)
		return a, a.focusFormInput()

	case "shift+tab", "up":
		a.formFocus--
		if a.formFocus < 0 {
			a.formFocus = len(a.formInputs) - 1
		}
		return a, a.focusFormInput()

	case "enter":
		return a.submitForm()

	default:
		var cmd tea.Cmd
		a.formInputs[a.formFocus], cmd = a.formInputs[a.formFocus].Update(msg)
		return a, cmd
	}
}

func (a *App) updateDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y":
		if len(a.filtered) > 0 {
			res := a.h.DeleteCommand(a.filtered[a.cursor].ID)
			if res.Status == handler.StatusOK {
				a.status = "Deleted!"
			} else {
				a.err = describe(res)
			}
			a.refreshCommands()
		}
		a.mode = modeNormal
		return a, nil

	case "n", "N", "esc":
		a.mode = modeNormal
		return a, nil
	}

	return a, nil
}

func (a *App) runSelected() (tea.Model, tea.Cmd) {
	c := a.filtered[a.cursor]

	ctx, cancel := context.WithCancel(context.Background())
	a.cancelRun = cancel
	a.runID++
	a.running = true
	a.outputLines = []string{cmdPreviewStyle.Render("$ " + c.CommandLine), ""}
	a.output.SetContent(strings.Join(a.outputLines, "\n"))

	a.outputChan = make(chan runner.Output)
	go runner.Run(ctx, c.Platform, c.CommandLine, a.outputChan)

	return a, waitForOutput(a.outputChan, a.runID)
}

func (a *App) appendOutput(msg runner.Output) (tea.Model, tea.Cmd) {
	if msg.Done {
		a.stopRun()
		if msg.ErrMsg != "" {
			a.outputLines = append(a.outputLines, errorStyle.Render("Error: "+msg.ErrMsg))
		}
		a.output.SetContent(strings.Join(a.outputLines, "\n"))
		a.output.GotoBottom()
		return a, nil
	}

	line := msg.Line
	if msg.IsErr {
		line = errorStyle.Render(line)
	}
	a.outputLines = append(a.outputLines, line)
	a.output.SetContent(strings.Join(a.outputLines, "\n"))
	a.output.GotoBottom()
	return a, waitForOutput(a.outputChan, a.runID)
}

func (a *App) stopRun() {
	if a.cancelRun != nil {
		a.cancelRun()
		a.cancelRun = nil
	}
	a.running = false
}

func waitForOutput(ch chan runner.Output, run int) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			msg = runner.Output{Done: true}
		}
		return outputMsg{Output: msg, run: run, ch: ch}
	}
}

func (a *App) initForm(c *model.Command) {
	placeholders := []string{
		"How to (e.g., list open ports)",
		"Platform (e.g., linux, powershell)",
		"Command line",
	}

	a.formInputs = make([]textinput.Model, len(formLabels))
	for i := range a.formInputs {
		in := textinput.New()
		in.Placeholder = placeholders[i]
		a.formInputs[i] = in
	}
	a.formInputs[0].Focus()

	if c != nil {
		a.formInputs[0].SetValue(c.HowTo)
		a.formInputs[1].SetValue(c.Platform)
		a.formInputs[2].SetValue(c.CommandLine)
	}
	a.formFocus = 0
}

func (a *App) focusFormInput() tea.Cmd {
	for i := range a.formInputs {
		a.formInputs[i].Blur()
	}
	return a.formInputs[a.formFocus].Focus()
}

func (a *App) submitForm() (tea.Model, tea.Cmd) {
	c := model.Command{
		HowTo:       a.formInputs[0].Value(),
		Platform:    a.formInputs[1].Value(),
		CommandLine: a.formInputs[2].Value(),
	}

	var res handler.Result
	if a.mode == modeAdd {
		res = a.h.CreateCommand(c)
	} else {
		c.ID = a.editingID
		res = a.h.ReplaceCommand(a.editingID, c)
	}

	switch res.Status {
	case handler.StatusCreated:
		a.status = "Added!"
	case handler.StatusNoContent:
		a.status = "Updated!"
	default:
		a.err = describe(res)
		if res.Status != handler.StatusNotFound {
			return a, nil
		}
	}

	a.refreshCommands()
	a.mode = modeNormal
	a.searchInput.Focus()
	return a, nil
}

func (a *App) refreshCommands() {
	res := a.h.ListCommands()
	if res.Status != handler.StatusOK {
		a.err = describe(res)
		return
	}
	a.commands = res.Commands
	a.filterCommands()
}

// filterCommands narrows the rows already listed; it never queries the store.
func (a *App) filterCommands() {
	query := a.searchInput.Value()
	if query == "" {
		a.filtered = a.commands
	} else {
		targets := make([]string, len(a.commands))
		for i, c := range a.commands {
			targets[i] = c.HowTo + " " + c.Platform + " " + c.CommandLine
		}

		matches := fuzzy.Find(query, targets)
		a.filtered = make([]model.Command, len(matches))
		for i, m := range matches {
			a.filtered[i] = a.commands[m.Index]
		}
	}

	if a.cursor >= len(a.filtered) {
		a.cursor = max(0, len(a.filtered)-1)
	}
}

func describe(res handler.Result) string {
	if res.Err != nil {
		return res.Err.Error()
	}
	return res.Status.String()
}
