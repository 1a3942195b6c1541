package ui

import (
	"fmt"
	"strings"
)

func (a *App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("cmdapi"))
	b.WriteString(mutedStyle.Render(fmt.Sprintf(" %d commands", len(a.commands))))
	b.WriteString("\n\n")

	b.WriteString(a.searchInput.View())
	b.WriteString("\n\n")

	listHeight := max(3, (a.height-a.output.Height-10)/2)
	if a.mode == modeAdd || a.mode == modeEdit {
		b.WriteString(a.renderForm())
	} else {
		b.WriteString(a.renderList(listHeight))
	}

	if a.mode == modeDelete && len(a.filtered) > 0 {
		c := a.filtered[a.cursor]
		b.WriteString("\n")
		b.WriteString(warningStyle.Render(fmt.Sprintf("Delete #%d '%s'? (y/n)", c.ID, c.HowTo)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(outputTitleStyle.Render("OUTPUT"))
	b.WriteString("\n")
	b.WriteString(borderStyle.Width(a.width - 4).Render(a.output.View()))
	b.WriteString("\n")

	if a.err != "" {
		b.WriteString(errorStyle.Render("Error: " + a.err))
		b.WriteString("\n")
	}
	if a.status != "" {
		b.WriteString(successStyle.Render(a.status))
		b.WriteString("\n")
	}

	b.WriteString(a.renderHelp())

	return appStyle.Render(b.String())
}

// renderList shows two lines per command, so height counts commands.
func (a *App) renderList(height int) string {
	if len(a.filtered) == 0 {
		return mutedStyle.Render("No commands found. Press 'a' to add one.\n")
	}

	start := 0
	if a.cursor >= height {
		start = a.cursor - height + 1
	}
	end := min(start+height, len(a.filtered))

	var lines []string
	for i := start; i < end; i++ {
		c := a.filtered[i]
		prefix := "  "
		style := normalStyle
		if i == a.cursor {
			prefix = "▸ "
			style = selectedStyle
		}

		head := style.Render(prefix+c.HowTo) + " " + platformStyle.Render(c.Platform)
		preview := cmdPreviewStyle.Render("  " + truncate(c.CommandLine, a.width-10))
		lines = append(lines, head, preview)
	}

	return strings.Join(lines, "\n") + "\n"
}

func (a *App) renderForm() string {
	var b strings.Builder

	title := "Add Command"
	if a.mode == modeEdit {
		title = fmt.Sprintf("Edit Command #%d", a.editingID)
	}
	b.WriteString(labelStyle.Render(title))
	b.WriteString("\n\n")

	for i, input := range a.formInputs {
		b.WriteString(labelStyle.Render(formLabels[i] + ": "))
		style := inputStyle
		if i == a.formFocus {
			style = focusedInputStyle
		}
		b.WriteString(style.Width(a.width - 20).Render(input.View()))
		b.WriteString("\n\n")
	}

	b.WriteString(helpStyle.Render("tab: next field • enter: save • esc: cancel"))
	b.WriteString("\n")

	return b.String()
}

func (a *App) renderHelp() string {
	if a.mode != modeNormal {
		return ""
	}

	keys := []struct{ key, desc string }{
		{"enter", "run"},
		{"a", "add"},
		{"e", "edit"},
		{"d", "delete"},
		{"q", "quit"},
	}
	if a.running {
		keys = append(keys, struct{ key, desc string }{"ctrl+x", "stop"})
	}

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, helpKeyStyle.Render(k.key)+" "+helpStyle.Render(k.desc))
	}

	return strings.Join(parts, "  ")
}

func truncate(s string, n int) string {
	if n < 4 || len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
