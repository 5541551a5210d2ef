package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/mitchellh/go-wordwrap"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/detail"
	"github.com/vigilops/vigil/internal/ui"
	"github.com/vigilops/vigil/internal/ui/highlight"
	"github.com/vigilops/vigil/internal/ui/styles"
)

// DetailView is the drill-down drawer for one alert: metadata payload and
// the full status transition history, plus the resolve action.
type DetailView struct {
	width  int
	height int
	keys   ui.KeyMap

	controller *detail.Controller
	clipboard  *ui.ClipboardWriter
	viewport   viewport.Model
	spinner    spinner.Model

	alertID    int64
	ready      bool
	dateFormat string
}

// NewDetail creates the drill-down view over the given controller.
func NewDetail(controller *detail.Controller, keys ui.KeyMap) *DetailView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &DetailView{
		controller: controller,
		keys:       keys,
		clipboard:  ui.NewClipboardWriter(),
		spinner:    sp,
		dateFormat: "Jan 2 15:04:05",
	}
}

// SetDateFormat overrides the timestamp layout from config.
func (v *DetailView) SetDateFormat(layout string) {
	if layout != "" {
		v.dateFormat = layout
	}
}

// SetSize sets the view dimensions.
func (v *DetailView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.viewport.Width = width - 4
	v.viewport.Height = height - 6
	if v.viewport.Height < 3 {
		v.viewport.Height = 3
	}
	v.ready = true
	v.refreshContent()
}

// SetAlertID records which alert the drawer is showing.
func (v *DetailView) SetAlertID(id int64) {
	v.alertID = id
}

// AlertID returns the alert the drawer is showing.
func (v *DetailView) AlertID() int64 { return v.alertID }

// RefreshContent re-renders the scrollable body from controller state.
func (v *DetailView) RefreshContent() { v.refreshContent() }

// SpinnerTick starts the loading spinner.
func (v *DetailView) SpinnerTick() tea.Cmd {
	return v.spinner.Tick
}

func (v *DetailView) refreshContent() {
	if !v.ready {
		return
	}
	v.viewport.SetContent(v.renderBody())
}

// Update handles key, spinner, and scroll messages.
func (v *DetailView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Back):
			return func() tea.Msg { return ui.CloseDetailMsg{} }
		case key.Matches(msg, v.keys.Resolve):
			if v.controller.CanResolve() {
				return func() tea.Msg { return ui.ResolveRequestMsg{} }
			}
			return toast("alert is already closed", true)
		case key.Matches(msg, v.keys.CopyMetadata):
			return v.copyMetadata()
		default:
			var cmd tea.Cmd
			v.viewport, cmd = v.viewport.Update(msg)
			return cmd
		}
	}
	return nil
}

func (v *DetailView) copyMetadata() tea.Cmd {
	alert := v.controller.Alert()
	if alert == nil {
		return nil
	}
	if err := v.clipboard.Write(highlight.Indent(alert.Metadata)); err != nil {
		return toast(err.Error(), true)
	}
	return toast("metadata copied", false)
}

func toast(text string, isErr bool) tea.Cmd {
	return func() tea.Msg { return ui.ShowToastMsg{Text: text, IsErr: isErr} }
}

// View renders the drawer.
func (v *DetailView) View() string {
	var b strings.Builder
	b.WriteString(v.renderHeader())
	b.WriteString("\n")
	b.WriteString(v.viewport.View())
	b.WriteString("\n")
	b.WriteString(v.renderFooter())
	return b.String()
}

func (v *DetailView) renderHeader() string {
	title := styles.ViewTitleStyle.Render(fmt.Sprintf("Alert #%d", v.alertID))
	switch v.controller.State() {
	case detail.StateLoading:
		return title + "  " + v.spinner.View() + styles.InfoStyle.Render(" loading…")
	case detail.StateNotFound:
		return title + "  " + styles.ErrorStyle.Render("not found")
	}
	alert := v.controller.Alert()
	if alert == nil {
		return title
	}
	return fmt.Sprintf("%s  %s %s  %s",
		title,
		styles.SeverityBadge(alert.Severity),
		styles.StatusBadge(alert.Status),
		styles.MutedStyle.Render(humanize.Time(alert.Timestamp.Time)),
	)
}

func (v *DetailView) renderBody() string {
	switch v.controller.State() {
	case detail.StateLoading:
		return styles.InfoStyle.Render("Loading alert…")
	case detail.StateNotFound:
		return styles.ErrorStyle.Render("This alert does not exist.")
	}
	alert := v.controller.Alert()
	if alert == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.HeaderStyle.Render("Module / Source"))
	b.WriteString("\n  " + api.DescribeSource(alert.SourceType) + "\n\n")

	b.WriteString(styles.HeaderStyle.Render("Metadata Payload"))
	b.WriteString("\n")
	for _, line := range strings.Split(highlight.JSON(alert.Metadata), "\n") {
		b.WriteString("  " + line + "\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.HeaderStyle.Render("Status Transition History"))
	b.WriteString("\n")
	history := v.controller.History()
	if len(history) == 0 {
		b.WriteString(styles.InfoStyle.Render("  No transitions recorded yet."))
		b.WriteString("\n")
	}
	for _, rec := range history {
		from := "ingested"
		if rec.PreviousStatus != nil {
			from = string(*rec.PreviousStatus)
		}
		b.WriteString(fmt.Sprintf("  %s → %s  %s\n",
			styles.MutedStyle.Render(from),
			styles.StatusBadge(rec.NewStatus),
			styles.MutedStyle.Render(rec.TransitionTime.Format(v.dateFormat)),
		))
		if rec.Reason != "" {
			wrapped := wordwrap.WrapString(rec.Reason, uint(max(v.width-8, 20)))
			for _, line := range strings.Split(wrapped, "\n") {
				b.WriteString("      " + styles.MutedStyle.Render(line) + "\n")
			}
		}
	}
	return b.String()
}

func (v *DetailView) renderFooter() string {
	if v.controller.Resolving() {
		return v.spinner.View() + styles.InfoStyle.Render(" resolving…")
	}
	hints := []string{"esc close", "y copy metadata", "↑/↓ scroll"}
	if v.controller.CanResolve() {
		hints = append([]string{"R resolve"}, hints...)
	}
	return styles.FooterHintStyle.Render(strings.Join(hints, " · "))
}
