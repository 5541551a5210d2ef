package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/feed"
	"github.com/vigilops/vigil/internal/ui"
	"github.com/vigilops/vigil/internal/ui/components"
	"github.com/vigilops/vigil/internal/ui/styles"
)

// FeedView is the command center: the paginated alert table, severity
// counters, the top-offender leaderboard, the daily trend sparkline, and
// recent auto-closed alerts.
type FeedView struct {
	width  int
	height int
	keys   ui.KeyMap

	controller *feed.Controller
	spinner    spinner.Model

	// Data pushed in by the app as poll results arrive
	severityCounts map[api.Severity]int64
	offenders      []api.TopOffender
	trends         []api.TrendPoint
	recentEvents   []api.AlertHistory
	autoClosed     []api.Alert
	autoFilter     api.AutoClosedFilter
	lastUpdate     time.Time
	dateFormat     string

	selectedIdx int
}

// NewFeed creates the feed view over the given controller.
func NewFeed(controller *feed.Controller, keys ui.KeyMap) *FeedView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &FeedView{
		controller: controller,
		keys:       keys,
		spinner:    sp,
		autoFilter: api.AutoClosedLast24h,
		dateFormat: "Jan 2 15:04:05",
	}
}

// SetDateFormat overrides the timestamp layout from config.
func (v *FeedView) SetDateFormat(layout string) {
	if layout != "" {
		v.dateFormat = layout
	}
}

// SetSize sets the view dimensions.
func (v *FeedView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SetSeverityCounts stores the latest severity tally.
func (v *FeedView) SetSeverityCounts(counts map[api.Severity]int64) {
	v.severityCounts = counts
}

// SetOffenders stores the latest leaderboard.
func (v *FeedView) SetOffenders(offenders []api.TopOffender) {
	v.offenders = offenders
}

// SetTrends stores the daily ingest trend.
func (v *FeedView) SetTrends(points []api.TrendPoint) {
	v.trends = points
}

// SetRecentEvents stores the latest cross-alert transitions.
func (v *FeedView) SetRecentEvents(events []api.AlertHistory) {
	v.recentEvents = events
}

// SetAutoClosed stores recent auto-closed alerts for the current window.
func (v *FeedView) SetAutoClosed(filter api.AutoClosedFilter, alerts []api.Alert) {
	v.autoFilter = filter
	v.autoClosed = alerts
}

// SetLastUpdate records when the feed last refreshed.
func (v *FeedView) SetLastUpdate(t time.Time) {
	v.lastUpdate = t
}

// SelectedAlert returns the highlighted alert, if any.
func (v *FeedView) SelectedAlert() (api.Alert, bool) {
	alerts := v.controller.Alerts()
	if v.selectedIdx < 0 || v.selectedIdx >= len(alerts) {
		return api.Alert{}, false
	}
	return alerts[v.selectedIdx], true
}

// Update handles key and spinner messages.
func (v *FeedView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, v.keys.Up):
			if v.selectedIdx > 0 {
				v.selectedIdx--
			}
		case key.Matches(msg, v.keys.Down):
			if v.selectedIdx < len(v.controller.Alerts())-1 {
				v.selectedIdx++
			}
		case key.Matches(msg, v.keys.NextPage):
			return func() tea.Msg { return ui.PageRequestMsg{Delta: 1} }
		case key.Matches(msg, v.keys.PrevPage):
			return func() tea.Msg { return ui.PageRequestMsg{Delta: -1} }
		case key.Matches(msg, v.keys.Refresh):
			return func() tea.Msg { return ui.RefreshRequestMsg{} }
		case key.Matches(msg, v.keys.Open):
			if alert, ok := v.SelectedAlert(); ok {
				id := alert.ID
				return func() tea.Msg { return ui.OpenDetailMsg{ID: id} }
			}
		case key.Matches(msg, v.keys.CycleFilter):
			next := api.AutoClosedLast24h
			if v.autoFilter == api.AutoClosedLast24h {
				next = api.AutoClosedLast7d
			}
			return func() tea.Msg { return ui.AutoClosedFilterMsg{Filter: next} }
		}
	}
	return nil
}

// View renders the feed.
func (v *FeedView) View() string {
	if v.width == 0 {
		return ""
	}

	sidebarWidth := 34
	tableWidth := v.width - sidebarWidth - 2
	if tableWidth < 40 {
		tableWidth = v.width
		sidebarWidth = 0
	}

	left := lipgloss.JoinVertical(lipgloss.Left,
		v.renderCounters(tableWidth),
		v.renderTable(tableWidth),
		v.renderPagination(tableWidth),
	)
	if sidebarWidth == 0 {
		return left
	}

	right := lipgloss.JoinVertical(lipgloss.Left,
		v.renderOffenders(sidebarWidth),
		v.renderTrends(sidebarWidth),
		v.renderRecentEvents(sidebarWidth),
		v.renderAutoClosed(sidebarWidth),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, " ", right)
}

func (v *FeedView) renderCounters(width int) string {
	panelWidth := width/3 - 2
	if panelWidth < 12 {
		panelWidth = 12
	}
	panels := make([]string, 0, 3)
	for _, sev := range api.Severities() {
		count := v.severityCounts[sev]
		label := styles.PanelLabelStyle.Width(panelWidth).Render(string(sev))
		value := styles.PanelValueStyle.Width(panelWidth).
			Foreground(styles.SeverityColor(sev)).
			Render(humanize.Comma(count))
		panels = append(panels, styles.PanelStyle.Render(label+"\n"+value))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, panels...)
}

func (v *FeedView) renderTable(width int) string {
	var b strings.Builder

	title := styles.ViewTitleStyle.Render("System Feed")
	if v.controller.State() == feed.StateLoading {
		title += " " + v.spinner.View()
	}
	if !v.lastUpdate.IsZero() {
		title += styles.MutedStyle.Render("  updated " + humanize.Time(v.lastUpdate))
	}
	b.WriteString(title)
	b.WriteString("\n")

	idW, srcW, sevW, stW := 7, 20, 10, 12
	tsW := width - idW - srcW - sevW - stW - 8
	if tsW < 12 {
		tsW = 12
	}
	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
		idW, "ID", srcW, "SOURCE", sevW, "SEVERITY", stW, "STATUS", tsW, "TIMESTAMP")
	b.WriteString(styles.TableHeaderStyle.Render(header))
	b.WriteString("\n")

	alerts := v.controller.Alerts()
	if len(alerts) == 0 {
		if v.controller.State() == feed.StateError {
			b.WriteString(styles.ErrorStyle.Render("  feed unavailable: " + v.controller.Err().Error()))
		} else {
			b.WriteString(styles.InfoStyle.Render("  No active alerts"))
		}
		b.WriteString("\n")
		return styles.TableBorderStyle.Width(width).Render(b.String())
	}

	for i, alert := range alerts {
		row := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s",
			idW, fmt.Sprintf("#%d", alert.ID),
			srcW, runewidth.Truncate(api.DescribeSource(alert.SourceType), srcW, "…"),
			sevW, string(alert.Severity),
			stW, string(alert.Status),
			tsW, alert.Timestamp.Format(v.dateFormat),
		)
		if i == v.selectedIdx {
			b.WriteString(styles.TableSelectedStyle.Render(row))
		} else {
			b.WriteString(v.colorizeRow(row, alert))
		}
		b.WriteString("\n")
	}
	return styles.TableBorderStyle.Width(width).Render(b.String())
}

// colorizeRow re-renders severity and status cells in their colors.
func (v *FeedView) colorizeRow(row string, alert api.Alert) string {
	row = strings.Replace(row, string(alert.Severity),
		styles.SeverityBadge(alert.Severity), 1)
	row = strings.Replace(row, string(alert.Status),
		styles.StatusBadge(alert.Status), 1)
	return row
}

func (v *FeedView) renderPagination(width int) string {
	total := v.controller.TotalPages()
	if total <= 0 {
		total = 1
	}
	left := fmt.Sprintf("Page %d of %d (%s alerts)",
		v.controller.Page()+1, total, humanize.Comma(v.controller.TotalElements()))
	hints := "←/→ page · enter open · r refresh · f window"
	gap := width - len(left) - len(hints)
	if gap < 1 {
		gap = 1
	}
	return styles.FooterHintStyle.Render(left + strings.Repeat(" ", gap) + hints)
}

func (v *FeedView) renderOffenders(width int) string {
	var b strings.Builder
	b.WriteString(styles.ViewTitleStyle.Render("Top Offenders"))
	b.WriteString("\n")
	if len(v.offenders) == 0 {
		b.WriteString(styles.InfoStyle.Render("none recorded"))
	}
	for i, off := range v.offenders {
		line := fmt.Sprintf("#%d %-12s %s violations",
			i+1,
			runewidth.Truncate(off.DriverID, 12, "…"),
			humanize.Comma(off.Count))
		if i == 0 {
			b.WriteString(lipgloss.NewStyle().Bold(true).Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return styles.PanelStyle.Width(width - 2).Render(b.String())
}

func (v *FeedView) renderTrends(width int) string {
	var b strings.Builder
	b.WriteString(styles.ViewTitleStyle.Render("Daily Ingest"))
	b.WriteString("\n")
	if len(v.trends) == 0 {
		b.WriteString(styles.InfoStyle.Render("no trend data"))
	} else {
		data := make([]float64, len(v.trends))
		for i, p := range v.trends {
			data[i] = float64(p.Count)
		}
		cfg := components.DefaultSparklineConfig()
		cfg.Width = width - 6
		cfg.Height = 4
		b.WriteString(components.RenderSparkline(data, cfg))
		b.WriteString("\n")
		b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("%s … %s",
			v.trends[0].Date, v.trends[len(v.trends)-1].Date)))
	}
	return styles.PanelStyle.Width(width - 2).Render(b.String())
}

func (v *FeedView) renderRecentEvents(width int) string {
	var b strings.Builder
	b.WriteString(styles.ViewTitleStyle.Render("Recent Activity"))
	b.WriteString("\n")
	if len(v.recentEvents) == 0 {
		b.WriteString(styles.InfoStyle.Render("no recent transitions"))
	}
	for i, ev := range v.recentEvents {
		if i >= 5 {
			break
		}
		b.WriteString(fmt.Sprintf("#%-6d %s\n", ev.AlertID, styles.StatusBadge(ev.NewStatus)))
	}
	return styles.PanelStyle.Width(width - 2).Render(b.String())
}

func (v *FeedView) renderAutoClosed(width int) string {
	var b strings.Builder
	b.WriteString(styles.ViewTitleStyle.Render("Auto-Closed (" + string(v.autoFilter) + ")"))
	b.WriteString("\n")
	if len(v.autoClosed) == 0 {
		b.WriteString(styles.InfoStyle.Render("none in window"))
	}
	for i, alert := range v.autoClosed {
		if i >= 5 {
			b.WriteString(styles.MutedStyle.Render(fmt.Sprintf("…and %d more", len(v.autoClosed)-i)))
			break
		}
		b.WriteString(fmt.Sprintf("#%-6d %s\n", alert.ID,
			runewidth.Truncate(api.DescribeSource(alert.SourceType), width-14, "…")))
	}
	return styles.PanelStyle.Width(width - 2).Render(b.String())
}

// SpinnerTick starts the loading spinner.
func (v *FeedView) SpinnerTick() tea.Cmd {
	return v.spinner.Tick
}

// ClampSelection keeps the highlight within the current page after a
// refresh shrinks it.
func (v *FeedView) ClampSelection() {
	if n := len(v.controller.Alerts()); v.selectedIdx >= n && n > 0 {
		v.selectedIdx = n - 1
	} else if n == 0 {
		v.selectedIdx = 0
	}
}
