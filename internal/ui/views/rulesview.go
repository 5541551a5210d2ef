package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/rules"
	"github.com/vigilops/vigil/internal/ui"
	"github.com/vigilops/vigil/internal/ui/styles"
)

// RulesView is the read-only render of the rule engine's active rule set.
type RulesView struct {
	width  int
	height int
	keys   ui.KeyMap

	viewer  *rules.Viewer
	spinner spinner.Model
}

// NewRules creates the rule configuration view.
func NewRules(viewer *rules.Viewer, keys ui.KeyMap) *RulesView {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &RulesView{viewer: viewer, keys: keys, spinner: sp}
}

// SetSize sets the view dimensions.
func (v *RulesView) SetSize(width, height int) {
	v.width = width
	v.height = height
}

// SpinnerTick starts the loading spinner.
func (v *RulesView) SpinnerTick() tea.Cmd {
	return v.spinner.Tick
}

// Update handles key and spinner messages.
func (v *RulesView) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return cmd
	case tea.KeyMsg:
		if key.Matches(msg, v.keys.Refresh) {
			return func() tea.Msg { return ui.ReloadRulesMsg{} }
		}
	}
	return nil
}

// View renders the rule cards.
func (v *RulesView) View() string {
	var b strings.Builder
	title := styles.ViewTitleStyle.Render("Rule Engine Configuration")
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(
		"Live view of the rules driving escalation and auto-close. Read-only."))
	b.WriteString("\n\n")

	switch v.viewer.State() {
	case rules.StateLoading:
		b.WriteString(v.spinner.View() + styles.InfoStyle.Render(" loading rules…"))
		return b.String()
	case rules.StateError:
		b.WriteString(styles.ErrorStyle.Render("Failed to load rules: " + v.viewer.Err().Error()))
		b.WriteString("\n")
		b.WriteString(styles.FooterHintStyle.Render("r retry"))
		return b.String()
	}

	ruleSet := v.viewer.Rules()
	types := v.viewer.SourceTypes()
	if len(types) == 0 {
		b.WriteString(styles.InfoStyle.Render("No rules configured."))
		return b.String()
	}

	cardWidth := 38
	cards := make([]string, 0, len(types))
	for _, src := range types {
		cards = append(cards, v.renderCard(src, ruleSet[src], cardWidth))
	}

	perRow := v.width / (cardWidth + 2)
	if perRow < 1 {
		perRow = 1
	}
	for i := 0; i < len(cards); i += perRow {
		end := i + perRow
		if end > len(cards) {
			end = len(cards)
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards[i:end]...))
		b.WriteString("\n")
	}
	b.WriteString(styles.FooterHintStyle.Render("r reload"))
	return b.String()
}

func (v *RulesView) renderCard(src string, rule api.RuleConfig, width int) string {
	var b strings.Builder
	b.WriteString(styles.HeaderStyle.Render(api.DescribeSource(src)))
	b.WriteString("\n")

	// Absent fields mean "not configured", never zero.
	if rule.EscalateIfCount != nil {
		b.WriteString(fmt.Sprintf("escalate after  %d violations\n", *rule.EscalateIfCount))
	}
	if rule.WindowMins != nil {
		b.WriteString(fmt.Sprintf("within window   %s\n", rules.DescribeWindow(*rule.WindowMins)))
	}
	if rule.AutoCloseIf != "" {
		b.WriteString(fmt.Sprintf("auto-close if   metadata contains %q\n", rule.AutoCloseIf))
	}
	if rule.EscalateIfCount == nil && rule.WindowMins == nil && rule.AutoCloseIf == "" {
		b.WriteString(styles.MutedStyle.Render("no thresholds configured") + "\n")
	}
	return styles.PanelStyle.Width(width).Render(b.String())
}
