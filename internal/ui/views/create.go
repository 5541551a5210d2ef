package views

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vigilops/vigil/internal/ui"
	"github.com/vigilops/vigil/internal/ui/styles"
)

// sourceTemplate pairs a source type with a starter metadata payload
// matching the rule engine's expected keys.
type sourceTemplate struct {
	value    string
	label    string
	hint     string
	template string
}

var sourceTemplates = []sourceTemplate{
	{
		value: "overspeed",
		label: "Overspeed Violation",
		hint:  "Escalates after repeated violations within the configured window",
		template: `{
  "driverId": "DRV-001",
  "vehicleId": "VH-123",
  "speed_kmph": 95,
  "limit_kmph": 60,
  "location": "Highway NH-44"
}`,
	},
	{
		value: "feedback_negative",
		label: "Negative Driver Feedback",
		hint:  "Escalates after repeated bad feedback within the configured window",
		template: `{
  "driverId": "DRV-002",
  "rating": 1,
  "comment": "Rash driving",
  "passenger": "P-789"
}`,
	},
	{
		value: "compliance",
		label: "Compliance / Document Expiry",
		hint:  "Auto-closes when the configured condition appears in metadata",
		template: `{
  "driverId": "DRV-003",
  "document_type": "license",
  "expiry_date": "2024-01-15",
  "status": "expired"
}`,
	},
}

// CreateView is the alert ingest form: pick a source type, edit the JSON
// metadata payload, submit. The server assigns severity and status.
type CreateView struct {
	width  int
	height int
	keys   ui.KeyMap

	selected   int
	metadata   textarea.Model
	submitting bool
	fieldErr   string
}

// NewCreate creates the ingest form.
func NewCreate(keys ui.KeyMap) *CreateView {
	ta := textarea.New()
	ta.SetValue(sourceTemplates[0].template)
	ta.SetHeight(10)
	ta.Focus()
	return &CreateView{keys: keys, metadata: ta}
}

// SetSize sets the view dimensions.
func (v *CreateView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.metadata.SetWidth(min(width-4, 72))
}

// SetSubmitting toggles the in-flight indicator.
func (v *CreateView) SetSubmitting(submitting bool) {
	v.submitting = submitting
}

// SetFieldError surfaces a server validation message verbatim.
func (v *CreateView) SetFieldError(msg string) {
	v.fieldErr = msg
}

// Reset restores the form to the selected template.
func (v *CreateView) Reset() {
	v.metadata.SetValue(sourceTemplates[v.selected].template)
	v.fieldErr = ""
	v.submitting = false
}

// Update handles key messages.
func (v *CreateView) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if v.submitting {
		return nil
	}

	switch {
	case key.Matches(keyMsg, v.keys.Submit):
		return v.submit()
	case keyMsg.String() == "ctrl+t":
		// Cycle source type; refill the payload with its template.
		v.selected = (v.selected + 1) % len(sourceTemplates)
		v.metadata.SetValue(sourceTemplates[v.selected].template)
		v.fieldErr = ""
		return nil
	}

	var cmd tea.Cmd
	v.metadata, cmd = v.metadata.Update(msg)
	return cmd
}

func (v *CreateView) submit() tea.Cmd {
	payload := v.metadata.Value()
	if !json.Valid([]byte(payload)) {
		v.fieldErr = `metadata must be valid JSON — e.g. {"driverId": "DRV-001"}`
		return nil
	}
	v.fieldErr = ""
	src := sourceTemplates[v.selected].value
	return func() tea.Msg {
		return ui.SubmitCreateMsg{SourceType: src, Metadata: payload}
	}
}

// View renders the form.
func (v *CreateView) View() string {
	var b strings.Builder
	b.WriteString(styles.ViewTitleStyle.Render("Ingest New Alert"))
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render(
		"Submit an alert from one of the fleet monitoring modules."))
	b.WriteString("\n\n")

	b.WriteString(styles.HeaderStyle.Render("Source Type") +
		styles.FooterHintStyle.Render("  (ctrl+t to cycle)"))
	b.WriteString("\n")
	for i, t := range sourceTemplates {
		marker := "  "
		line := fmt.Sprintf("%s %s", t.label, styles.MutedStyle.Render("— "+t.hint))
		if i == v.selected {
			marker = styles.HeaderStyle.Render("> ")
			line = styles.TableSelectedStyle.Render(t.label) + " " + styles.MutedStyle.Render("— "+t.hint)
		}
		b.WriteString(marker + line + "\n")
	}
	b.WriteString("\n")

	b.WriteString(styles.HeaderStyle.Render("Metadata (JSON payload)"))
	b.WriteString("\n")
	b.WriteString(v.metadata.View())
	b.WriteString("\n")

	if v.fieldErr != "" {
		b.WriteString(styles.ErrorStyle.Render(v.fieldErr))
		b.WriteString("\n")
	}
	if v.submitting {
		b.WriteString(styles.InfoStyle.Render("ingesting…"))
	} else {
		b.WriteString(styles.FooterHintStyle.Render(
			"ctrl+s submit · ctrl+t cycle source · severity is assigned by the rule engine"))
	}
	return b.String()
}
