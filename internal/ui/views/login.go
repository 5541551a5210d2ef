package views

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vigilops/vigil/internal/ui"
	"github.com/vigilops/vigil/internal/ui/styles"
)

// LoginView is the authentication entry point. Every 401 anywhere in the
// client lands back here.
type LoginView struct {
	width  int
	height int

	username textinput.Model
	password textinput.Model
	focused  int

	submitting bool
	errMsg     string
}

// NewLogin creates the login form.
func NewLogin() *LoginView {
	user := textinput.New()
	user.Placeholder = "username"
	user.Focus()
	user.CharLimit = 64

	pass := textinput.New()
	pass.Placeholder = "password"
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'
	pass.CharLimit = 128

	return &LoginView{username: user, password: pass}
}

// SetSize sets the view dimensions.
func (v *LoginView) SetSize(width, height int) {
	v.width = width
	v.height = height
	v.username.Width = 32
	v.password.Width = 32
}

// SetSubmitting toggles the in-flight indicator.
func (v *LoginView) SetSubmitting(submitting bool) {
	v.submitting = submitting
}

// SetError surfaces a failed attempt.
func (v *LoginView) SetError(msg string) {
	v.errMsg = msg
	v.submitting = false
}

// Reset clears the password for a fresh attempt.
func (v *LoginView) Reset() {
	v.password.SetValue("")
	v.submitting = false
}

// Update handles key messages.
func (v *LoginView) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	if v.submitting {
		return nil
	}

	switch keyMsg.String() {
	case "tab", "shift+tab", "up", "down":
		v.focused = (v.focused + 1) % 2
		if v.focused == 0 {
			v.username.Focus()
			v.password.Blur()
		} else {
			v.username.Blur()
			v.password.Focus()
		}
		return nil
	case "enter":
		username := strings.TrimSpace(v.username.Value())
		password := v.password.Value()
		if username == "" || password == "" {
			v.errMsg = "username and password are required"
			return nil
		}
		v.errMsg = ""
		return func() tea.Msg {
			return ui.SubmitLoginMsg{Username: username, Password: password}
		}
	}

	var cmd tea.Cmd
	if v.focused == 0 {
		v.username, cmd = v.username.Update(msg)
	} else {
		v.password, cmd = v.password.Update(msg)
	}
	return cmd
}

// View renders the login form.
func (v *LoginView) View() string {
	var b strings.Builder
	b.WriteString(styles.ViewTitleStyle.Render("Vigil — Operator Console"))
	b.WriteString("\n")
	b.WriteString(styles.MutedStyle.Render("Sign in to access alert management."))
	b.WriteString("\n\n")
	b.WriteString("  " + v.username.View() + "\n")
	b.WriteString("  " + v.password.View() + "\n\n")

	if v.errMsg != "" {
		b.WriteString("  " + styles.ErrorStyle.Render(v.errMsg) + "\n")
	}
	if v.submitting {
		b.WriteString("  " + styles.InfoStyle.Render("authenticating…"))
	} else {
		b.WriteString("  " + styles.FooterHintStyle.Render("tab switch field · enter sign in"))
	}
	return b.String()
}
