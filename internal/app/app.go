// Package app wires the operator console together: the Bubbletea event
// loop, the polling loops, the invalidation drain, and view routing.
package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/cache"
	"github.com/vigilops/vigil/internal/config"
	"github.com/vigilops/vigil/internal/detail"
	"github.com/vigilops/vigil/internal/feed"
	"github.com/vigilops/vigil/internal/logger"
	"github.com/vigilops/vigil/internal/poll"
	"github.com/vigilops/vigil/internal/rules"
	"github.com/vigilops/vigil/internal/session"
	"github.com/vigilops/vigil/internal/ui"
	"github.com/vigilops/vigil/internal/ui/components"
	"github.com/vigilops/vigil/internal/ui/styles"
	"github.com/vigilops/vigil/internal/ui/views"
)

const toastDuration = 3 * time.Second

// Model is the root Bubbletea model for the console.
type Model struct {
	cfg    *config.Config
	keys   ui.KeyMap
	client *api.Client
	sess   *session.Session

	poller        *poll.Poller
	bus           *cache.Bus
	invalidations *cache.Collector

	feedCtrl   *feed.Controller
	detailCtrl *detail.Controller
	rules      *rules.Viewer

	feedView   *views.FeedView
	detailView *views.DetailView
	rulesView  *views.RulesView
	createView *views.CreateView
	loginView  *views.LoginView

	statusBar *components.StatusBar
	help      *components.HelpText

	currentView views.ViewType
	detailOpen  bool
	helpVisible bool
	autoFilter  api.AutoClosedFilter

	toastText string
	toastErr  bool
	toastSeq  int

	width    int
	height   int
	quitting bool
}

// New builds the console over an authenticated-or-not session. When no
// credential is held the console starts on the login view.
func New(cfg *config.Config, client *api.Client, sess *session.Session) *Model {
	bus := cache.NewBus()
	keys := ui.DefaultKeyMap()

	feedCtrl := feed.New(client, cfg.UI.PageSize)
	detailCtrl := detail.New(client, bus)
	viewer := rules.New(client)

	statusBar := components.NewStatusBar()
	statusBar.SetServer(cfg.Server.BaseURL)

	m := &Model{
		cfg:           cfg,
		keys:          keys,
		client:        client,
		sess:          sess,
		poller:        poll.New(),
		bus:           bus,
		invalidations: cache.NewCollector(bus),
		feedCtrl:      feedCtrl,
		detailCtrl:    detailCtrl,
		rules:         viewer,
		feedView:      views.NewFeed(feedCtrl, keys),
		detailView:    views.NewDetail(detailCtrl, keys),
		rulesView:     views.NewRules(viewer, keys),
		createView:    views.NewCreate(keys),
		loginView:     views.NewLogin(),
		statusBar:     statusBar,
		help:          components.NewHelp(),
		currentView:   views.ViewFeed,
		autoFilter:    api.AutoClosedLast24h,
	}
	m.feedView.SetDateFormat(cfg.UI.DateFormat)
	m.detailView.SetDateFormat(cfg.UI.DateFormat)
	if !sess.Authenticated() {
		m.currentView = views.ViewLogin
	}
	return m
}

// Init starts the clock and, when already authenticated, the polling loops.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickClock()}
	if m.currentView != views.ViewLogin {
		cmds = append(cmds, m.startPolling())
	}
	return tea.Batch(cmds...)
}

// startPolling registers the three refresh loops and kicks an immediate
// fetch on each, plus the once-per-entry dashboard extras.
func (m *Model) startPolling() tea.Cmd {
	m.poller.Register(poll.LoopFeed, m.cfg.Polling.Feed)
	m.poller.Register(poll.LoopSeverity, m.cfg.Polling.Severity)
	m.poller.Register(poll.LoopOffenders, m.cfg.Polling.Offenders)
	return tea.Batch(
		m.kick(poll.LoopFeed),
		m.kick(poll.LoopSeverity),
		m.kick(poll.LoopOffenders),
		fetchTrends(m.client),
		fetchRecentEvents(m.client),
		fetchAutoClosed(m.client, m.autoFilter),
		m.feedView.SpinnerTick(),
	)
}

// kick starts one fetch for a loop if it is idle, otherwise just schedules
// the next tick. Ticks that land while a request is outstanding are
// skipped, never queued.
func (m *Model) kick(loop poll.Loop) tea.Cmd {
	gen, ok := m.poller.Begin(loop)
	if !ok {
		if m.poller.Stopped(loop) {
			return nil
		}
		return m.tick(loop)
	}
	switch loop {
	case poll.LoopFeed:
		return fetchFeed(m.feedCtrl, loop, gen, m.feedCtrl.Page(), false)
	case poll.LoopSeverity:
		return fetchSeverityCounts(m.client, loop, gen, false)
	case poll.LoopOffenders:
		return fetchTopOffenders(m.client, loop, gen, false)
	}
	return nil
}

// enterLogin drops the whole console back to the login view: loops
// stopped, outstanding completions invalidated, drawer closed.
func (m *Model) enterLogin() {
	m.poller.StopAll()
	m.feedCtrl.Teardown()
	m.detailCtrl.Close()
	m.detailOpen = false
	m.helpVisible = false
	m.loginView.Reset()
	m.currentView = views.ViewLogin
}

// noteError records a fetch failure in the status bar. Authorization
// failures additionally force the login view; the returned command is
// non-nil only in that case.
func (m *Model) noteError(err error) tea.Cmd {
	m.statusBar.SetLastError(shortError(err))
	if api.IsAuthorization(err) {
		m.enterLogin()
		return m.showToast("session expired, sign in again", true)
	}
	return nil
}

func shortError(err error) string {
	msg := err.Error()
	if len(msg) > 48 {
		msg = msg[:47] + "…"
	}
	return msg
}

// showToast raises a transient notification and schedules its expiry.
func (m *Model) showToast(text string, isErr bool) tea.Cmd {
	m.toastSeq++
	m.toastText = text
	m.toastErr = isErr
	id := m.toastSeq
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return ui.ClearToastMsg{ID: id}
	})
}

// drainInvalidations converts pending invalidation signals into immediate
// forced fetches. Forced fetches run outside the poll loops' in-flight
// accounting; the controllers' generations arbitrate races.
func (m *Model) drainInvalidations() []tea.Cmd {
	var cmds []tea.Cmd
	for _, k := range m.invalidations.Drain() {
		switch k {
		case cache.Alerts:
			cmds = append(cmds, fetchFeed(m.feedCtrl, poll.LoopFeed, 0, m.feedCtrl.Page(), true))
		case cache.SeverityCounts:
			cmds = append(cmds, fetchSeverityCounts(m.client, poll.LoopSeverity, 0, true))
		case cache.TopOffenders:
			cmds = append(cmds, fetchTopOffenders(m.client, poll.LoopOffenders, 0, true))
		}
	}
	if len(cmds) > 0 {
		logger.Debug("invalidation drain", "fetches", len(cmds))
	}
	return cmds
}

// Update is the message dispatcher.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		bodyHeight := msg.Height - 4
		m.statusBar.SetSize(msg.Width)
		m.help.SetSize(msg.Width, bodyHeight)
		m.feedView.SetSize(msg.Width, bodyHeight)
		m.detailView.SetSize(msg.Width, bodyHeight)
		m.rulesView.SetSize(msg.Width, bodyHeight)
		m.createView.SetSize(msg.Width, bodyHeight)
		m.loginView.SetSize(msg.Width, bodyHeight)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		// Each spinner ignores ticks that are not its own.
		return m, tea.Batch(
			m.feedView.Update(msg),
			m.detailView.Update(msg),
			m.rulesView.Update(msg),
		)

	case feedTickMsg:
		return m, m.kick(poll.LoopFeed)
	case severityTickMsg:
		return m, m.kick(poll.LoopSeverity)
	case offendersTickMsg:
		return m, m.kick(poll.LoopOffenders)

	case ui.FeedPageMsg:
		return m.handleFeedPage(msg)
	case ui.SeverityCountsMsg:
		return m.handleSeverityCounts(msg)
	case ui.TopOffendersMsg:
		return m.handleTopOffenders(msg)

	case ui.StatusTickMsg:
		m.statusBar.SetTimestamp(msg.Timestamp)
		m.statusBar.SetLatency(m.client.AvgLatency())
		claims, _ := m.sess.Claims()
		m.statusBar.SetSession(m.sess.Authenticated(), claims.Subject, claims.ExpiresAt)
		cmds := m.drainInvalidations()
		cmds = append(cmds, tickClock())
		return m, tea.Batch(cmds...)

	case ui.OpenDetailMsg:
		m.detailOpen = true
		m.detailCtrl.Close()
		m.detailView.SetAlertID(msg.ID)
		m.detailView.RefreshContent()
		return m, tea.Batch(loadDetail(m.detailCtrl, msg.ID), m.detailView.SpinnerTick())

	case ui.CloseDetailMsg:
		m.detailOpen = false
		m.detailCtrl.Close()
		return m, nil

	case ui.DetailLoadedMsg:
		return m.handleDetailLoaded(msg)

	case ui.ResolveRequestMsg:
		if !m.detailOpen {
			return m, nil
		}
		m.detailView.RefreshContent()
		return m, tea.Batch(
			resolveAlert(m.detailCtrl, m.detailView.AlertID()),
			m.detailView.SpinnerTick(),
		)

	case ui.ResolveResultMsg:
		return m.handleResolveResult(msg)

	case ui.RuleConfigMsg:
		if msg.Err != nil {
			if cmd := m.noteError(msg.Err); cmd != nil {
				return m, cmd
			}
		}
		return m, nil

	case ui.ReloadRulesMsg:
		return m, tea.Batch(reloadRules(m.rules), m.rulesView.SpinnerTick())

	case ui.TrendsMsg:
		if msg.Err == nil {
			m.feedView.SetTrends(msg.Points)
		}
		return m, nil

	case ui.RecentEventsMsg:
		if msg.Err == nil {
			m.feedView.SetRecentEvents(msg.Events)
		}
		return m, nil

	case ui.AutoClosedMsg:
		if msg.Err == nil {
			m.autoFilter = msg.Filter
			m.feedView.SetAutoClosed(msg.Filter, msg.Alerts)
		}
		return m, nil

	case ui.AutoClosedFilterMsg:
		return m, fetchAutoClosed(m.client, msg.Filter)

	case ui.PageRequestMsg:
		return m.handlePageRequest(msg)

	case ui.RefreshRequestMsg:
		return m, tea.Batch(
			fetchFeed(m.feedCtrl, poll.LoopFeed, 0, m.feedCtrl.Page(), true),
			fetchSeverityCounts(m.client, poll.LoopSeverity, 0, true),
			fetchTopOffenders(m.client, poll.LoopOffenders, 0, true),
			fetchTrends(m.client),
			fetchRecentEvents(m.client),
			fetchAutoClosed(m.client, m.autoFilter),
			m.feedView.SpinnerTick(),
		)

	case ui.SubmitCreateMsg:
		m.createView.SetSubmitting(true)
		return m, createAlert(m.client, api.CreateAlertRequest{
			SourceType: msg.SourceType,
			Metadata:   msg.Metadata,
		})

	case ui.CreateResultMsg:
		return m.handleCreateResult(msg)

	case ui.SubmitLoginMsg:
		m.loginView.SetSubmitting(true)
		return m, login(m.client, msg.Username, msg.Password)

	case ui.LoginResultMsg:
		if msg.Err != nil {
			m.loginView.SetError(shortError(msg.Err))
			return m, nil
		}
		m.loginView.Reset()
		m.currentView = views.ViewFeed
		claims, _ := m.sess.Claims()
		m.statusBar.SetSession(true, claims.Subject, claims.ExpiresAt)
		return m, m.startPolling()

	case ui.SessionExpiredMsg:
		if m.currentView == views.ViewLogin {
			return m, nil
		}
		m.enterLogin()
		return m, m.showToast("session expired, sign in again", true)

	case ui.ShowToastMsg:
		return m, m.showToast(msg.Text, msg.IsErr)

	case ui.ClearToastMsg:
		if msg.ID == m.toastSeq {
			m.toastText = ""
		}
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// ctrl+c always quits, from any view.
	if msg.String() == "ctrl+c" {
		return m.quit()
	}

	if m.currentView == views.ViewLogin {
		return m, m.loginView.Update(msg)
	}

	if m.helpVisible {
		if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Back) ||
			key.Matches(msg, m.keys.Quit) {
			m.helpVisible = false
		}
		return m, nil
	}

	// The ingest form owns its keystrokes; plain 'q' and '?' must type.
	typing := m.currentView == views.ViewCreate && !m.detailOpen

	if !typing {
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m.quit()
		case key.Matches(msg, m.keys.Help):
			m.helpVisible = true
			return m, nil
		}
	}

	if m.detailOpen {
		return m, m.detailView.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.NextView):
		return m, m.switchTo(nextView(m.currentView, 1))
	case key.Matches(msg, m.keys.PrevView):
		return m, m.switchTo(nextView(m.currentView, -1))
	case key.Matches(msg, m.keys.JumpToFeed):
		if !typing {
			return m, m.switchTo(views.ViewFeed)
		}
	case key.Matches(msg, m.keys.JumpToRules):
		if !typing {
			return m, m.switchTo(views.ViewRules)
		}
	case key.Matches(msg, m.keys.JumpToCreate):
		if !typing {
			return m, m.switchTo(views.ViewCreate)
		}
	}

	return m, m.activeView().Update(msg)
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	m.poller.StopAll()
	m.feedCtrl.Teardown()
	m.detailCtrl.Close()
	return m, tea.Quit
}

// nextView cycles through the three main views; login is entered only by
// credential loss, never by tabbing.
func nextView(current views.ViewType, delta int) views.ViewType {
	order := []views.ViewType{views.ViewFeed, views.ViewRules, views.ViewCreate}
	for i, v := range order {
		if v == current {
			return order[(i+delta+len(order))%len(order)]
		}
	}
	return views.ViewFeed
}

func (m *Model) switchTo(target views.ViewType) tea.Cmd {
	if target == m.currentView {
		return nil
	}
	m.currentView = target
	if target == views.ViewRules && m.rules.State() == rules.StateLoading {
		return tea.Batch(loadRules(m.rules), m.rulesView.SpinnerTick())
	}
	return nil
}

func (m *Model) activeView() views.ViewModel {
	switch m.currentView {
	case views.ViewRules:
		return m.rulesView
	case views.ViewCreate:
		return m.createView
	case views.ViewLogin:
		return m.loginView
	default:
		return m.feedView
	}
}

func (m *Model) handleFeedPage(msg ui.FeedPageMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	applied := msg.Forced
	if !msg.Forced {
		applied = m.poller.Finish(poll.LoopFeed, msg.Generation)
		if !m.poller.Stopped(poll.LoopFeed) {
			cmds = append(cmds, m.tick(poll.LoopFeed))
		}
	}
	if applied {
		if msg.Err != nil {
			// The controller kept the previous page; just surface the failure.
			if cmd := m.noteError(msg.Err); cmd != nil {
				cmds = append(cmds, cmd)
			}
		} else {
			m.statusBar.SetLastError("")
			m.feedView.SetLastUpdate(msg.FetchedAt)
			m.feedView.ClampSelection()
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleSeverityCounts(msg ui.SeverityCountsMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	applied := msg.Forced
	if !msg.Forced {
		applied = m.poller.Finish(poll.LoopSeverity, msg.Generation)
		if !m.poller.Stopped(poll.LoopSeverity) {
			cmds = append(cmds, m.tick(poll.LoopSeverity))
		}
	}
	if applied {
		if msg.Err != nil {
			if cmd := m.noteError(msg.Err); cmd != nil {
				cmds = append(cmds, cmd)
			}
		} else {
			m.feedView.SetSeverityCounts(msg.Counts)
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleTopOffenders(msg ui.TopOffendersMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	applied := msg.Forced
	if !msg.Forced {
		applied = m.poller.Finish(poll.LoopOffenders, msg.Generation)
		if !m.poller.Stopped(poll.LoopOffenders) {
			cmds = append(cmds, m.tick(poll.LoopOffenders))
		}
	}
	if applied {
		if msg.Err != nil {
			if cmd := m.noteError(msg.Err); cmd != nil {
				cmds = append(cmds, cmd)
			}
		} else {
			m.feedView.SetOffenders(msg.Offenders)
		}
	}
	return m, tea.Batch(cmds...)
}

// handlePageRequest moves the feed by delta pages, clamped to the last
// known page range. The server-echoed index on the completion remains
// canonical.
func (m *Model) handlePageRequest(msg ui.PageRequestMsg) (tea.Model, tea.Cmd) {
	target := m.feedCtrl.Page() + msg.Delta
	if target < 0 {
		target = 0
	}
	if total := m.feedCtrl.TotalPages(); total > 0 && target > total-1 {
		target = total - 1
	}
	if target == m.feedCtrl.Page() {
		return m, nil
	}
	return m, tea.Batch(
		fetchFeed(m.feedCtrl, poll.LoopFeed, 0, target, true),
		m.feedView.SpinnerTick(),
	)
}

func (m *Model) handleDetailLoaded(msg ui.DetailLoadedMsg) (tea.Model, tea.Cmd) {
	if !m.detailOpen || msg.ID != m.detailView.AlertID() {
		return m, nil
	}
	if msg.Err != nil {
		// Not-found renders in the drawer; any other failure closes it
		// rather than showing a partial alert.
		m.detailOpen = false
		m.detailCtrl.Close()
		if cmd := m.noteError(msg.Err); cmd != nil {
			return m, cmd
		}
		return m, m.showToast(shortError(msg.Err), true)
	}
	m.detailView.RefreshContent()
	return m, nil
}

func (m *Model) handleResolveResult(msg ui.ResolveResultMsg) (tea.Model, tea.Cmd) {
	m.detailView.RefreshContent()
	cmds := m.drainInvalidations()
	switch {
	case msg.Err == nil:
		cmds = append(cmds, m.showToast(fmt.Sprintf("alert #%d resolved", msg.ID), false))
	case errors.Is(msg.Err, detail.ErrNotResolvable):
		cmds = append(cmds, m.showToast("alert is already closed", true))
	default:
		if cmd := m.noteError(msg.Err); cmd != nil {
			cmds = append(cmds, cmd)
		} else {
			cmds = append(cmds, m.showToast(shortError(msg.Err), true))
		}
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleCreateResult(msg ui.CreateResultMsg) (tea.Model, tea.Cmd) {
	m.createView.SetSubmitting(false)
	if msg.Err != nil {
		var vErr *api.ValidationError
		if errors.As(msg.Err, &vErr) {
			// Server validation messages render verbatim next to the form.
			m.createView.SetFieldError(vErr.Error())
			return m, nil
		}
		if cmd := m.noteError(msg.Err); cmd != nil {
			return m, cmd
		}
		return m, m.showToast(shortError(msg.Err), true)
	}
	m.createView.Reset()
	m.currentView = views.ViewFeed
	return m, tea.Batch(
		m.showToast(fmt.Sprintf("alert #%d ingested (%s)", msg.Alert.ID, msg.Alert.Severity), false),
		fetchFeed(m.feedCtrl, poll.LoopFeed, 0, m.feedCtrl.Page(), true),
		fetchSeverityCounts(m.client, poll.LoopSeverity, 0, true),
		m.feedView.SpinnerTick(),
	)
}

// View renders the whole console.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 {
		return "starting…"
	}

	var body string
	switch {
	case m.currentView == views.ViewLogin:
		body = m.loginView.View()
	case m.helpVisible:
		body = m.help.View()
	case m.detailOpen:
		body = m.detailView.View()
	default:
		body = m.activeView().View()
	}

	header := m.renderHeader()
	toast := m.renderToast()
	bodyHeight := m.height - lipgloss.Height(header) - 2
	if bodyHeight > 0 {
		body = lipgloss.NewStyle().Height(bodyHeight).MaxHeight(bodyHeight).Render(body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, body, toast, m.statusBar.View())
}

func (m *Model) renderHeader() string {
	title := styles.HeaderStyle.Render("VIGIL")
	if m.currentView == views.ViewLogin {
		return title
	}
	tabs := make([]string, 0, 3)
	for i, v := range []views.ViewType{views.ViewFeed, views.ViewRules, views.ViewCreate} {
		label := fmt.Sprintf("%d:%s", i+1, v.ShortName())
		if v == m.currentView {
			tabs = append(tabs, styles.TableSelectedStyle.Render(label))
		} else {
			tabs = append(tabs, styles.FooterHintStyle.Render(label))
		}
	}
	return title + "  " + strings.Join(tabs, "  ")
}

func (m *Model) renderToast() string {
	if m.toastText == "" {
		return ""
	}
	if m.toastErr {
		return styles.ErrorStyle.Render(m.toastText)
	}
	return styles.SuccessStyle.Render(m.toastText)
}
