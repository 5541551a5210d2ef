package app

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vigilops/vigil/internal/api"
	"github.com/vigilops/vigil/internal/detail"
	"github.com/vigilops/vigil/internal/feed"
	"github.com/vigilops/vigil/internal/poll"
	"github.com/vigilops/vigil/internal/rules"
	"github.com/vigilops/vigil/internal/ui"
)

// tick schedules the next poll for a loop.
func (m *Model) tick(loop poll.Loop) tea.Cmd {
	interval := m.poller.Interval(loop)
	if interval <= 0 {
		return nil
	}
	switch loop {
	case poll.LoopFeed:
		return tea.Tick(interval, func(time.Time) tea.Msg { return feedTickMsg{} })
	case poll.LoopSeverity:
		return tea.Tick(interval, func(time.Time) tea.Msg { return severityTickMsg{} })
	case poll.LoopOffenders:
		return tea.Tick(interval, func(time.Time) tea.Msg { return offendersTickMsg{} })
	}
	return nil
}

// tickClock schedules the next status bar update, which doubles as the
// invalidation sweeper.
func tickClock() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ui.StatusTickMsg{Timestamp: t}
	})
}

// fetchFeed fetches the feed's current (or requested) page through the
// controller. The generation stamps the completion for single-flight
// accounting.
func fetchFeed(ctrl *feed.Controller, loop poll.Loop, gen uint64, page int, forced bool) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.FetchPage(context.Background(), page)
		return ui.FeedPageMsg{
			Loop:       loop,
			Generation: gen,
			Forced:     forced,
			FetchedAt:  time.Now(),
			Err:        err,
		}
	}
}

// fetchSeverityCounts fetches the severity tally.
func fetchSeverityCounts(client *api.Client, loop poll.Loop, gen uint64, forced bool) tea.Cmd {
	return func() tea.Msg {
		counts, err := client.GetSeverityCounts(context.Background())
		return ui.SeverityCountsMsg{
			Loop:       loop,
			Generation: gen,
			Forced:     forced,
			Counts:     counts,
			FetchedAt:  time.Now(),
			Err:        err,
		}
	}
}

// fetchTopOffenders fetches the leaderboard.
func fetchTopOffenders(client *api.Client, loop poll.Loop, gen uint64, forced bool) tea.Cmd {
	return func() tea.Msg {
		offenders, err := client.GetTopOffenders(context.Background())
		return ui.TopOffendersMsg{
			Loop:       loop,
			Generation: gen,
			Forced:     forced,
			Offenders:  offenders,
			FetchedAt:  time.Now(),
			Err:        err,
		}
	}
}

// loadDetail runs the drill-down's concurrent alert+history load.
func loadDetail(ctrl *detail.Controller, id int64) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Load(context.Background(), id)
		return ui.DetailLoadedMsg{ID: id, Err: err}
	}
}

// resolveAlert runs the drill-down's resolve action.
func resolveAlert(ctrl *detail.Controller, id int64) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Resolve(context.Background())
		return ui.ResolveResultMsg{ID: id, Err: err}
	}
}

// loadRules fetches the rule set, via cache when fresh.
func loadRules(viewer *rules.Viewer) tea.Cmd {
	return func() tea.Msg {
		return ui.RuleConfigMsg{Err: viewer.Load(context.Background())}
	}
}

// reloadRules flushes the rule cache and re-fetches.
func reloadRules(viewer *rules.Viewer) tea.Cmd {
	return func() tea.Msg {
		return ui.RuleConfigMsg{Err: viewer.Reload(context.Background())}
	}
}

// fetchTrends fetches the daily ingest trend.
func fetchTrends(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		points, err := client.GetDailyTrends(context.Background())
		return ui.TrendsMsg{Points: points, Err: err}
	}
}

// fetchRecentEvents fetches the cross-alert transition ticker.
func fetchRecentEvents(client *api.Client) tea.Cmd {
	return func() tea.Msg {
		events, err := client.GetRecentEvents(context.Background())
		return ui.RecentEventsMsg{Events: events, Err: err}
	}
}

// fetchAutoClosed fetches recent auto-closed alerts for one window.
func fetchAutoClosed(client *api.Client, filter api.AutoClosedFilter) tea.Cmd {
	return func() tea.Msg {
		alerts, err := client.GetRecentAutoClosed(context.Background(), filter)
		return ui.AutoClosedMsg{Filter: filter, Alerts: alerts, Err: err}
	}
}

// createAlert submits a new alert.
func createAlert(client *api.Client, req api.CreateAlertRequest) tea.Cmd {
	return func() tea.Msg {
		alert, err := client.CreateAlert(context.Background(), req)
		return ui.CreateResultMsg{Alert: alert, Err: err}
	}
}

// login exchanges credentials for a bearer token.
func login(client *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		return ui.LoginResultMsg{Err: client.Login(context.Background(), username, password)}
	}
}
