package api

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vigilops/vigil/internal/session"
)

const baseURL = "http://vigil.test/api"

func newTestClient(t *testing.T, token string) (*Client, *session.Session) {
	t.Helper()
	sess := session.New("")
	if token != "" {
		require.NoError(t, sess.Set(token))
	}
	c := NewClient(baseURL, 5*time.Second, sess)
	httpmock.ActivateNonDefault(c.Transport())
	t.Cleanup(httpmock.DeactivateAndReset)
	return c, sess
}

func TestClient_AttachesBearerToken(t *testing.T) {
	c, _ := newTestClient(t, "tok-abc")

	var gotAuth string
	httpmock.RegisterResponder("GET", baseURL+"/alerts",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(200, map[string]any{
				"content": []any{}, "totalElements": 0, "totalPages": 0, "number": 0,
			})
		})

	_, err := c.ListAlerts(context.Background(), 0, 10, "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-abc", gotAuth)
}

func TestClient_401ClearsSessionGlobally(t *testing.T) {
	c, sess := newTestClient(t, "expired-tok")

	notified := false
	sess.Subscribe(func() { notified = true })

	httpmock.RegisterResponder("GET", baseURL+"/dashboard/severity-counts",
		httpmock.NewJsonResponderOrPanic(401, map[string]any{"message": "token expired"}))

	_, err := c.GetSeverityCounts(context.Background())
	require.Error(t, err)
	assert.True(t, IsAuthorization(err), "401 should map to AuthorizationError")
	assert.False(t, sess.Authenticated(), "401 must discard the stored credential")
	assert.True(t, notified, "credential loss must fan out to session subscribers")
}

func TestClient_ValidationMessagesVerbatim(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	httpmock.RegisterResponder("POST", baseURL+"/alerts",
		httpmock.NewJsonResponderOrPanic(400, map[string]any{
			"message": "Validation failed",
			"validationErrors": map[string]string{
				"sourceType": "sourceType is required",
			},
		}))

	_, err := c.CreateAlert(context.Background(), CreateAlertRequest{
		SourceType: "", Metadata: "{}",
	})
	require.Error(t, err)

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "Validation failed", vErr.Message)
	assert.Equal(t, "sourceType is required", vErr.Fields["sourceType"])
}

func TestClient_CreateAlertRejectsMalformedJSONLocally(t *testing.T) {
	c, _ := newTestClient(t, "tok")
	// No responder registered: the request must never leave the client.

	_, err := c.CreateAlert(context.Background(), CreateAlertRequest{
		SourceType: "overspeed", Metadata: "{not json",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
	assert.Equal(t, 0, httpmock.GetTotalCallCount(), "malformed metadata must be rejected before any request")
}

func TestClient_ListAlertsRejectsBadPaging(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	_, err := c.ListAlerts(context.Background(), -1, 10, "")
	assert.True(t, IsValidation(err))

	_, err = c.ListAlerts(context.Background(), 0, 0, "")
	assert.True(t, IsValidation(err))

	assert.Equal(t, 0, httpmock.GetTotalCallCount())
}

func TestClient_ListAlertsParsesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	httpmock.RegisterResponder("GET", baseURL+"/alerts",
		httpmock.NewStringResponder(200, `{
			"content": [
				{"alertId": 41, "sourceType": "overspeed", "severity": "CRITICAL",
				 "status": "ESCALATED", "timestamp": "2026-08-27T14:03:22.123456",
				 "metadata": "{\"driverId\":\"DRV-001\"}"}
			],
			"totalElements": 57, "totalPages": 6, "number": 3, "size": 10,
			"numberOfElements": 1, "first": false, "last": false, "empty": false
		}`))

	page, err := c.ListAlerts(context.Background(), 3, 10, "")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Number, "the server-echoed page index is canonical")
	assert.Equal(t, int64(57), page.TotalElements)
	require.Len(t, page.Content, 1)

	alert := page.Content[0]
	assert.Equal(t, int64(41), alert.ID)
	assert.Equal(t, SeverityCritical, alert.Severity)
	assert.Equal(t, StatusEscalated, alert.Status)
	// Zone-less server timestamps must still parse.
	assert.Equal(t, 2026, alert.Timestamp.Year())
	assert.Equal(t, 14, alert.Timestamp.Hour())
}

func TestClient_GetAlertNotFound(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	httpmock.RegisterResponder("GET", baseURL+"/alerts/999",
		httpmock.NewJsonResponderOrPanic(404, map[string]any{"message": "Alert not found with id: 999"}))

	_, err := c.GetAlert(context.Background(), 999)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, int64(999), nf.ID)
	assert.Equal(t, "alert", nf.Resource)
}

func TestClient_ResolveAlert(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	httpmock.RegisterResponder("PATCH", baseURL+"/alerts/12/resolve",
		httpmock.NewStringResponder(200, `{
			"alertId": 12, "sourceType": "compliance", "severity": "WARNING",
			"status": "RESOLVED", "timestamp": "2026-08-27T09:00:00", "metadata": "{}"
		}`))

	alert, err := c.ResolveAlert(context.Background(), 12)
	require.NoError(t, err)
	assert.Equal(t, StatusResolved, alert.Status)
	assert.True(t, alert.Status.Terminal())
}

func TestClient_HistoryNullPreviousStatus(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	httpmock.RegisterResponder("GET", baseURL+"/alerts/12/history",
		httpmock.NewStringResponder(200, `[
			{"historyId": 1, "alertId": 12, "previousStatus": null,
			 "newStatus": "OPEN", "transitionTime": "2026-08-27T09:00:00", "reason": "ingested"},
			{"historyId": 2, "alertId": 12, "previousStatus": "OPEN",
			 "newStatus": "ESCALATED", "transitionTime": "2026-08-27T10:00:00",
			 "reason": "3 violations within 60 mins"}
		]`))

	history, err := c.GetAlertHistory(context.Background(), 12)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Nil(t, history[0].PreviousStatus, "initial ingestion has no previous status")
	require.NotNil(t, history[1].PreviousStatus)
	assert.Equal(t, StatusOpen, *history[1].PreviousStatus)
}

func TestClient_SeverityCounts(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	httpmock.RegisterResponder("GET", baseURL+"/dashboard/severity-counts",
		httpmock.NewStringResponder(200, `{"CRITICAL": 4, "WARNING": 11, "INFO": 2}`))

	counts, err := c.GetSeverityCounts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), counts[SeverityCritical])
	assert.Equal(t, int64(11), counts[SeverityWarning])
	assert.Equal(t, int64(2), counts[SeverityInfo])
}

func TestClient_DailyTrendsPositionalPairs(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	httpmock.RegisterResponder("GET", baseURL+"/dashboard/trends/daily",
		httpmock.NewStringResponder(200, `[["Aug 25", 14], ["Aug 26", 9], ["Aug 27", 21]]`))

	points, err := c.GetDailyTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, points, 3)
	assert.Equal(t, "Aug 26", points[1].Date)
	assert.Equal(t, int64(21), points[2].Count)
}

func TestClient_ServerErrorIsTransient(t *testing.T) {
	c, _ := newTestClient(t, "tok")

	httpmock.RegisterResponder("GET", baseURL+"/dashboard/top-offenders",
		httpmock.NewStringResponder(503, `{"message": "upstream unavailable"}`))

	_, err := c.GetTopOffenders(context.Background())
	require.Error(t, err)

	var te *TransientError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, 503, te.StatusCode)
	assert.False(t, IsAuthorization(err))
	assert.False(t, IsNotFound(err))
}

func TestClient_LoginStoresToken(t *testing.T) {
	c, sess := newTestClient(t, "")

	var gotAuth string
	httpmock.RegisterResponder("POST", baseURL+"/auth/login",
		func(req *http.Request) (*http.Response, error) {
			gotAuth = req.Header.Get("Authorization")
			return httpmock.NewJsonResponse(200, map[string]any{"token": "fresh-tok"})
		})

	require.NoError(t, c.Login(context.Background(), "ops", "secret"))
	assert.Empty(t, gotAuth, "login is the one unauthenticated operation")
	assert.Equal(t, "fresh-tok", sess.Token())
}

func TestClient_LoginBadCredentials(t *testing.T) {
	c, sess := newTestClient(t, "")

	notified := false
	sess.Subscribe(func() { notified = true })

	httpmock.RegisterResponder("POST", baseURL+"/auth/login",
		httpmock.NewJsonResponderOrPanic(401, map[string]any{"message": "bad credentials"}))

	err := c.Login(context.Background(), "ops", "wrong")
	assert.True(t, IsAuthorization(err))
	assert.False(t, notified, "a failed login must not look like a global logout")
}

func TestClient_TracksLatency(t *testing.T) {
	c, _ := newTestClient(t, "tok")
	assert.Zero(t, c.AvgLatency(), "no samples yet")

	httpmock.RegisterResponder("GET", baseURL+"/dashboard/top-offenders",
		httpmock.NewStringResponder(200, `[{"driverId": "DRV-001", "count": 9}]`))

	_, err := c.GetTopOffenders(context.Background())
	require.NoError(t, err)
	assert.Greater(t, c.AvgLatency(), time.Duration(0))
}
