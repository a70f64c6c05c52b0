// Copyright (c) 2026 CodeTrack. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package dashboard_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taibuivan/codetrack/internal/core/dashboard"
	"github.com/taibuivan/codetrack/internal/core/session"
	"github.com/taibuivan/codetrack/internal/platform/ctxutil"
	"github.com/taibuivan/codetrack/internal/platform/sec"
)

func serveDashboard(t *testing.T, path string, authenticated bool) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	service := newDashboard(&stubReader{sessions: history()}, at(10, 15, 0), time.UTC)
	router := dashboard.NewHandler(service).Routes()

	request := httptest.NewRequest(http.MethodGet, path, nil)
	if authenticated {
		claims := &sec.AuthClaims{UserID: owner, Username: "alice", Roles: []string{string(sec.RoleUser)}}
		request = request.WithContext(ctxutil.WithAuthUser(context.Background(), claims))
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return recorder, payload
}

/*
TestHandler_Overview renders stats, the running session and recent days.
*/
func TestHandler_Overview(t *testing.T) {
	recorder, payload := serveDashboard(t, "/", true)
	require.Equal(t, http.StatusOK, recorder.Code)

	data := payload["data"].(map[string]any)
	stats := data["stats"].(map[string]any)
	assert.EqualValues(t, 150, stats["total_coding_time"])
	assert.EqualValues(t, 9, stats["most_productive_hour"])
	assert.Len(t, stats["last_seven_days_activity"], 7)

	current := data["current_session"].(map[string]any)
	assert.Equal(t, "s6", current["id"])
	assert.Nil(t, current["formatted_duration"])

	recent := data["recent_activity"].([]any)
	require.Len(t, recent, 4)
	assert.Equal(t, "2024-03-10", recent[0].(map[string]any)["date"])
}

/*
TestHandler_DetailedStats covers the default window and explicit dates.
*/
func TestHandler_DetailedStats(t *testing.T) {
	tests := []struct {
		name   string
		path   string
		status int
		dates  []string
	}{
		{"default_lookback", "/stats", http.StatusOK, []string{"2024-02-28", "2024-03-07", "2024-03-08", "2024-03-09", "2024-03-10"}},
		{"explicit_window", "/stats?start=2024-03-08&end=2024-03-09", http.StatusOK, []string{"2024-03-08", "2024-03-09"}},
		{"malformed_date", "/stats?start=yesterday", http.StatusBadRequest, nil},
		{"inverted_window", "/stats?start=2024-03-09&end=2024-03-01", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder, payload := serveDashboard(t, tt.path, true)
			require.Equal(t, tt.status, recorder.Code)
			if tt.dates == nil {
				return
			}

			data := payload["data"].(map[string]any)
			keys := make([]string, 0, len(data))
			for key := range data {
				keys = append(keys, key)
			}
			assert.ElementsMatch(t, tt.dates, keys)
		})
	}
}

/*
TestHandler_Projects returns named project totals and requires authentication.
*/
func TestHandler_Projects(t *testing.T) {
	recorder, payload := serveDashboard(t, "/projects", true)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, map[string]any{"api": float64(90), "web": float64(15)}, payload["data"])

	recorder, _ = serveDashboard(t, "/projects", false)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

/*
TestHandler_DetailedStatsDefaultLookback starts the default window
DefaultStatsLookback days before today, so it spans one extra date.
*/
func TestHandler_DetailedStatsDefaultLookback(t *testing.T) {
	reader := &stubReader{sessions: []*session.CodingSession{
		done("edge", "api", time.Date(2024, 2, 9, 9, 0, 0, 0, time.UTC), 20),
		done("outside", "api", time.Date(2024, 2, 8, 9, 0, 0, 0, time.UTC), 20),
	}}
	service := newDashboard(reader, at(10, 15, 0), time.UTC)
	router := dashboard.NewHandler(service).Routes()

	claims := &sec.AuthClaims{UserID: owner, Username: "alice", Roles: []string{string(sec.RoleUser)}}
	request := httptest.NewRequest(http.MethodGet, "/stats", nil)
	request = request.WithContext(ctxutil.WithAuthUser(context.Background(), claims))

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)

	payload := map[string]any{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	daily := payload["data"].(map[string]any)
	assert.Equal(t, date(2, 9), date(3, 10).AddDays(-dashboard.DefaultStatsLookback))
	assert.Contains(t, daily, "2024-02-09")
	assert.NotContains(t, daily, "2024-02-08")
}
