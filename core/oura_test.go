package core

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sleepServer(t *testing.T, sessions []OuraSleepSession) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/usercollection/sleep", r.URL.Path)
		require.NotEmpty(t, r.URL.Query().Get("start_date"))
		require.NotEmpty(t, r.URL.Query().Get("end_date"))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(OuraSleepEnvelope{Data: sessions})
	}))
}

func TestFetchSleepSessions(t *testing.T) {
	var gotStart, gotEnd string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start_date")
		gotEnd = r.URL.Query().Get("end_date")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(OuraSleepEnvelope{Data: []OuraSleepSession{
			{ID: "a", Day: "2025-01-15", BedtimeStart: "2025-01-14T23:05:00+09:00", BedtimeEnd: "2025-01-15T08:15:00+09:00"},
		}})
	}))
	defer srv.Close()

	c := NewOuraClient(srv.Client(), WithOuraBaseURL(srv.URL))
	sessions, err := FetchSleepSessions(c, "2025-01-12", "2025-01-15")
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "2025-01-12", gotStart)
	assert.Equal(t, "2025-01-15", gotEnd)
	assert.Equal(t, "2025-01-15T08:15:00+09:00", sessions[0].BedtimeEnd)
}

func TestFetchSleepSessions_Non2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewOuraClient(srv.Client(), WithOuraBaseURL(srv.URL))
	_, err := FetchSleepSessions(c, "2025-01-12", "2025-01-15")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-2xx")
}

func TestLatestWakeTime_PicksLatestEndingToday(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	srv := sleepServer(t, []OuraSleepSession{
		{ID: "old", BedtimeStart: "2025-01-13T23:00:00Z", BedtimeEnd: "2025-01-14T06:45:00Z"},
		{ID: "night", BedtimeStart: "2025-01-14T23:00:00Z", BedtimeEnd: "2025-01-15T07:10:00Z"},
		{ID: "nap", BedtimeStart: "2025-01-15T07:30:00Z", BedtimeEnd: "2025-01-15T08:15:00Z"},
	})
	defer srv.Close()

	c := NewOuraClient(srv.Client(), WithOuraBaseURL(srv.URL))
	wake, err := LatestWakeTime(c, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15T08:15:00Z", wake.Format(time.RFC3339))
}

func TestLatestWakeTime_FallsBackToMostRecent(t *testing.T) {
	// Nothing ended today; the most recent session wins even though its
	// wake time is a day old.
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	srv := sleepServer(t, []OuraSleepSession{
		{ID: "older", BedtimeStart: "2025-01-12T23:00:00Z", BedtimeEnd: "2025-01-13T07:00:00Z"},
		{ID: "recent", BedtimeStart: "2025-01-13T23:00:00Z", BedtimeEnd: "2025-01-14T07:30:00Z"},
	})
	defer srv.Close()

	c := NewOuraClient(srv.Client(), WithOuraBaseURL(srv.URL))
	wake, err := LatestWakeTime(c, now)
	require.NoError(t, err)
	assert.Equal(t, 14, wake.Day())
	assert.Equal(t, 7, wake.Hour())
	assert.Equal(t, 30, wake.Minute())
}

func TestLatestWakeTime_NoSessions(t *testing.T) {
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	srv := sleepServer(t, nil)
	defer srv.Close()

	c := NewOuraClient(srv.Client(), WithOuraBaseURL(srv.URL))
	_, err := LatestWakeTime(c, now)
	require.ErrorIs(t, err, ErrNoSleepData)
}

func TestLatestWakeTime_WallClockDateMatch(t *testing.T) {
	// A session ending 01:30+09:00 on the 15th is still "today" even
	// though the instant is 16:30Z on the 14th.
	now := time.Date(2025, 1, 15, 9, 0, 0, 0, time.UTC)
	srv := sleepServer(t, []OuraSleepSession{
		{ID: "tokyo", BedtimeStart: "2025-01-14T22:00:00+09:00", BedtimeEnd: "2025-01-15T01:30:00+09:00"},
	})
	defer srv.Close()

	c := NewOuraClient(srv.Client(), WithOuraBaseURL(srv.URL))
	wake, err := LatestWakeTime(c, now)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-15T01:30:00+09:00", wake.Format(time.RFC3339))
}
