package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultOuraBaseURL = "https://api.ouraring.com/v2"

	OuraAuthURL  = "https://cloud.ouraring.com/oauth/authorize"
	OuraTokenURL = "https://api.ouraring.com/oauth/token"
)

// ErrNoSleepData means the sleep API answered but carried no sessions
// for the queried window.
var ErrNoSleepData = errors.New("no sleep data found")

type OuraSleepEnvelope struct {
	Data []OuraSleepSession `json:"data"`
}

type OuraSleepSession struct {
	ID           string `json:"id"`
	Day          string `json:"day"`
	BedtimeStart string `json:"bedtime_start"`
	BedtimeEnd   string `json:"bedtime_end"`
}

type OuraClient struct {
	baseURL string
	http    *http.Client
}

// NewOuraClient wraps an HTTP client that already carries bearer
// authentication (see OuraHTTPClient).
func NewOuraClient(httpClient *http.Client, opts ...func(*OuraClient)) *OuraClient {
	client := &OuraClient{
		baseURL: defaultOuraBaseURL,
		http:    httpClient,
	}
	if client.http == nil {
		client.http = &http.Client{Timeout: 30 * time.Second}
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// For testing
func WithOuraBaseURL(baseURL string) func(*OuraClient) {
	return func(c *OuraClient) {
		c.baseURL = baseURL
	}
}

func FetchSleepSessions(c *OuraClient, startDate, endDate string) ([]OuraSleepSession, error) {
	params := url.Values{}
	params.Set("start_date", startDate)
	params.Set("end_date", endDate)
	reqURL := fmt.Sprintf("%s/usercollection/sleep?%s", c.baseURL, params.Encode())

	req, err := http.NewRequest(http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("non-2xx status: %s\n%s", resp.Status, string(respBytes))
	}

	var envelope OuraSleepEnvelope
	if err := json.Unmarshal(respBytes, &envelope); err != nil {
		return nil, fmt.Errorf("unmarshal sleep sessions: %w", err)
	}
	return envelope.Data, nil
}

// LatestWakeTime queries a trailing three-day window of sleep sessions
// and returns the end of the one that finished latest today. The wide
// window catches sessions that span midnight. When no session ends
// today the most recent session overall is used instead; that wake time
// can be days old if the ring has not synced, so the fallback is
// logged.
func LatestWakeTime(c *OuraClient, now time.Time) (time.Time, error) {
	today := now.Format("2006-01-02")
	windowStart := now.AddDate(0, 0, -3).Format("2006-01-02")

	sessions, err := FetchSleepSessions(c, windowStart, today)
	if err != nil {
		return time.Time{}, err
	}
	if len(sessions) == 0 {
		return time.Time{}, ErrNoSleepData
	}

	var endedToday []OuraSleepSession
	for _, s := range sessions {
		if s.BedtimeEnd == "" {
			continue
		}
		end, err := ParseTimeAny(s.BedtimeEnd)
		if err != nil {
			continue
		}
		if end.Format("2006-01-02") == today {
			endedToday = append(endedToday, s)
		}
	}

	candidates := endedToday
	if len(candidates) == 0 {
		log.Printf("no sleep session ending today, using most recent instead (may be stale)")
		candidates = sessions
	}

	// bedtime_end is zero-padded ISO-8601, so the latest session wins a
	// plain string comparison.
	latest := candidates[0]
	for _, s := range candidates[1:] {
		if s.BedtimeEnd > latest.BedtimeEnd {
			latest = s
		}
	}
	if latest.BedtimeEnd == "" {
		return time.Time{}, ErrNoSleepData
	}
	log.Printf("sleep session: %s to %s", latest.BedtimeStart, latest.BedtimeEnd)

	wake, err := ParseTimeAny(latest.BedtimeEnd)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse bedtime_end %q: %w", latest.BedtimeEnd, err)
	}
	return wake, nil
}
