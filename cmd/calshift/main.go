package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/corbaltcode/calendar-shift/core"
	"github.com/joho/godotenv"
)

type Event struct {
	Offset     int    `json:"offset"`
	DryRun     bool   `json:"dryRun"`
	CalendarID string `json:"calendar"`
}

func (e *Event) Run(ctx context.Context) {
	runner, err := buildRunner(ctx, e.Offset != 0)
	if err != nil {
		core.Die("%v", err)
	}

	result, err := runner.Run(core.RunParams{
		CalendarID:   e.CalendarID,
		ManualOffset: e.Offset,
		DryRun:       e.DryRun,
	})
	if err != nil {
		core.Die("%v", err)
	}

	fmt.Printf("Done! Shifted: %d, Skipped: %d, Failed: %d\n",
		result.Shifted, result.Skipped, result.Failed)
}

// buildRunner wires the calendar collaborator and, unless a manual
// offset skips wake detection, the Oura client. Lambda mode swaps the
// interactive auth flows for a service account and an SSM-held token.
func buildRunner(ctx context.Context, manualOffset bool) (*core.Runner, error) {
	fmt.Println("Authenticating with Google Calendar...")

	var googleClient *http.Client
	var err error
	if core.IsLambda {
		keyB64 := os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON_B64")
		if keyB64 == "" {
			return nil, fmt.Errorf("missing env GOOGLE_SERVICE_ACCOUNT_JSON_B64")
		}
		subject := os.Getenv("GOOGLE_IMPERSONATE_SUBJECT")
		if subject == "" {
			return nil, fmt.Errorf("missing env GOOGLE_IMPERSONATE_SUBJECT")
		}
		googleClient, err = core.ServiceAccountHTTPClient(ctx, keyB64, subject)
	} else {
		googleClient, err = core.GoogleHTTPClient(ctx,
			core.EnvOrDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
			&core.FileTokenStore{Path: core.EnvOrDefault("GOOGLE_TOKEN_FILE", "token.json")})
	}
	if err != nil {
		return nil, err
	}

	cal, err := core.NewGoogleCalendar(ctx, googleClient)
	if err != nil {
		return nil, err
	}

	runner := &core.Runner{Calendar: cal}
	if manualOffset {
		return runner, nil
	}

	oura, err := buildOuraClient(ctx)
	if err != nil {
		return nil, err
	}
	runner.Oura = oura
	return runner, nil
}

func buildOuraClient(ctx context.Context) (*core.OuraClient, error) {
	creds, err := core.LoadOuraCredentials(core.EnvOrDefault("OURA_CREDENTIALS_FILE", "oura_credentials.json"))
	if err != nil {
		return nil, err
	}

	var httpClient *http.Client
	if core.IsLambda {
		param := os.Getenv("OURA_TOKEN_PARAM")
		if param == "" {
			return nil, fmt.Errorf("missing env OURA_TOKEN_PARAM")
		}
		store, err := core.NewSSMTokenStore(ctx, param)
		if err != nil {
			return nil, err
		}
		httpClient, err = core.StoredOuraHTTPClient(ctx, creds, store)
		if err != nil {
			return nil, err
		}
	} else {
		store := &core.FileTokenStore{Path: core.EnvOrDefault("OURA_TOKEN_FILE", "oura_token.json")}
		httpClient, err = core.OuraHTTPClient(ctx, creds, store)
		if err != nil {
			return nil, err
		}
	}

	return core.NewOuraClient(httpClient), nil
}

func handler(ctx context.Context, e json.RawMessage) error {
	var ev Event
	if len(e) > 0 {
		if err := json.Unmarshal(e, &ev); err != nil {
			core.Die("invalid JSON event: %v", err)
		}
	}

	ev.Run(ctx)
	return nil
}

func main() {
	// If we're on Lambda runtime
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" {
		lambda.Start(handler)
		return
	}

	// CLI mode
	var (
		offset     = flag.Int("offset", 0, "Offset in minutes (overrides wake detection)")
		dryRun     = flag.Bool("dry-run", false, "Preview without making changes")
		calendarID = flag.String("calendar", "primary", "Calendar ID to use")
	)
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: no .env file found, relying on environment vars")
	}

	ev := Event{
		Offset:     *offset,
		DryRun:     *dryRun,
		CalendarID: *calendarID,
	}

	ev.Run(context.Background())
}
