package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/corbaltcode/calendar-shift/core"
	"github.com/corbaltcode/calendar-shift/webhook"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// buildRunner wires the collaborators from stored tokens only. A daemon
// cannot block on a browser prompt, so missing tokens fail startup with
// a hint to authorize through calshift first.
func buildRunner(ctx context.Context) (*core.Runner, error) {
	googleClient, err := core.StoredGoogleHTTPClient(ctx,
		core.EnvOrDefault("GOOGLE_CREDENTIALS_FILE", "credentials.json"),
		&core.FileTokenStore{Path: core.EnvOrDefault("GOOGLE_TOKEN_FILE", "token.json")})
	if err != nil {
		return nil, err
	}

	cal, err := core.NewGoogleCalendar(ctx, googleClient)
	if err != nil {
		return nil, err
	}

	creds, err := core.LoadOuraCredentials(core.EnvOrDefault("OURA_CREDENTIALS_FILE", "oura_credentials.json"))
	if err != nil {
		return nil, err
	}
	ouraClient, err := core.StoredOuraHTTPClient(ctx, creds,
		&core.FileTokenStore{Path: core.EnvOrDefault("OURA_TOKEN_FILE", "oura_token.json")})
	if err != nil {
		return nil, err
	}

	return &core.Runner{Calendar: cal, Oura: core.NewOuraClient(ouraClient)}, nil
}

func main() {
	var (
		addr       = flag.String("addr", "", "Listen address (defaults to WEBHOOKD_ADDR or 0.0.0.0:5050)")
		calendarID = flag.String("calendar", "primary", "Calendar ID to shift")
		dryRun     = flag.Bool("dry-run", false, "Preview without making changes")
		cronSpec   = flag.String("cron", "", `Optional cron schedule for a fallback run, e.g. "0 10 * * *"`)
	)
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: no .env file found, relying on environment vars")
	}

	ctx := context.Background()
	runner, err := buildRunner(ctx)
	if err != nil {
		core.Die("%v", err)
	}

	params := core.RunParams{CalendarID: *calendarID, DryRun: *dryRun}
	run := func() (*core.RunResult, error) {
		return runner.Run(params)
	}

	settings := webhook.SettingsFromEnv()
	if *addr != "" {
		settings.Addr = *addr
	}

	server := webhook.NewServer(settings, run)
	if err := server.Start(); err != nil {
		core.Die("%v", err)
	}

	fmt.Printf("Webhook endpoint: http://%s/webhook/oura\n", server.Addr())
	fmt.Printf("Health check: http://%s/health\n", server.Addr())
	if settings.Secret == "" {
		fmt.Println("Warning: OURA_WEBHOOK_TOKEN not set, signature checks disabled")
	}

	var scheduler *cron.Cron
	if *cronSpec != "" {
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(*cronSpec, func() {
			log.Printf("cron: running scheduled shift")
			if _, err := run(); err != nil {
				log.Printf("cron: shift failed: %v", err)
			}
		}); err != nil {
			core.Die("invalid -cron schedule %q: %v", *cronSpec, err)
		}
		scheduler.Start()
		fmt.Printf("Scheduled fallback run: %s\n", *cronSpec)
	}

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	fmt.Println("Shutting down...")
	if scheduler != nil {
		scheduler.Stop()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
