package core

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

// GoogleHTTPClient returns an HTTP client authorized for the calendar
// scope from the OAuth client secret at credentialsPath, caching the
// user token in store. A missing token triggers the interactive consent
// flow.
func GoogleHTTPClient(ctx context.Context, credentialsPath string, store TokenStore) (*http.Client, error) {
	b, err := os.ReadFile(credentialsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (download OAuth credentials from Google Cloud Console)", ErrCredentialMissing, credentialsPath)
	}
	if err != nil {
		return nil, err
	}

	cfg, err := google.ConfigFromJSON(b, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret %s: %w", credentialsPath, err)
	}
	// Use localhost callback for desktop app. Port differs from the
	// Oura callback so both flows can run in one process.
	cfg.RedirectURL = "http://localhost:8089/callback"

	tok, err := store.Load()
	if errors.Is(err, ErrCredentialMissing) {
		tok, err = authorizeInteractive(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := store.Save(tok); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	return oauth2.NewClient(ctx, newSavingTokenSource(ctx, cfg, tok, store)), nil
}

// StoredGoogleHTTPClient is GoogleHTTPClient without the interactive
// fallback, for daemon runs that cannot block on a browser prompt.
func StoredGoogleHTTPClient(ctx context.Context, credentialsPath string, store TokenStore) (*http.Client, error) {
	b, err := os.ReadFile(credentialsPath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (download OAuth credentials from Google Cloud Console)", ErrCredentialMissing, credentialsPath)
	}
	if err != nil {
		return nil, err
	}

	cfg, err := google.ConfigFromJSON(b, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secret %s: %w", credentialsPath, err)
	}

	tok, err := store.Load()
	if err != nil {
		if errors.Is(err, ErrCredentialMissing) {
			return nil, fmt.Errorf("%w (run calshift once to authorize Google Calendar)", err)
		}
		return nil, err
	}

	return oauth2.NewClient(ctx, newSavingTokenSource(ctx, cfg, tok, store)), nil
}

// ServiceAccountHTTPClient builds a calendar-scoped client from a
// base64-encoded service account key, impersonating subject. This is
// the Lambda path, where no browser flow is possible.
func ServiceAccountHTTPClient(ctx context.Context, keyB64, subject string) (*http.Client, error) {
	keyJSON, err := base64.StdEncoding.DecodeString(keyB64)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 service account key: %w", err)
	}

	jwtCfg, err := google.JWTConfigFromJSON(keyJSON, calendar.CalendarScope)
	if err != nil {
		return nil, fmt.Errorf("JWT config: %w", err)
	}
	jwtCfg.Subject = subject

	return jwtCfg.Client(ctx), nil
}
