package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/oauth2"
)

// OuraCredentials is the client id/secret pair issued by the Oura
// developer console, stored as JSON.
type OuraCredentials struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

func LoadOuraCredentials(path string) (*OuraCredentials, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s (create it with your Oura client_id and client_secret)", ErrCredentialMissing, path)
	}
	if err != nil {
		return nil, err
	}
	var creds OuraCredentials
	if err := json.Unmarshal(b, &creds); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &creds, nil
}

func (c *OuraCredentials) OAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  "http://localhost:8080/callback",
		Scopes:       []string{"daily", "sleep", "personal"},
		Endpoint: oauth2.Endpoint{
			AuthURL:  OuraAuthURL,
			TokenURL: OuraTokenURL,
		},
	}
}

// OuraHTTPClient returns an HTTP client carrying a valid Oura bearer
// token, refreshing through the store as needed. When the store has no
// token yet, the interactive browser authorization runs.
func OuraHTTPClient(ctx context.Context, creds *OuraCredentials, store TokenStore) (*http.Client, error) {
	cfg := creds.OAuthConfig()

	tok, err := store.Load()
	if errors.Is(err, ErrCredentialMissing) {
		tok, err = authorizeInteractive(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := store.Save(tok); err != nil {
			return nil, err
		}
		log.Printf("Oura authorization successful")
	} else if err != nil {
		return nil, err
	}

	return oauth2.NewClient(ctx, newSavingTokenSource(ctx, cfg, tok, store)), nil
}

// StoredOuraHTTPClient is OuraHTTPClient without the interactive
// fallback, for webhook and Lambda runs where nobody can click through
// a browser prompt.
func StoredOuraHTTPClient(ctx context.Context, creds *OuraCredentials, store TokenStore) (*http.Client, error) {
	cfg := creds.OAuthConfig()

	tok, err := store.Load()
	if err != nil {
		if errors.Is(err, ErrCredentialMissing) {
			return nil, fmt.Errorf("%w (run calshift once to authorize Oura)", err)
		}
		return nil, err
	}

	return oauth2.NewClient(ctx, newSavingTokenSource(ctx, cfg, tok, store)), nil
}

// savingTokenSource writes refreshed tokens back to the store so the
// next run does not refresh again.
type savingTokenSource struct {
	store TokenStore
	src   oauth2.TokenSource
	last  string
}

func newSavingTokenSource(ctx context.Context, cfg *oauth2.Config, tok *oauth2.Token, store TokenStore) oauth2.TokenSource {
	return &savingTokenSource{
		store: store,
		src:   cfg.TokenSource(ctx, tok),
		last:  tok.AccessToken,
	}
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if tok.AccessToken != s.last {
		s.last = tok.AccessToken
		if err := s.store.Save(tok); err != nil {
			log.Printf("save refreshed token: %v", err)
		}
	}
	return tok, nil
}

// authorizeInteractive walks the user through the provider's consent
// screen and catches the authorization code on a short-lived local
// listener at the config's redirect URL.
func authorizeInteractive(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	redirect, err := url.Parse(cfg.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("parse redirect url: %w", err)
	}

	codeChan := make(chan string, 1)
	errChan := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "Authorization failed", http.StatusBadRequest)
			errChan <- errors.New("no code in callback")
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><h1>Authorization successful!</h1><p>You can close this window.</p></body></html>")
		codeChan <- code
	})

	server := &http.Server{Addr: redirect.Host, Handler: mux}
	go func() {
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	authURL := cfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
	fmt.Printf("\nAuthorization required. Open the following URL in your browser:\n\n%s\n\n", authURL)

	var code string
	select {
	case code = <-codeChan:
	case err := <-errChan:
		server.Shutdown(ctx)
		return nil, err
	case <-time.After(2 * time.Minute):
		server.Shutdown(ctx)
		return nil, errors.New("timeout waiting for authorization")
	case <-ctx.Done():
		server.Shutdown(context.Background())
		return nil, ctx.Err()
	}

	server.Shutdown(ctx)

	tok, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}
	return tok, nil
}
