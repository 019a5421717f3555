package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WebhookSubscription is Oura's record of a webhook registration.
type WebhookSubscription struct {
	ID             string `json:"id"`
	CallbackURL    string `json:"callback_url"`
	EventType      string `json:"event_type"`
	DataType       string `json:"data_type"`
	ExpirationTime string `json:"expiration_time"`
}

type subscriptionRequest struct {
	CallbackURL       string `json:"callback_url"`
	VerificationToken string `json:"verification_token"`
	EventType         string `json:"event_type"`
	DataType          string `json:"data_type"`
}

// Subscription endpoints authenticate with the client id/secret pair on
// top of the bearer token.
func setSubscriptionHeaders(req *http.Request, creds *OuraCredentials) {
	req.Header.Set("x-client-id", creds.ClientID)
	req.Header.Set("x-client-secret", creds.ClientSecret)
	req.Header.Set("Content-Type", "application/json")
}

// CreateWebhookSubscription registers callbackURL for sleep/create
// notifications. Oura sends the URL a verification challenge before
// confirming, so the webhook server must already be reachable.
func CreateWebhookSubscription(c *OuraClient, creds *OuraCredentials, callbackURL, verificationToken string) (*WebhookSubscription, error) {
	url := fmt.Sprintf("%s/webhook/subscription", c.baseURL)

	body, err := json.Marshal(subscriptionRequest{
		CallbackURL:       callbackURL,
		VerificationToken: verificationToken,
		EventType:         "create",
		DataType:          "sleep",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal subscription: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	setSubscriptionHeaders(req, creds)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("non-2xx status: %s\n%s", resp.Status, string(respBytes))
	}

	var sub WebhookSubscription
	if err := json.Unmarshal(respBytes, &sub); err != nil {
		return nil, fmt.Errorf("unmarshal subscription: %w", err)
	}
	return &sub, nil
}

// ListWebhookSubscriptions returns the raw listing payload for display.
func ListWebhookSubscriptions(c *OuraClient, creds *OuraCredentials) ([]byte, error) {
	url := fmt.Sprintf("%s/webhook/subscription", c.baseURL)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	setSubscriptionHeaders(req, creds)

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

	return respBytes, nil
}

// DeleteWebhookSubscription removes a subscription by id.
func DeleteWebhookSubscription(c *OuraClient, creds *OuraCredentials, id string) error {
	url := fmt.Sprintf("%s/webhook/subscription/%s", c.baseURL, id)

	req, err := http.NewRequest(http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	setSubscriptionHeaders(req, creds)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		respBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("non-2xx status: %s\n%s", resp.Status, string(respBytes))
	}
	return nil
}
