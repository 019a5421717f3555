package main

import (
	"context"
	"flag"
	"fmt"

	"github.com/corbaltcode/calendar-shift/core"
	"github.com/joho/godotenv"
)

func main() {
	var (
		callbackURL = flag.String("url", "", "Callback URL for new subscription")
		list        = flag.Bool("list", false, "List existing subscriptions")
		deleteID    = flag.String("delete", "", "Delete subscription by ID")
	)
	flag.Parse()
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: no .env file found, relying on environment vars")
	}

	ctx := context.Background()

	creds, err := core.LoadOuraCredentials(core.EnvOrDefault("OURA_CREDENTIALS_FILE", "oura_credentials.json"))
	if err != nil {
		core.Die("%v", err)
	}
	httpClient, err := core.OuraHTTPClient(ctx, creds,
		&core.FileTokenStore{Path: core.EnvOrDefault("OURA_TOKEN_FILE", "oura_token.json")})
	if err != nil {
		core.Die("%v", err)
	}
	client := core.NewOuraClient(httpClient)

	switch {
	case *list:
		respBytes, err := core.ListWebhookSubscriptions(client, creds)
		if err != nil {
			core.Die("list subscriptions: %v", err)
		}
		fmt.Println("Current webhook subscriptions:")
		if pretty, err := core.PrettyJSON(respBytes); err == nil {
			fmt.Println(pretty)
		} else {
			fmt.Println(string(respBytes))
		}

	case *deleteID != "":
		if err := core.DeleteWebhookSubscription(client, creds, *deleteID); err != nil {
			core.Die("delete subscription: %v", err)
		}
		fmt.Printf("Subscription %s deleted.\n", *deleteID)

	case *callbackURL != "":
		token := core.EnvOrDefault("OURA_WEBHOOK_TOKEN", "calendar-shift-webhook-secret")
		fmt.Println("Creating webhook subscription...")
		fmt.Printf("  Callback URL: %s\n", *callbackURL)
		fmt.Println("  Data type: sleep")
		fmt.Println("  Event type: create")

		sub, err := core.CreateWebhookSubscription(client, creds, *callbackURL, token)
		if err != nil {
			core.Die("create subscription: %v", err)
		}
		fmt.Println("\nSuccess! Subscription created:")
		fmt.Printf("  ID: %s\n", sub.ID)
		fmt.Printf("  Expiration: %s\n", sub.ExpirationTime)

	default:
		flag.Usage()
	}
}
