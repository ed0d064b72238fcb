package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

const apiBase = "https://discord.com/api/v10"

// Endpoint is Discord's OAuth2 authorization-code endpoint pair.
var Endpoint = oauth2.Endpoint{
	AuthURL:  "https://discord.com/oauth2/authorize",
	TokenURL: "https://discord.com/api/oauth2/token",
}

// OAuthConfig builds the oauth2 config used for the login flow.
// guilds.join is requested so the bot can pull customers into the
// support server after checkout.
func OAuthConfig(clientID, clientSecret, redirectURI string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       []string{"identify", "email", "guilds.join"},
		Endpoint:     Endpoint,
	}
}

// Identity is the slice of the Discord user object this service consumes.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ExchangeCode swaps an authorization code for an access token.
func ExchangeCode(ctx context.Context, cfg *oauth2.Config, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, errors.New("no code provided")
	}
	return cfg.Exchange(ctx, code)
}

// FetchIdentity resolves the authenticated user behind an access token.
func FetchIdentity(ctx context.Context, cfg *oauth2.Config, token *oauth2.Token) (*Identity, error) {
	client := cfg.Client(ctx, token)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"/users/@me", nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("discord identity fetch failed: status %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, err
	}
	if identity.ID == "" {
		return nil, errors.New("discord identity missing id")
	}
	return &identity, nil
}
