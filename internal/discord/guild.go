package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// AddGuildMember adds a logged-in user to the support guild using the
// bot token and the user's OAuth access token (guilds.join scope).
// A 204 means the user was already a member.
func AddGuildMember(ctx context.Context, botToken, guildID, userID, accessToken string) error {
	if botToken == "" {
		return errors.New("discord bot token not configured")
	}
	if guildID == "" || userID == "" || accessToken == "" {
		return errors.New("missing parameters")
	}

	payload, err := json.Marshal(map[string]string{"access_token": accessToken})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/guilds/%s/members/%s", apiBase, guildID, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bot "+botToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("failed to add user to guild: status %d", resp.StatusCode)
	}
	return nil
}
