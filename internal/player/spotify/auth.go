package spotify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/nvalcourt/jockey/internal/config"
	"github.com/nvalcourt/jockey/internal/player"
)

const (
	authState     = "jockey-auth-state"
	tokenFilePerm = 0o600
)

// tokenData wraps the oauth2 token for on-disk persistence.
type tokenData struct {
	Token *oauth2.Token `json:"token"`
}

func newAuthenticator(cfg config.SpotifyConfig) *spotifyauth.Authenticator {
	return spotifyauth.New(
		spotifyauth.WithRedirectURL(cfg.RedirectURL),
		spotifyauth.WithScopes(
			spotifyauth.ScopeUserLibraryRead,
			spotifyauth.ScopeUserReadPlaybackState,
			spotifyauth.ScopeUserModifyPlaybackState,
			spotifyauth.ScopePlaylistModifyPublic,
			spotifyauth.ScopePlaylistModifyPrivate,
		),
		spotifyauth.WithClientID(cfg.ClientID),
		spotifyauth.WithClientSecret(cfg.ClientSecret),
	)
}

// Authenticate establishes the Spotify session. A cached token is reused
// when it still works; otherwise the interactive authorization flow runs.
func (c *Client) Authenticate(ctx context.Context) error {
	if c.cfg.ClientID == "" || c.cfg.ClientSecret == "" {
		return &player.AuthError{Op: "credentials", Cause: errors.New("spotify client id and secret are required")}
	}

	token, err := c.loadToken()
	if err != nil {
		c.log.Info("no saved token, starting authorization flow", "token_file", c.cfg.TokenFile)
		return c.authorize(ctx)
	}

	c.api = spotify.New(c.auth.Client(ctx, token))

	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		c.log.Warn("saved token rejected, starting authorization flow", "error", err)
		return c.authorize(ctx)
	}

	c.userID = user.ID
	c.log.Info("authenticated from saved token", "user", user.DisplayName)
	return nil
}

// authorize runs the OAuth authorization code flow: the user visits the
// printed URL, approves access, and pastes the code from the redirect
// back into the terminal.
func (c *Client) authorize(ctx context.Context) error {
	url := c.auth.AuthURL(authState)

	fmt.Printf("Visit the following URL to authorize jockey:\n\n  %s\n\n", url)
	fmt.Print("Enter the authorization code: ")

	var code string
	if _, err := fmt.Scanln(&code); err != nil {
		return &player.AuthError{Op: "read authorization code", Cause: err}
	}

	token, err := c.auth.Exchange(ctx, code)
	if err != nil {
		return &player.AuthError{Op: "exchange authorization code", Cause: err}
	}

	if err := c.saveToken(token); err != nil {
		c.log.Warn("could not save token", "token_file", c.cfg.TokenFile, "error", err)
	}

	c.api = spotify.New(c.auth.Client(ctx, token))

	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return &player.AuthError{Op: "verify session", Cause: err}
	}

	c.userID = user.ID
	c.log.Info("authorization complete", "user", user.DisplayName)
	return nil
}

func (c *Client) loadToken() (*oauth2.Token, error) {
	data, err := os.ReadFile(c.cfg.TokenFile)
	if err != nil {
		return nil, err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}
	if td.Token == nil {
		return nil, errors.New("token file contains no token")
	}
	return td.Token, nil
}

func (c *Client) saveToken(token *oauth2.Token) error {
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}
	if err := os.WriteFile(c.cfg.TokenFile, data, tokenFilePerm); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	return nil
}
