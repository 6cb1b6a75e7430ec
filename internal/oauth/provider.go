// Copyright (c) 2026 Rolegate. All rights reserved.

package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/rolegate/rolegate/internal/platform/ctxutil"
)

// Discord OAuth2 endpoints and the identity API base.
const (
	discordAuthURL  = "https://discord.com/api/oauth2/authorize"
	discordTokenURL = "https://discord.com/api/oauth2/token"
	discordAPIBase  = "https://discord.com/api"
)

// IdentityProvider abstracts the OAuth2 authorization server so the flow
// service can be tested without network access.
type IdentityProvider interface {

	// AuthURL builds the consent-screen URL carrying the CSRF state.
	AuthURL(state string) string

	// ResolveIdentity exchanges an authorization code and fetches the
	// authenticated user plus their guild list.
	ResolveIdentity(ctx context.Context, code string) (*Identity, error)
}

// DiscordProvider implements [IdentityProvider] against Discord.
type DiscordProvider struct {
	config  *oauth2.Config
	apiBase string
}

// NewDiscordProvider constructs a provider for the given application
// credentials. redirectURI must match the URI registered with Discord.
func NewDiscordProvider(clientID, clientSecret, redirectURI string) *DiscordProvider {
	return &DiscordProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       []string{"identify", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  discordAuthURL,
				TokenURL: discordTokenURL,
			},
		},
		apiBase: discordAPIBase,
	}
}

// AuthURL builds the consent-screen URL carrying the CSRF state.
func (provider *DiscordProvider) AuthURL(state string) string {
	return provider.config.AuthCodeURL(state)
}

/*
ResolveIdentity exchanges the authorization code and fetches the user.

Description: The code exchange and the /users/@me fetch are both required;
either failing fails the resolution. The guild listing is best effort: when
/users/@me/guilds fails (the guilds scope can be gated by Discord-side
policy) the identity is returned with an empty guild list and membership
checks downstream fail closed.

Parameters:
  - ctx: context.Context
  - code: the single-use authorization code from the callback

Returns:
  - *Identity: the authenticated user
  - error: exchange or identity-fetch failure
*/
func (provider *DiscordProvider) ResolveIdentity(ctx context.Context, code string) (*Identity, error) {
	token, err := provider.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("oauth code exchange: %w", err)
	}

	client := provider.config.Client(ctx, token)

	var identity Identity
	if err := getJSON(ctx, client, provider.apiBase+"/users/@me", &identity); err != nil {
		return nil, fmt.Errorf("fetch identity: %w", err)
	}

	var guilds []GuildRef
	if err := getJSON(ctx, client, provider.apiBase+"/users/@me/guilds", &guilds); err != nil {
		ctxutil.GetLogger(ctx).WarnContext(ctx, "guild_listing_unavailable", "error", err)
	} else {
		identity.Guilds = guilds
	}

	return &identity, nil
}

// getJSON performs an authenticated GET and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url string, out any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	response, err := client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("discord api returned %d for %s", response.StatusCode, url)
	}

	return json.NewDecoder(response.Body).Decode(out)
}
