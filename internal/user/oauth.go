package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"
)

const googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// GoogleProfile is the subset of the OpenID userinfo response we use.
type GoogleProfile struct {
	Sub           string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// Google runs the authorization code flow against Google's OpenID provider.
type Google struct {
	Config      *oauth2.Config
	UserInfoURL string
}

func NewGoogle(clientID, clientSecret, redirectURL string) *Google {
	return &Google{
		Config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     endpoints.Google,
		},
		UserInfoURL: googleUserInfoURL,
	}
}

func (g *Google) Enabled() bool { return g != nil && g.Config.ClientID != "" }

func (g *Google) AuthCodeURL(state string) string {
	return g.Config.AuthCodeURL(state)
}

// Exchange trades the callback code for a token and fetches the profile.
func (g *Google) Exchange(ctx context.Context, code string) (*GoogleProfile, error) {
	tok, err := g.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google exchange: %w", err)
	}
	resp, err := g.Config.Client(ctx, tok).Get(g.UserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google userinfo: status %d", resp.StatusCode)
	}
	var p GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return nil, fmt.Errorf("google userinfo: %w", err)
	}
	return &p, nil
}
