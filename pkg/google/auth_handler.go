package google

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/config"
	"github.com/socialcal/socialcal/internal/rest"
	"github.com/socialcal/socialcal/pkg/user"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
)

const callbackPath = "/api/integrations/google/auth/callback"

type googleAuthRedirect struct {
	RedirectUrl string `json:"redirectUrl"`
}

// tokenExchanger turns an authorization code into a token. *oauth2.Config implements it.
type tokenExchanger interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
	Client(ctx context.Context, t *oauth2.Token) *http.Client
}

type GoogleAuth struct {
	tokens      TokenRepository
	oauthConfig tokenExchanger
}

func NewOAuthConfig(cfg config.Application) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     cfg.Google.ClientId,
		ClientSecret: cfg.Google.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  cfg.Host + callbackPath,
		Scopes:       []string{calendar.CalendarReadonlyScope},
	}
}

func NewGoogleAuth(tokens TokenRepository, oauthConfig *oauth2.Config) *GoogleAuth {
	return &GoogleAuth{tokens: tokens, oauthConfig: oauthConfig}
}

// OAuthLogin godoc
// @Summary Start the Google authorization
// @Tags Google
// @Produce json
// @Param finalUrl query string false "Where the browser returns after the callback"
// @Success 200 {object} googleAuthRedirect
// @Router /api/integrations/google/auth/login [get]
// @Security XUserId
func (g *GoogleAuth) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		http.Error(w, "unable to retrieve current user", http.StatusForbidden)
		return
	}

	stateNonce := uuid.NewString()
	if err := g.tokens.StartAuthorization(r.Context(), userId, stateNonce); err != nil {
		log.Error(err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}

	finalUrl := r.URL.Query().Get("finalUrl")
	log.Tracef("Redirecting to Google auth URL with nonce: %s", stateNonce)
	u := g.oauthConfig.AuthCodeURL(finalUrl+"|"+stateNonce, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	rest.WriteJSON(w, http.StatusOK, googleAuthRedirect{RedirectUrl: u})
}

// OAuthCallback receives the authorization code. The state carries "<finalUrl>|<nonce>".
func (g *GoogleAuth) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.FormValue("code")
	finalUrl, nonce, found := strings.Cut(r.FormValue("state"), "|")
	if !found || nonce == "" {
		rest.WriteError(w, http.StatusBadRequest, "Invalid OAuth state", "")
		return
	}

	token, err := g.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		log.Errorf("unable to exchange code for token: %v", err)
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}

	if err := g.tokens.CompleteAuthorization(r.Context(), nonce, token); err != nil {
		if errors.Is(err, ErrUnknownNonce) {
			log.Warnf("Google auth callback with unknown nonce %s", nonce)
		} else {
			log.Error(err)
		}
		http.Redirect(w, r, finalUrl+"?success=false", http.StatusFound)
		return
	}
	log.Debug("Successfully stored Google auth token for nonce: ", nonce)
	http.Redirect(w, r, finalUrl+"?success=true", http.StatusFound)
}

// OAuthLogout godoc
// @Summary Forget the Google authorization of the current user
// @Tags Google
// @Success 204
// @Router /api/integrations/google/auth/logout [delete]
// @Security XUserId
func (g *GoogleAuth) OAuthLogout(w http.ResponseWriter, r *http.Request) {
	userId, err := user.CurrentId(r.Context())
	if err != nil {
		http.Error(w, "unable to retrieve current user", http.StatusForbidden)
		return
	}
	if err := g.tokens.DeleteAuthorization(r.Context(), userId); err != nil {
		log.Error(err)
		rest.WriteError(w, http.StatusInternalServerError, "Failed to handle Google authentication", "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// getClient returns nil when the user has not authorized access.
func (g *GoogleAuth) getClient(ctx context.Context, userId int) (*http.Client, error) {
	token, err := g.tokens.GetToken(ctx, userId)
	if err != nil || token == nil {
		return nil, err
	}
	return g.oauthConfig.Client(context.Background(), token), nil
}
