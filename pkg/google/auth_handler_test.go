package google

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/socialcal/socialcal/internal/test_utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type fakeExchanger struct {
	token       *oauth2.Token
	exchangeErr error
	client      *http.Client
}

func (f *fakeExchanger) AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string {
	return "https://accounts.example.com/auth?state=" + url.QueryEscape(state)
}

func (f *fakeExchanger) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	return f.token, nil
}

func (f *fakeExchanger) Client(ctx context.Context, t *oauth2.Token) *http.Client {
	if f.client != nil {
		return f.client
	}
	return http.DefaultClient
}

func login(t *testing.T, auth *GoogleAuth) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/login?finalUrl=https://app.example.com/settings", nil)
	req = req.WithContext(test_utils.WithTestUser(req.Context()))
	rr := httptest.NewRecorder()

	auth.OAuthLogin(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var body googleAuthRedirect
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	redirect, err := url.Parse(body.RedirectUrl)
	require.NoError(t, err)
	return redirect.Query().Get("state")
}

func callback(auth *GoogleAuth, state string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/integrations/google/auth/callback?code=abc&state="+url.QueryEscape(state), nil)
	rr := httptest.NewRecorder()
	auth.OAuthCallback(rr, req)
	return rr
}

func TestGoogleAuth_LoginAndCallback(t *testing.T) {
	// given
	tokens := NewTokenRepositoryStub()
	auth := &GoogleAuth{tokens: tokens, oauthConfig: &fakeExchanger{token: &oauth2.Token{AccessToken: "access"}}}

	// when
	state := login(t, auth)
	rr := callback(auth, state)

	// then
	finalUrl, nonce, found := strings.Cut(state, "|")
	require.True(t, found)
	assert.Equal(t, "https://app.example.com/settings", finalUrl)
	assert.Equal(t, tokens.Nonce(test_utils.TestUser.Id), nonce)
	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://app.example.com/settings?success=true", rr.Header().Get("Location"))
	token, err := tokens.GetToken(context.Background(), test_utils.TestUser.Id)
	require.NoError(t, err)
	assert.Equal(t, "access", token.AccessToken)
}

func TestGoogleAuth_CallbackFailures(t *testing.T) {
	t.Run("failed exchange", func(t *testing.T) {
		tokens := NewTokenRepositoryStub()
		auth := &GoogleAuth{tokens: tokens, oauthConfig: &fakeExchanger{exchangeErr: errors.New("denied")}}
		state := login(t, auth)

		rr := callback(auth, state)

		assert.Equal(t, "https://app.example.com/settings?success=false", rr.Header().Get("Location"))
		token, _ := tokens.GetToken(context.Background(), test_utils.TestUser.Id)
		assert.Nil(t, token)
	})

	t.Run("unknown nonce", func(t *testing.T) {
		auth := &GoogleAuth{tokens: NewTokenRepositoryStub(), oauthConfig: &fakeExchanger{token: &oauth2.Token{AccessToken: "access"}}}

		rr := callback(auth, "https://app.example.com|forged")

		assert.Equal(t, "https://app.example.com?success=false", rr.Header().Get("Location"))
	})

	t.Run("state without nonce", func(t *testing.T) {
		auth := &GoogleAuth{tokens: NewTokenRepositoryStub(), oauthConfig: &fakeExchanger{}}

		rr := callback(auth, "https://app.example.com")

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGoogleAuth_Logout(t *testing.T) {
	// given
	tokens := NewTokenRepositoryStub()
	auth := &GoogleAuth{tokens: tokens, oauthConfig: &fakeExchanger{token: &oauth2.Token{AccessToken: "access"}}}
	callback(auth, login(t, auth))

	// when
	req := httptest.NewRequest(http.MethodDelete, "/api/integrations/google/auth/logout", nil)
	req = req.WithContext(test_utils.WithTestUser(req.Context()))
	rr := httptest.NewRecorder()
	auth.OAuthLogout(rr, req)

	// then
	assert.Equal(t, http.StatusNoContent, rr.Code)
	client, err := auth.getClient(context.Background(), test_utils.TestUser.Id)
	require.NoError(t, err)
	assert.Nil(t, client)
}
