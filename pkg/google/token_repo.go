package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/database"
	"golang.org/x/oauth2"
)

var ErrUnknownNonce = errors.New("unknown oauth state nonce")

// TokenRepository keeps one Google authorization per user. A row starts with only the state nonce and
// receives its token once the OAuth callback completes.
type TokenRepository interface {
	StartAuthorization(ctx context.Context, userId int, nonce string) error
	CompleteAuthorization(ctx context.Context, nonce string, token *oauth2.Token) error
	// GetToken returns nil when the user never finished the authorization.
	GetToken(ctx context.Context, userId int) (*oauth2.Token, error)
	DeleteAuthorization(ctx context.Context, userId int) error
}

type TokenRepositoryImpl struct {
	db database.Querier
}

func NewTokenRepository(db database.Querier) *TokenRepositoryImpl {
	return &TokenRepositoryImpl{db: db}
}

func (r *TokenRepositoryImpl) StartAuthorization(ctx context.Context, userId int, nonce string) error {
	query := `INSERT INTO google_calendar_auth (user_id, nonce) VALUES ($1, $2)
			  ON CONFLICT (user_id) DO UPDATE SET nonce = EXCLUDED.nonce, access_token = NULL, refresh_token = NULL, expiry = NULL`
	if _, err := r.db.Exec(ctx, query, userId, nonce); err != nil {
		return fmt.Errorf("failed to store Google auth nonce for user %d: %w", userId, err)
	}
	return nil
}

func (r *TokenRepositoryImpl) CompleteAuthorization(ctx context.Context, nonce string, token *oauth2.Token) error {
	query := `UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3 WHERE nonce = $4`
	tag, err := r.db.Exec(ctx, query, token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce)
	if err != nil {
		return fmt.Errorf("failed to store Google auth token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUnknownNonce
	}
	return nil
}

func (r *TokenRepositoryImpl) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	var accessToken, refreshToken *string
	var expiry *int64
	query := `SELECT access_token, refresh_token, expiry FROM google_calendar_auth WHERE user_id = $1`
	err := r.db.QueryRow(ctx, query, userId).Scan(&accessToken, &refreshToken, &expiry)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	if accessToken == nil {
		log.Debugf("Google authorization of user %d is still pending", userId)
		return nil, nil
	}

	token := &oauth2.Token{AccessToken: *accessToken}
	if refreshToken != nil {
		token.RefreshToken = *refreshToken
	}
	if expiry != nil {
		token.Expiry = time.Unix(*expiry, 0)
	}
	return token, nil
}

func (r *TokenRepositoryImpl) DeleteAuthorization(ctx context.Context, userId int) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM google_calendar_auth WHERE user_id = $1`, userId); err != nil {
		return fmt.Errorf("failed to delete Google auth of user %d: %w", userId, err)
	}
	return nil
}
