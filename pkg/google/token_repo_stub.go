package google

import (
	"context"
	"sync"

	"golang.org/x/oauth2"
)

type authorization struct {
	nonce string
	token *oauth2.Token
}

type TokenRepositoryStub struct {
	mu   sync.Mutex
	auth map[int]authorization
}

func NewTokenRepositoryStub() *TokenRepositoryStub {
	return &TokenRepositoryStub{auth: make(map[int]authorization)}
}

func (s *TokenRepositoryStub) StartAuthorization(ctx context.Context, userId int, nonce string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth[userId] = authorization{nonce: nonce}
	return nil
}

func (s *TokenRepositoryStub) CompleteAuthorization(ctx context.Context, nonce string, token *oauth2.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for userId, a := range s.auth {
		if a.nonce == nonce {
			a.token = token
			s.auth[userId] = a
			return nil
		}
	}
	return ErrUnknownNonce
}

func (s *TokenRepositoryStub) GetToken(ctx context.Context, userId int) (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth[userId].token, nil
}

func (s *TokenRepositoryStub) DeleteAuthorization(ctx context.Context, userId int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.auth, userId)
	return nil
}

// Nonce exposes the pending state nonce of a user.
func (s *TokenRepositoryStub) Nonce(userId int) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.auth[userId].nonce
}
