package friend

import (
	"context"
	"errors"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/pkg/user"
)

var (
	ErrUsernameNotFound = errors.New("username not found")
	ErrCannotFriendSelf = errors.New("cannot add yourself as a friend")
	ErrAlreadyFriends   = errors.New("already friends")
)

type UserFinder interface {
	GetUserByUsername(ctx context.Context, username string) (user.User, error)
}

type Service interface {
	GetFriends(ctx context.Context) ([]Friend, error)
	AddFriend(ctx context.Context, username string) (Friend, error)
}

type ServiceImpl struct {
	repo  Repository
	users UserFinder
}

func NewService(repo Repository, users UserFinder) *ServiceImpl {
	return &ServiceImpl{repo: repo, users: users}
}

func (s *ServiceImpl) GetFriends(ctx context.Context) ([]Friend, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetFriends(ctx, userId)
}

// AddFriend befriends the user with the given username. Friendship is one directional.
func (s *ServiceImpl) AddFriend(ctx context.Context, username string) (Friend, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Friend{}, err
	}
	username = strings.TrimSpace(username)
	if username == current.Username {
		return Friend{}, ErrCannotFriendSelf
	}

	target, err := s.users.GetUserByUsername(ctx, username)
	if errors.Is(err, user.ErrUserNotFound) {
		return Friend{}, ErrUsernameNotFound
	} else if err != nil {
		return Friend{}, err
	}

	if err := s.repo.AddFriendship(ctx, current.Id, target.Id); err != nil {
		return Friend{}, err
	}
	log.Debugf("user %d added friend %d", current.Id, target.Id)
	return Friend{Id: target.Id, Username: target.Username, DisplayName: target.DisplayName}, nil
}
