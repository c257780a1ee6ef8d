package group

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/pkg/user"
)

var (
	ErrGroupNotFound       = errors.New("group not found")
	ErrNotGroupOwner       = errors.New("user is not the owner of the group")
	ErrInvalidGroupName    = errors.New("invalid group name")
	ErrAlreadyInvited      = errors.New("user already invited to the group")
	ErrCannotInviteOwner   = errors.New("group owner cannot be invited to own group")
	ErrParticipantNotFound = errors.New("user is not a participant of the group")
	ErrInvitationNotFound  = errors.New("invitation not found")
)

// UserReader looks up users that are invited to groups.
type UserReader interface {
	GetUser(ctx context.Context, id int) (user.User, error)
}

type Service interface {
	GetGroup(ctx context.Context, groupId int) (Group, error)
	GetOwnedGroupsWithParticipants(ctx context.Context) ([]GroupWithParticipants, error)
	// CreateGroup creates a group owned by the current user and invites inviteeIds in the same transaction.
	CreateGroup(ctx context.Context, name string, inviteeIds []int) (Group, error)
	InviteToGroup(ctx context.Context, groupId int, userId int) error
	RenameGroup(ctx context.Context, groupId int, name string) error
	RemoveUserFromGroup(ctx context.Context, groupId int, userId int) error
	ReplyToInvitation(ctx context.Context, groupId int, accepted bool) error
	GetPendingInvitations(ctx context.Context) ([]Group, error)
}

type ServiceImpl struct {
	repo  Repository
	users UserReader
}

func NewService(repo Repository, users UserReader) *ServiceImpl {
	return &ServiceImpl{repo: repo, users: users}
}

func (s *ServiceImpl) GetGroup(ctx context.Context, groupId int) (Group, error) {
	return s.repo.GetGroup(ctx, groupId)
}

func (s *ServiceImpl) GetOwnedGroupsWithParticipants(ctx context.Context) ([]GroupWithParticipants, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetOwnedGroups(ctx, userId)
}

func (s *ServiceImpl) CreateGroup(ctx context.Context, name string, inviteeIds []int) (Group, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return Group{}, err
	}
	name, err = validateName(name)
	if err != nil {
		return Group{}, err
	}
	for _, inviteeId := range inviteeIds {
		if err := s.checkInvitee(ctx, current.Id, inviteeId); err != nil {
			return Group{}, err
		}
	}

	var created Group
	err = s.repo.WithTransaction(ctx, func(repo Repository) error {
		g, err := repo.CreateGroup(ctx, Group{Name: name, OwnerId: current.Id, OwnerUsername: current.Username})
		if err != nil {
			return err
		}
		for _, inviteeId := range inviteeIds {
			if err := repo.AddParticipant(ctx, g.Id, inviteeId, NoResponse); err != nil && !errors.Is(err, ErrAlreadyInvited) {
				return err
			}
		}
		created = g
		return nil
	})
	if err != nil {
		return Group{}, err
	}
	created.OwnerUsername = current.Username
	log.Debugf("user %d created group %d with %d invitations", current.Id, created.Id, len(inviteeIds))
	return created, nil
}

func (s *ServiceImpl) InviteToGroup(ctx context.Context, groupId int, userId int) error {
	g, err := s.ownedGroup(ctx, groupId)
	if err != nil {
		return err
	}
	if err := s.checkInvitee(ctx, g.OwnerId, userId); err != nil {
		return err
	}
	return s.repo.AddParticipant(ctx, groupId, userId, NoResponse)
}

func (s *ServiceImpl) RenameGroup(ctx context.Context, groupId int, name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	if _, err := s.ownedGroup(ctx, groupId); err != nil {
		return err
	}
	return s.repo.RenameGroup(ctx, groupId, name)
}

func (s *ServiceImpl) RemoveUserFromGroup(ctx context.Context, groupId int, userId int) error {
	if _, err := s.ownedGroup(ctx, groupId); err != nil {
		return err
	}
	return s.repo.RemoveParticipant(ctx, groupId, userId)
}

func (s *ServiceImpl) ReplyToInvitation(ctx context.Context, groupId int, accepted bool) error {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return err
	}
	participation := Declined
	if accepted {
		participation = Accepted
	}
	return s.repo.SetParticipation(ctx, groupId, userId, participation)
}

func (s *ServiceImpl) GetPendingInvitations(ctx context.Context) ([]Group, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetInvitations(ctx, userId)
}

// ownedGroup loads the group and verifies the current user owns it.
func (s *ServiceImpl) ownedGroup(ctx context.Context, groupId int) (Group, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Group{}, err
	}
	g, err := s.repo.GetGroup(ctx, groupId)
	if err != nil {
		return Group{}, err
	}
	if g.OwnerId != userId {
		return Group{}, ErrNotGroupOwner
	}
	return g, nil
}

func (s *ServiceImpl) checkInvitee(ctx context.Context, ownerId int, inviteeId int) error {
	if inviteeId == ownerId {
		return ErrCannotInviteOwner
	}
	if _, err := s.users.GetUser(ctx, inviteeId); err != nil {
		return fmt.Errorf("invitee %d: %w", inviteeId, err)
	}
	return nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return "", ErrInvalidGroupName
	}
	return name, nil
}
