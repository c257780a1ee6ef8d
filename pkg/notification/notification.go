package notification

import (
	"context"

	"github.com/socialcal/socialcal/pkg/group"
)

type Kind string

// Invitation is raised for every group invitation the user has not answered.
const Invitation Kind = "Invitation"

type Notification struct {
	Kind  Kind
	Group group.Group
}

type InvitationSource interface {
	GetPendingInvitations(ctx context.Context) ([]group.Group, error)
}

type Service interface {
	GetNotifications(ctx context.Context) ([]Notification, error)
}

type ServiceImpl struct {
	invitations InvitationSource
}

func NewService(invitations InvitationSource) *ServiceImpl {
	return &ServiceImpl{invitations: invitations}
}

func (s *ServiceImpl) GetNotifications(ctx context.Context) ([]Notification, error) {
	groups, err := s.invitations.GetPendingInvitations(ctx)
	if err != nil {
		return nil, err
	}
	notifications := make([]Notification, 0, len(groups))
	for _, g := range groups {
		notifications = append(notifications, Notification{Kind: Invitation, Group: g})
	}
	return notifications, nil
}
