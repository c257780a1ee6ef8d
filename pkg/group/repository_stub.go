package group

import (
	"context"
	"sort"
	"sync"
)

type participation struct {
	groupId int
	userId  int
}

// RepositoryStub is an in-memory Repository. Usernames are filled from Usernames when set.
type RepositoryStub struct {
	mu             sync.RWMutex
	nextId         int
	groups         map[int]Group
	participations map[participation]ParticipationType
	Usernames      map[int]string
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		groups:         map[int]Group{},
		participations: map[participation]ParticipationType{},
		Usernames:      map[int]string{},
	}
}

func (r *RepositoryStub) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	r.mu.Lock()
	groups := make(map[int]Group, len(r.groups))
	for k, v := range r.groups {
		groups[k] = v
	}
	participations := make(map[participation]ParticipationType, len(r.participations))
	for k, v := range r.participations {
		participations[k] = v
	}
	nextId := r.nextId
	r.mu.Unlock()

	if err := fn(r); err != nil {
		r.mu.Lock()
		r.groups, r.participations, r.nextId = groups, participations, nextId
		r.mu.Unlock()
		return err
	}
	return nil
}

func (r *RepositoryStub) CreateGroup(ctx context.Context, group Group) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId++
	group.Id = r.nextId
	r.groups[group.Id] = group
	return group, nil
}

func (r *RepositoryStub) GetGroup(ctx context.Context, groupId int) (Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[groupId]
	if !ok {
		return Group{}, ErrGroupNotFound
	}
	return g, nil
}

func (r *RepositoryStub) GetOwnedGroups(ctx context.Context, ownerId int) ([]GroupWithParticipants, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]GroupWithParticipants, 0)
	for _, g := range r.groups {
		if g.OwnerId != ownerId {
			continue
		}
		gp := GroupWithParticipants{Group: g, Participants: []Participant{}}
		for p, t := range r.participations {
			if p.groupId == g.Id {
				gp.Participants = append(gp.Participants, Participant{UserId: p.userId, Username: r.Usernames[p.userId], Participation: t})
			}
		}
		sort.Slice(gp.Participants, func(i, j int) bool { return gp.Participants[i].UserId < gp.Participants[j].UserId })
		result = append(result, gp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (r *RepositoryStub) RenameGroup(ctx context.Context, groupId int, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[groupId]
	if !ok {
		return ErrGroupNotFound
	}
	g.Name = name
	r.groups[groupId] = g
	return nil
}

func (r *RepositoryStub) AddParticipant(ctx context.Context, groupId int, userId int, t ParticipationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participation{groupId: groupId, userId: userId}
	if _, ok := r.participations[key]; ok {
		return ErrAlreadyInvited
	}
	r.participations[key] = t
	return nil
}

func (r *RepositoryStub) RemoveParticipant(ctx context.Context, groupId int, userId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participation{groupId: groupId, userId: userId}
	if _, ok := r.participations[key]; !ok {
		return ErrParticipantNotFound
	}
	delete(r.participations, key)
	return nil
}

func (r *RepositoryStub) SetParticipation(ctx context.Context, groupId int, userId int, t ParticipationType) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := participation{groupId: groupId, userId: userId}
	if _, ok := r.participations[key]; !ok {
		return ErrInvitationNotFound
	}
	r.participations[key] = t
	return nil
}

func (r *RepositoryStub) GetInvitations(ctx context.Context, userId int) ([]Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Group, 0)
	for p, t := range r.participations {
		if p.userId == userId && t == NoResponse {
			result = append(result, r.groups[p.groupId])
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Id < result[j].Id })
	return result, nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextId = 0
	r.groups = map[int]Group{}
	r.participations = map[participation]ParticipationType{}
}
