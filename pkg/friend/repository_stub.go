package friend

import (
	"context"
	"sort"
	"sync"
)

type RepositoryStub struct {
	mu      sync.RWMutex
	friends map[int][]Friend
	// Directory resolves friend ids to their details.
	Directory map[int]Friend
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{friends: map[int][]Friend{}, Directory: map[int]Friend{}}
}

func (r *RepositoryStub) GetFriends(ctx context.Context, userId int) ([]Friend, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	friends := append([]Friend{}, r.friends[userId]...)
	sort.Slice(friends, func(i, j int) bool { return friends[i].Username < friends[j].Username })
	return friends, nil
}

func (r *RepositoryStub) AddFriendship(ctx context.Context, ownerId int, friendId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.friends[ownerId] {
		if f.Id == friendId {
			return ErrAlreadyFriends
		}
	}
	friend, ok := r.Directory[friendId]
	if !ok {
		friend = Friend{Id: friendId}
	}
	r.friends[ownerId] = append(r.friends[ownerId], friend)
	return nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.friends = map[int][]Friend{}
}
