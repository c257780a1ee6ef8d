package friend

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/database"
)

type Repository interface {
	GetFriends(ctx context.Context, userId int) ([]Friend, error)
	// AddFriendship records that ownerId befriended friendId. It returns ErrAlreadyFriends when the row exists.
	AddFriendship(ctx context.Context, ownerId int, friendId int) error
}

type RepositoryImpl struct {
	db database.Querier
}

func NewRepository(db database.Querier) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) GetFriends(ctx context.Context, userId int) ([]Friend, error) {
	query := `SELECT u.id, u.username, u.display_name
			  FROM friendships f JOIN users u ON u.id = f.friend_id
			  WHERE f.owner_id = $1
			  ORDER BY u.username`
	rows, err := r.db.Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to query friends: %v", err)
		return nil, err
	}
	defer rows.Close()

	friends := make([]Friend, 0)
	for rows.Next() {
		var f Friend
		if err := rows.Scan(&f.Id, &f.Username, &f.DisplayName); err != nil {
			log.Errorf("failed to scan friend: %v", err)
			return nil, err
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

func (r *RepositoryImpl) AddFriendship(ctx context.Context, ownerId int, friendId int) error {
	_, err := r.db.Exec(ctx, `INSERT INTO friendships (owner_id, friend_id) VALUES ($1, $2)`, ownerId, friendId)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyFriends
	}
	if err != nil {
		return fmt.Errorf("failed to add friendship: %w", err)
	}
	return nil
}
