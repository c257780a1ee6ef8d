package group

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/database"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	CreateGroup(ctx context.Context, group Group) (Group, error)
	GetGroup(ctx context.Context, groupId int) (Group, error)
	GetOwnedGroups(ctx context.Context, ownerId int) ([]GroupWithParticipants, error)
	RenameGroup(ctx context.Context, groupId int, name string) error
	AddParticipant(ctx context.Context, groupId int, userId int, participation ParticipationType) error
	RemoveParticipant(ctx context.Context, groupId int, userId int) error
	SetParticipation(ctx context.Context, groupId int, userId int, participation ParticipationType) error
	// GetInvitations returns groups in which the user has not answered the invitation yet.
	GetInvitations(ctx context.Context, userId int) ([]Group, error)
}

type RepositoryImpl struct {
	db database.Beginner
	tx pgx.Tx
}

func NewRepository(db database.Beginner) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) getQueryer() database.Querier {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *RepositoryImpl) WithTransaction(ctx context.Context, fn func(repo Repository) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			log.Errorf("rollback error: %v", rbErr)
		}
	}()

	if err := fn(&RepositoryImpl{db: r.db, tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) CreateGroup(ctx context.Context, group Group) (Group, error) {
	query := `INSERT INTO groups (name, owner_id, is_special) VALUES ($1, $2, $3) RETURNING id`
	err := r.getQueryer().QueryRow(ctx, query, group.Name, group.OwnerId, group.IsSpecial).Scan(&group.Id)
	if err != nil {
		log.Errorf("failed to create group: %v", err)
		return Group{}, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

func (r *RepositoryImpl) GetGroup(ctx context.Context, groupId int) (Group, error) {
	query := `SELECT g.id, g.name, g.owner_id, u.username, g.is_special
			  FROM groups g JOIN users u ON u.id = g.owner_id
			  WHERE g.id = $1`
	var group Group
	err := r.getQueryer().QueryRow(ctx, query, groupId).
		Scan(&group.Id, &group.Name, &group.OwnerId, &group.OwnerUsername, &group.IsSpecial)
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrGroupNotFound
	} else if err != nil {
		log.Errorf("failed to get group %d: %v", groupId, err)
		return Group{}, err
	}
	return group, nil
}

func (r *RepositoryImpl) GetOwnedGroups(ctx context.Context, ownerId int) ([]GroupWithParticipants, error) {
	query := `SELECT g.id, g.name, g.owner_id, o.username, g.is_special, p.participant_id, u.username, p.participation_type
			  FROM groups g
					   JOIN users o ON o.id = g.owner_id
					   LEFT JOIN groups_participants p ON p.group_id = g.id
					   LEFT JOIN users u ON u.id = p.participant_id
			  WHERE g.owner_id = $1
			  ORDER BY g.id, u.username`
	rows, err := r.getQueryer().Query(ctx, query, ownerId)
	if err != nil {
		log.Errorf("failed to query owned groups: %v", err)
		return nil, err
	}
	defer rows.Close()

	groups := make([]GroupWithParticipants, 0)
	for rows.Next() {
		var g Group
		var participantId *int
		var username, participation *string
		if err := rows.Scan(&g.Id, &g.Name, &g.OwnerId, &g.OwnerUsername, &g.IsSpecial, &participantId, &username, &participation); err != nil {
			log.Errorf("failed to scan group: %v", err)
			return nil, err
		}
		if len(groups) == 0 || groups[len(groups)-1].Id != g.Id {
			groups = append(groups, GroupWithParticipants{Group: g, Participants: []Participant{}})
		}
		if participantId != nil {
			last := &groups[len(groups)-1]
			last.Participants = append(last.Participants, Participant{
				UserId:        *participantId,
				Username:      *username,
				Participation: ParticipationType(*participation),
			})
		}
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over rows: %v", err)
		return nil, err
	}
	return groups, nil
}

func (r *RepositoryImpl) RenameGroup(ctx context.Context, groupId int, name string) error {
	result, err := r.getQueryer().Exec(ctx, `UPDATE groups SET name = $1 WHERE id = $2`, name, groupId)
	if err != nil {
		return fmt.Errorf("failed to rename group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *RepositoryImpl) AddParticipant(ctx context.Context, groupId int, userId int, participation ParticipationType) error {
	query := `INSERT INTO groups_participants (group_id, participant_id, participation_type) VALUES ($1, $2, $3)`
	_, err := r.getQueryer().Exec(ctx, query, groupId, userId, participation)
	if database.IsUniqueViolation(err) {
		return ErrAlreadyInvited
	}
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

func (r *RepositoryImpl) RemoveParticipant(ctx context.Context, groupId int, userId int) error {
	query := `DELETE FROM groups_participants WHERE group_id = $1 AND participant_id = $2`
	result, err := r.getQueryer().Exec(ctx, query, groupId, userId)
	if err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrParticipantNotFound
	}
	return nil
}

func (r *RepositoryImpl) SetParticipation(ctx context.Context, groupId int, userId int, participation ParticipationType) error {
	query := `UPDATE groups_participants SET participation_type = $1 WHERE group_id = $2 AND participant_id = $3`
	result, err := r.getQueryer().Exec(ctx, query, participation, groupId, userId)
	if err != nil {
		return fmt.Errorf("failed to update participation: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrInvitationNotFound
	}
	return nil
}

func (r *RepositoryImpl) GetInvitations(ctx context.Context, userId int) ([]Group, error) {
	query := `SELECT g.id, g.name, g.owner_id, o.username, g.is_special
			  FROM groups_participants p
					   JOIN groups g ON g.id = p.group_id
					   JOIN users o ON o.id = g.owner_id
			  WHERE p.participant_id = $1
				AND p.participation_type = 'NoResponse'
			  ORDER BY g.id`
	rows, err := r.getQueryer().Query(ctx, query, userId)
	if err != nil {
		log.Errorf("failed to query invitations: %v", err)
		return nil, err
	}
	defer rows.Close()

	groups := make([]Group, 0)
	for rows.Next() {
		var g Group
		if err := rows.Scan(&g.Id, &g.Name, &g.OwnerId, &g.OwnerUsername, &g.IsSpecial); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
