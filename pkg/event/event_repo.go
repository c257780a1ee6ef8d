package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/database"
)

type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo Repository) error) error
	StoreEvent(ctx context.Context, event Event) (Event, error)
	// GetEventsWithUser returns events owned by the user and events of groups the user accepted.
	GetEventsWithUser(ctx context.Context, userId int) ([]Event, error)
	// GetEventsForPeriod narrows GetEventsWithUser to one-off events overlapping [from, to]
	// and weekly events that started before to.
	GetEventsForPeriod(ctx context.Context, userId int, from, to time.Time) ([]Event, error)
}

type RepositoryImpl struct {
	db database.Beginner
	tx pgx.Tx
}

func NewEventRepo(db database.Beginner) *RepositoryImpl {
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

func (r *RepositoryImpl) StoreEvent(ctx context.Context, event Event) (Event, error) {
	query := `INSERT INTO events (owner_id, group_id, title, visibility, start_time, duration_ms, recurrence)
			  VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var groupId *int
	if event.GroupId != 0 {
		groupId = &event.GroupId
	}
	err := r.getQueryer().QueryRow(ctx, query,
		event.OwnerId,
		groupId,
		event.Title,
		event.Visibility,
		event.StartTime.UnixMilli(),
		event.Duration.Milliseconds(),
		event.Recurrence,
	).Scan(&event.Id)
	if err != nil {
		log.Errorf("failed to store event: %v", err)
		return Event{}, fmt.Errorf("failed to store event: %w", err)
	}
	return event, nil
}

const selectEvents = `SELECT e.id, e.owner_id, e.group_id, e.title, e.visibility, e.start_time, e.duration_ms, e.recurrence,
				ARRAY(SELECT u.username
					  FROM groups_participants gp
							   JOIN users u ON u.id = gp.participant_id
					  WHERE gp.group_id = e.group_id
						AND gp.participation_type = 'Accepted'
					  ORDER BY u.username)
			  FROM events e
			  WHERE (e.owner_id = $1 OR EXISTS (SELECT 1
												FROM groups_participants gp
												WHERE gp.group_id = e.group_id
												  AND gp.participant_id = $1
												  AND gp.participation_type = 'Accepted'))`

func (r *RepositoryImpl) GetEventsWithUser(ctx context.Context, userId int) ([]Event, error) {
	return r.queryEvents(ctx, selectEvents+` ORDER BY e.start_time, e.id`, userId)
}

func (r *RepositoryImpl) GetEventsForPeriod(ctx context.Context, userId int, from, to time.Time) ([]Event, error) {
	query := selectEvents + `
				AND ((e.recurrence = 'Once' AND e.start_time <= $3 AND e.start_time + e.duration_ms >= $2)
				  OR (e.recurrence = 'Weekly' AND e.start_time <= $3))
			  ORDER BY e.start_time, e.id`
	return r.queryEvents(ctx, query, userId, from.UnixMilli(), to.UnixMilli())
}

func (r *RepositoryImpl) queryEvents(ctx context.Context, query string, args ...any) ([]Event, error) {
	rows, err := r.getQueryer().Query(ctx, query, args...)
	if err != nil {
		log.Errorf("failed to query events: %v", err)
		return nil, err
	}
	defer rows.Close()

	events := make([]Event, 0)
	for rows.Next() {
		var event Event
		var groupId *int
		var startMs, durationMs int64
		err := rows.Scan(
			&event.Id,
			&event.OwnerId,
			&groupId,
			&event.Title,
			&event.Visibility,
			&startMs,
			&durationMs,
			&event.Recurrence,
			&event.Participants,
		)
		if err != nil {
			log.Errorf("failed to scan event: %v", err)
			return nil, err
		}
		if groupId != nil {
			event.GroupId = *groupId
		}
		event.StartTime = time.UnixMilli(startMs)
		event.Duration = time.Duration(durationMs) * time.Millisecond
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		log.Errorf("error iterating over rows: %v", err)
		return nil, err
	}
	return events, nil
}
