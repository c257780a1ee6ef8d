package app

import (
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"github.com/socialcal/socialcal/internal/config"
	"github.com/socialcal/socialcal/internal/utils"
	"github.com/socialcal/socialcal/pkg/event"
	"github.com/socialcal/socialcal/pkg/friend"
	"github.com/socialcal/socialcal/pkg/google"
	"github.com/socialcal/socialcal/pkg/group"
	"github.com/socialcal/socialcal/pkg/notification"
	"github.com/socialcal/socialcal/pkg/timetable"
	"github.com/socialcal/socialcal/pkg/user"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	UserService user.Service
	UserHandler *user.Handler

	FriendService friend.Service
	FriendHandler *friend.Handler

	GroupService group.Service
	GroupHandler *group.Handler

	NotificationService notification.Service
	NotificationHandler *notification.Handler

	EventService event.EventService
	EventHandler *event.EventHandler

	TimetableService timetable.Service
	TimetableHandler *timetable.Handler

	// Google integration is nil when no OAuth client is configured.
	GoogleAuth    *google.GoogleAuth
	GoogleService google.Service
	GoogleHandler *google.Handler

	Clock utils.Clock
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}

	deps.UserService = user.NewUserService(user.NewUserRepo(db))
	deps.UserHandler = user.NewHandler(deps.UserService)

	deps.FriendService = friend.NewService(friend.NewRepository(db), deps.UserService)
	deps.FriendHandler = friend.NewHandler(deps.FriendService)

	deps.GroupService = group.NewService(group.NewRepository(db), deps.UserService)
	deps.GroupHandler = group.NewHandler(deps.GroupService)

	deps.NotificationService = notification.NewService(deps.GroupService)
	deps.NotificationHandler = notification.NewHandler(deps.NotificationService)

	deps.EventService = event.NewEventService(event.NewEventRepo(db), deps.GroupService)
	deps.EventHandler = event.NewEventHandler(deps.EventService, deps.Clock)

	deps.TimetableService = timetable.NewService(deps.EventService, deps.Clock)
	deps.TimetableHandler = timetable.NewHandler(deps.TimetableService)

	if cfg.Google.Enabled() {
		deps.GoogleAuth = google.NewGoogleAuth(google.NewTokenRepository(db), google.NewOAuthConfig(cfg))
		deps.GoogleService = google.NewService(deps.GoogleAuth)
		deps.GoogleHandler = google.NewHandler(deps.GoogleService, deps.EventService)
	} else {
		log.Info("Google client id or secret not configured, Google Calendar import disabled")
	}

	return deps
}
