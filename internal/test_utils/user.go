package test_utils

import (
	"context"

	"github.com/socialcal/socialcal/pkg/user"
)

// TestUser is the identity most handler and service tests run as.
var TestUser = user.User{
	Id:          123,
	Uid:         "test-user-uid",
	Username:    "test_user",
	DisplayName: "Test User",
	Settings: user.Settings{
		Timezone: "Europe/Warsaw",
	},
}

// WithTestUser returns ctx carrying TestUser as the current user.
func WithTestUser(ctx context.Context) context.Context {
	return user.WithUser(ctx, TestUser)
}
