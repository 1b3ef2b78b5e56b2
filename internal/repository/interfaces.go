package repository

import (
	"context"

	"videotube/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// FindByEmailOrUsername matches either identifier; empty identifiers are ignored.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Update(ctx context.Context, id int64, update model.UserUpdate) (*model.User, error)
	SetRefreshToken(ctx context.Context, id int64, token string) error
	// ClearRefreshToken is a no-op when the user does not exist.
	ClearRefreshToken(ctx context.Context, id int64) error
	GetChannelProfile(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error)
}

type SubscriptionRepository interface {
	Create(ctx context.Context, subscriberID, channelID int64) (bool, error)
	Delete(ctx context.Context, subscriberID, channelID int64) error
	Exists(ctx context.Context, subscriberID, channelID int64) (bool, error)
}
