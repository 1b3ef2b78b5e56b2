package service

import (
	"context"
	"errors"
	"strings"

	"videotube/internal/cache"
	"videotube/internal/logger"
	"videotube/internal/model"
	"videotube/internal/repository"
)

// UserService handles business logic for profile reads and mutations.
type UserService struct {
	repo     repository.UserRepository
	subRepo  repository.SubscriptionRepository
	uploader MediaUploader
	channels cache.ChannelCache
}

func NewUserService(repo repository.UserRepository, subRepo repository.SubscriptionRepository, uploader MediaUploader, channels cache.ChannelCache) *UserService {
	if channels == nil {
		channels = cache.NopChannelCache{}
	}
	return &UserService{
		repo:     repo,
		subRepo:  subRepo,
		uploader: uploader,
		channels: channels,
	}
}

// GetByID retrieves a user by ID.
func (s *UserService) GetByID(ctx context.Context, id int64) (*model.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, model.Internal("Failed to get user").Wrap(err)
	}
	return user, nil
}

// UpdateAccountDetails replaces full name and email.
func (s *UserService) UpdateAccountDetails(ctx context.Context, id int64, req *model.UpdateAccountRequest) (*model.User, error) {
	fullName := strings.TrimSpace(req.FullName)
	email := model.NormalizeIdentity(req.Email)
	if fullName == "" || email == "" {
		return nil, model.BadRequest("Full name and email are required")
	}

	user, err := s.repo.Update(ctx, id, model.UserUpdate{FullName: &fullName, Email: &email})
	if err != nil {
		return nil, s.updateError(err)
	}

	s.invalidate(ctx, user.Username)
	return user, nil
}

// UpdateAvatar uploads a new avatar and overwrites the stored URL. The
// previous asset is left at the provider.
func (s *UserService) UpdateAvatar(ctx context.Context, id int64, localPath string) (*model.User, error) {
	if localPath == "" {
		return nil, model.ErrAvatarRequired
	}
	url, err := s.upload(ctx, localPath, model.MediaAvatar)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id, model.UserUpdate{AvatarURL: &url})
	if err != nil {
		return nil, s.updateError(err)
	}

	s.invalidate(ctx, user.Username)
	return user, nil
}

// UpdateCoverImage uploads a new cover image and overwrites the stored URL.
func (s *UserService) UpdateCoverImage(ctx context.Context, id int64, localPath string) (*model.User, error) {
	if localPath == "" {
		return nil, model.ErrCoverImageRequired
	}
	url, err := s.upload(ctx, localPath, model.MediaCoverImage)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.Update(ctx, id, model.UserUpdate{CoverImageURL: &url})
	if err != nil {
		return nil, s.updateError(err)
	}

	s.invalidate(ctx, user.Username)
	return user, nil
}

// GetChannelProfile returns the channel with its subscription counts.
// The viewer-independent part is served from the cache when present;
// IsSubscribed is always computed for the current viewer.
func (s *UserService) GetChannelProfile(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error) {
	log := logger.FromContext(ctx)

	username = model.NormalizeIdentity(username)
	if username == "" {
		return nil, model.ErrUsernameRequired
	}

	cached, err := s.channels.Get(ctx, username)
	if err == nil {
		profile := *cached
		profile.IsSubscribed = false
		if viewerID != nil && *viewerID != profile.ID {
			subscribed, err := s.subRepo.Exists(ctx, *viewerID, profile.ID)
			if err != nil {
				return nil, model.Internal("Failed to get channel profile").Wrap(err)
			}
			profile.IsSubscribed = subscribed
		}
		return &profile, nil
	}
	if !errors.Is(err, model.ErrCacheMiss) {
		log.Warn().Err(err).Str("channel", username).Msg("channel cache read failed")
	}

	profile, err := s.repo.GetChannelProfile(ctx, username, viewerID)
	if err != nil {
		if errors.Is(err, model.ErrChannelNotFound) {
			return nil, model.ErrChannelNotFound
		}
		return nil, model.Internal("Failed to get channel profile").Wrap(err)
	}

	if err := s.channels.Set(ctx, profile); err != nil {
		log.Warn().Err(err).Str("channel", username).Msg("channel cache write failed")
	}
	return profile, nil
}

// GetWatchHistory returns the ids of watched videos in stored order.
func (s *UserService) GetWatchHistory(ctx context.Context, id int64) (*model.WatchHistoryResponse, error) {
	user, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, len(user.WatchHistory))
	copy(ids, user.WatchHistory)
	return &model.WatchHistoryResponse{VideoIDs: ids}, nil
}

func (s *UserService) upload(ctx context.Context, localPath string, kind model.MediaKind) (string, error) {
	res, err := s.uploader.Upload(ctx, localPath, kind)
	if err != nil || res == nil || res.URL == "" {
		logger.FromContext(ctx).Err(err).Str("kind", string(kind)).Msg("media upload failed")
		return "", uploadFailure(err, model.ErrMediaUploadFailed)
	}
	return res.URL, nil
}

func (s *UserService) updateError(err error) error {
	switch {
	case errors.Is(err, model.ErrUserNotFound):
		return model.ErrUserNotFound
	case errors.Is(err, model.ErrEmailTaken):
		return model.ErrEmailTaken
	}
	return model.Internal("Failed to update user").Wrap(err)
}

func (s *UserService) invalidate(ctx context.Context, usernames ...string) {
	if err := s.channels.Invalidate(ctx, usernames...); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Strs("channels", usernames).Msg("channel cache invalidation failed")
	}
}
