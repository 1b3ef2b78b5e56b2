package service

import (
	"context"
	"errors"

	"videotube/internal/cache"
	"videotube/internal/logger"
	"videotube/internal/model"
	"videotube/internal/repository"
)

type SubscriptionService struct {
	subRepo  repository.SubscriptionRepository
	userRepo repository.UserRepository
	channels cache.ChannelCache
}

func NewSubscriptionService(
	subRepo repository.SubscriptionRepository,
	userRepo repository.UserRepository,
	channels cache.ChannelCache,
) *SubscriptionService {
	if channels == nil {
		channels = cache.NopChannelCache{}
	}
	return &SubscriptionService{
		subRepo:  subRepo,
		userRepo: userRepo,
		channels: channels,
	}
}

// Subscribe is idempotent: subscribing twice leaves a single subscription.
func (s *SubscriptionService) Subscribe(ctx context.Context, subscriberID int64, channelUsername string) (*model.SubscriptionStatus, error) {
	channel, err := s.resolveChannel(ctx, channelUsername)
	if err != nil {
		return nil, err
	}
	if channel.ID == subscriberID {
		return nil, model.ErrCannotSubscribeSelf
	}

	inserted, err := s.subRepo.Create(ctx, subscriberID, channel.ID)
	if err != nil {
		if errors.Is(err, model.ErrCannotSubscribeSelf) {
			return nil, model.ErrCannotSubscribeSelf
		}
		return nil, model.Internal("Failed to subscribe").Wrap(err)
	}

	if inserted {
		s.invalidate(ctx, subscriberID, channel.Username)
	}
	return &model.SubscriptionStatus{Channel: channel.Username, Subscribed: true}, nil
}

func (s *SubscriptionService) Unsubscribe(ctx context.Context, subscriberID int64, channelUsername string) (*model.SubscriptionStatus, error) {
	channel, err := s.resolveChannel(ctx, channelUsername)
	if err != nil {
		return nil, err
	}

	if err := s.subRepo.Delete(ctx, subscriberID, channel.ID); err != nil {
		if errors.Is(err, model.ErrNotSubscribed) {
			return nil, model.ErrNotSubscribed
		}
		return nil, model.Internal("Failed to unsubscribe").Wrap(err)
	}

	s.invalidate(ctx, subscriberID, channel.Username)
	return &model.SubscriptionStatus{Channel: channel.Username, Subscribed: false}, nil
}

func (s *SubscriptionService) resolveChannel(ctx context.Context, username string) (*model.User, error) {
	username = model.NormalizeIdentity(username)
	if username == "" {
		return nil, model.ErrUsernameRequired
	}

	channel, err := s.userRepo.FindByEmailOrUsername(ctx, "", username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrChannelNotFound
		}
		return nil, model.Internal("Failed to load channel").Wrap(err)
	}
	return channel, nil
}

// invalidate drops the cached profiles on both sides of the subscription,
// since one count changes on each.
func (s *SubscriptionService) invalidate(ctx context.Context, subscriberID int64, channelUsername string) {
	log := logger.FromContext(ctx)

	usernames := []string{channelUsername}
	if subscriber, err := s.userRepo.GetByID(ctx, subscriberID); err == nil {
		usernames = append(usernames, subscriber.Username)
	} else {
		log.Warn().Err(err).Int64("user_id", subscriberID).Msg("could not resolve subscriber for cache invalidation")
	}

	if err := s.channels.Invalidate(ctx, usernames...); err != nil {
		log.Warn().Err(err).Strs("channels", usernames).Msg("channel cache invalidation failed")
	}
}
