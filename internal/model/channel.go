package model

import "errors"

// ChannelProfile is a user viewed as the target of subscriptions.
// IsSubscribed depends on the viewer and is never cached.
type ChannelProfile struct {
	ID                       int64  `db:"id" json:"id"`
	Username                 string `db:"username" json:"username"`
	FullName                 string `db:"full_name" json:"fullName"`
	Email                    string `db:"email" json:"email"`
	AvatarURL                string `db:"avatar_url" json:"avatar"`
	CoverImageURL            string `db:"cover_image_url" json:"coverImage"`
	SubscribersCount         int64  `db:"subscribers_count" json:"subscribersCount"`
	ChannelSubscribedToCount int64  `db:"channel_subscribed_to_count" json:"channelSubscribedToCount"`
	IsSubscribed             bool   `db:"is_subscribed" json:"isSubscribed"`
}

// SubscriptionStatus is returned by subscribe/unsubscribe.
type SubscriptionStatus struct {
	Channel    string `json:"channel"`
	Subscribed bool   `json:"subscribed"`
}

// WatchHistoryResponse lists watched video ids, most recent last.
type WatchHistoryResponse struct {
	VideoIDs []int64 `json:"videoIds"`
}

var (
	ErrUsernameRequired    = BadRequest("Username is missing")
	ErrChannelNotFound     = NotFound("Channel does not exist")
	ErrCannotSubscribeSelf = BadRequest("Cannot subscribe to your own channel")
	ErrNotSubscribed       = NotFound("Not subscribed to this channel")
)

// ErrCacheMiss is returned by channel caches when no entry exists.
var ErrCacheMiss = errors.New("cache miss")
