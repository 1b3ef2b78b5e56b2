package service

import (
	"context"
	"errors"
	"sort"
	"testing"

	"videotube/internal/model"
)

func newSubscriptionFixture() (*channelFixture, *SubscriptionService) {
	f := newChannelFixture()
	return f, NewSubscriptionService(f.subs, f.users, f.cache)
}

func TestSubscriptionService_Subscribe(t *testing.T) {
	f, svc := newSubscriptionFixture()
	f.cache.entries["alice"] = model.ChannelProfile{ID: 1, Username: "alice"}
	f.cache.entries["bob"] = model.ChannelProfile{ID: 2, Username: "bob"}

	status, err := svc.Subscribe(context.Background(), 2, "Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Channel != "alice" || !status.Subscribed {
		t.Errorf("status = %+v", status)
	}

	invalidated := append([]string(nil), f.cache.invalidated...)
	sort.Strings(invalidated)
	if len(invalidated) != 2 || invalidated[0] != "alice" || invalidated[1] != "bob" {
		t.Errorf("invalidated = %v, want [alice bob]", invalidated)
	}

	// Subscribing again keeps a single row and skips invalidation.
	if _, err := svc.Subscribe(context.Background(), 2, "alice"); err != nil {
		t.Fatalf("second subscribe: %v", err)
	}
	if n := len(f.subs.all()); n != 1 {
		t.Errorf("subscriptions = %d, want 1", n)
	}
	if len(f.cache.invalidated) != 2 {
		t.Errorf("duplicate subscribe should not invalidate, got %v", f.cache.invalidated)
	}

	profile, err := f.svc.GetChannelProfile(context.Background(), "alice", int64Ptr(2))
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.SubscribersCount != 1 || !profile.IsSubscribed {
		t.Errorf("profile = %+v", profile)
	}
}

func TestSubscriptionService_Subscribe_Errors(t *testing.T) {
	tests := []struct {
		name       string
		subscriber int64
		channel    string
		wantErr    error
	}{
		{"own channel", 1, "alice", model.ErrCannotSubscribeSelf},
		{"unknown channel", 1, "nobody", model.ErrChannelNotFound},
		{"empty channel", 1, " ", model.ErrUsernameRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, svc := newSubscriptionFixture()

			status, err := svc.Subscribe(context.Background(), tt.subscriber, tt.channel)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
			if status != nil {
				t.Error("expected nil status")
			}
			if len(f.subs.all()) != 0 {
				t.Error("no subscription should be stored")
			}
		})
	}
}

func TestSubscriptionService_Unsubscribe(t *testing.T) {
	f, svc := newSubscriptionFixture()
	f.subscribe(t, 3, 2)

	status, err := svc.Unsubscribe(context.Background(), 3, "bob")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Subscribed {
		t.Error("status should report unsubscribed")
	}
	if len(f.subs.all()) != 0 {
		t.Error("subscription should be removed")
	}

	_, err = svc.Unsubscribe(context.Background(), 3, "bob")
	if !errors.Is(err, model.ErrNotSubscribed) {
		t.Errorf("error = %v, want %v", err, model.ErrNotSubscribed)
	}
}
