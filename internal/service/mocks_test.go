package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"videotube/internal/model"
)

// =============================================================================
// MOCK REPOSITORIES
// =============================================================================
//
// Each mock keeps a small in-memory store so workflow tests can run several
// operations against shared state. Tests that need a specific failure set
// the matching *Fn field, which takes precedence over the store.

type mockUserRepository struct {
	mu     sync.Mutex
	users  map[int64]*model.User
	nextID int64
	subs   *mockSubscriptionRepository

	createFn            func(ctx context.Context, user *model.User) error
	getByIDFn           func(ctx context.Context, id int64) (*model.User, error)
	setRefreshTokenFn   func(ctx context.Context, id int64, token string) error
	existsFn            func(ctx context.Context, email, username string) (bool, error)
	getChannelProfileFn func(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error)

	createCalls  int
	updateCalls  int
	profileCalls int
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{users: make(map[int64]*model.User), nextID: 1}
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	m.createCalls++
	m.mu.Unlock()
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email {
			return model.ErrUserExists
		}
	}
	user.ID = m.nextID
	m.nextID++
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	out := *u
	return &out, nil
}

func (m *mockUserRepository) FindByEmailOrUsername(ctx context.Context, email, username string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.sortedLocked() {
		if (email != "" && u.Email == email) || (username != "" && u.Username == username) {
			out := *u
			return &out, nil
		}
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, email, username)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockUserRepository) Update(ctx context.Context, id int64, update model.UserUpdate) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updateCalls++

	u, ok := m.users[id]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	if update.Email != nil {
		for _, other := range m.users {
			if other.ID != id && other.Email == *update.Email {
				return nil, model.ErrEmailTaken
			}
		}
		u.Email = *update.Email
	}
	if update.FullName != nil {
		u.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		u.AvatarURL = *update.AvatarURL
	}
	if update.CoverImageURL != nil {
		u.CoverImageURL = *update.CoverImageURL
	}
	if update.PasswordHash != nil {
		u.PasswordHash = *update.PasswordHash
	}
	u.UpdatedAt = time.Now()
	out := *u
	return &out, nil
}

func (m *mockUserRepository) SetRefreshToken(ctx context.Context, id int64, token string) error {
	if m.setRefreshTokenFn != nil {
		return m.setRefreshTokenFn(ctx, id, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	u.RefreshToken = &token
	return nil
}

func (m *mockUserRepository) ClearRefreshToken(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.RefreshToken = nil
	}
	return nil
}

func (m *mockUserRepository) GetChannelProfile(ctx context.Context, username string, viewerID *int64) (*model.ChannelProfile, error) {
	m.mu.Lock()
	m.profileCalls++
	m.mu.Unlock()
	if m.getChannelProfileFn != nil {
		return m.getChannelProfileFn(ctx, username, viewerID)
	}

	channel, err := m.FindByEmailOrUsername(ctx, "", username)
	if err != nil {
		return nil, model.ErrChannelNotFound
	}

	p := &model.ChannelProfile{
		ID:            channel.ID,
		Username:      channel.Username,
		FullName:      channel.FullName,
		Email:         channel.Email,
		AvatarURL:     channel.AvatarURL,
		CoverImageURL: channel.CoverImageURL,
	}
	if m.subs != nil {
		for _, s := range m.subs.all() {
			if s.channel == channel.ID {
				p.SubscribersCount++
				if viewerID != nil && s.subscriber == *viewerID {
					p.IsSubscribed = true
				}
			}
			if s.subscriber == channel.ID {
				p.ChannelSubscribedToCount++
			}
		}
	}
	return p, nil
}

// put stores a user directly, bypassing Create.
func (m *mockUserRepository) put(u *model.User) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		u.ID = m.nextID
	}
	if u.ID >= m.nextID {
		m.nextID = u.ID + 1
	}
	stored := *u
	m.users[u.ID] = &stored
	return u
}

func (m *mockUserRepository) remove(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
}

func (m *mockUserRepository) stored(id int64) *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil
	}
	out := *u
	return &out
}

func (m *mockUserRepository) sortedLocked() []*model.User {
	out := make([]*model.User, 0, len(m.users))
	for _, u := range m.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type subscriptionKey struct {
	subscriber, channel int64
}

type mockSubscriptionRepository struct {
	mu   sync.Mutex
	rows map[subscriptionKey]time.Time

	existsFn func(ctx context.Context, subscriberID, channelID int64) (bool, error)

	existsCalls int
}

func newMockSubscriptionRepository() *mockSubscriptionRepository {
	return &mockSubscriptionRepository{rows: make(map[subscriptionKey]time.Time)}
}

func (m *mockSubscriptionRepository) Create(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if subscriberID == channelID {
		return false, model.ErrCannotSubscribeSelf
	}
	key := subscriptionKey{subscriberID, channelID}
	if _, ok := m.rows[key]; ok {
		return false, nil
	}
	m.rows[key] = time.Now()
	return true, nil
}

func (m *mockSubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := subscriptionKey{subscriberID, channelID}
	if _, ok := m.rows[key]; !ok {
		return model.ErrNotSubscribed
	}
	delete(m.rows, key)
	return nil
}

func (m *mockSubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID int64) (bool, error) {
	m.mu.Lock()
	m.existsCalls++
	m.mu.Unlock()
	if m.existsFn != nil {
		return m.existsFn(ctx, subscriberID, channelID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rows[subscriptionKey{subscriberID, channelID}]
	return ok, nil
}

func (m *mockSubscriptionRepository) all() []subscriptionKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]subscriptionKey, 0, len(m.rows))
	for k := range m.rows {
		out = append(out, k)
	}
	return out
}

// =============================================================================
// MOCK UPLOADER AND CACHE
// =============================================================================

type uploadCall struct {
	Path string
	Kind model.MediaKind
}

type mockUploader struct {
	uploadFn func(ctx context.Context, localPath string, kind model.MediaKind) (*model.UploadResult, error)
	calls    []uploadCall
}

func (m *mockUploader) Upload(ctx context.Context, localPath string, kind model.MediaKind) (*model.UploadResult, error) {
	m.calls = append(m.calls, uploadCall{Path: localPath, Kind: kind})
	if m.uploadFn != nil {
		return m.uploadFn(ctx, localPath, kind)
	}
	key := fmt.Sprintf("%s/%d.jpg", kind, len(m.calls))
	return &model.UploadResult{URL: "https://cdn.example.com/" + key, Key: key}, nil
}

type mockChannelCache struct {
	entries     map[string]model.ChannelProfile
	invalidated []string
	getErr      error
}

func newMockChannelCache() *mockChannelCache {
	return &mockChannelCache{entries: make(map[string]model.ChannelProfile)}
}

func (m *mockChannelCache) Get(ctx context.Context, username string) (*model.ChannelProfile, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.entries[username]
	if !ok {
		return nil, model.ErrCacheMiss
	}
	return &p, nil
}

func (m *mockChannelCache) Set(ctx context.Context, profile *model.ChannelProfile) error {
	stored := *profile
	stored.IsSubscribed = false
	m.entries[profile.Username] = stored
	return nil
}

func (m *mockChannelCache) Invalidate(ctx context.Context, usernames ...string) error {
	for _, u := range usernames {
		delete(m.entries, u)
		m.invalidated = append(m.invalidated, u)
	}
	return nil
}
