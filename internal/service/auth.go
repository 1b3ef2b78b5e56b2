package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"videotube/internal/logger"
	"videotube/internal/model"
	"videotube/internal/repository"
)

// AuthService runs the session lifecycle: registration, login, refresh
// rotation, logout and password change. Each user holds at most one live
// refresh token, stored on the user row.
type AuthService struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	tokens   *TokenIssuer
	uploader MediaUploader
}

func NewAuthService(users repository.UserRepository, hasher PasswordHasher, tokens *TokenIssuer, uploader MediaUploader) *AuthService {
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		uploader: uploader,
	}
}

// Register validates the request, uploads the images and creates the user.
// A failed cover upload is tolerated; a failed avatar upload is not.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	log := logger.FromContext(ctx)

	fullName := strings.TrimSpace(req.FullName)
	email := model.NormalizeIdentity(req.Email)
	username := model.NormalizeIdentity(req.Username)
	if fullName == "" || email == "" || username == "" || strings.TrimSpace(req.Password) == "" {
		return nil, model.ErrMissingFields
	}
	if err := checkPasswordLength(req.Password); err != nil {
		return nil, err
	}

	exists, err := s.users.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, model.Internal("Failed to check existing users").Wrap(err)
	}
	if exists {
		return nil, model.ErrUserExists
	}

	if req.AvatarPath == "" {
		return nil, model.ErrAvatarRequired
	}

	avatar, err := s.uploader.Upload(ctx, req.AvatarPath, model.MediaAvatar)
	if err != nil || avatar == nil || avatar.URL == "" {
		log.Err(err).Str("username", username).Msg("avatar upload failed")
		return nil, uploadFailure(err, model.ErrAvatarUploadFailed)
	}

	var coverURL string
	if req.CoverImagePath != "" {
		cover, err := s.uploader.Upload(ctx, req.CoverImagePath, model.MediaCoverImage)
		if err != nil {
			log.Warn().Err(err).Str("username", username).Msg("cover image upload failed, continuing without it")
		} else if cover != nil {
			coverURL = cover.URL
		}
	}

	user := &model.User{
		Username:      username,
		Email:         email,
		FullName:      fullName,
		AvatarURL:     avatar.URL,
		CoverImageURL: coverURL,
	}
	if err := applyPassword(s.hasher, user, req.Password, true); err != nil {
		return nil, model.ErrUserCreateFailed.Wrap(err)
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrUserExists) {
			return nil, model.ErrUserExists
		}
		return nil, model.ErrUserCreateFailed.Wrap(err)
	}

	created, err := s.users.GetByID(ctx, user.ID)
	if err != nil {
		return nil, model.ErrUserCreateFailed.Wrap(err)
	}

	log.Info().Int64("user_id", created.ID).Msg("user registered")
	return created, nil
}

// Login verifies the credentials and issues a new token pair.
func (s *AuthService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	email := model.NormalizeIdentity(req.Email)
	username := model.NormalizeIdentity(req.Username)
	if email == "" && username == "" {
		return nil, model.ErrMissingIdentifier
	}

	user, err := s.users.FindByEmailOrUsername(ctx, email, username)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrUserNotFound
		}
		return nil, model.Internal("Failed to login").Wrap(err)
	}

	if !s.hasher.Compare(user.PasswordHash, req.Password) {
		return nil, model.ErrInvalidPassword
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Info().Int64("user_id", user.ID).Msg("user logged in")
	return &model.LoginResponse{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh rotates the presented refresh token. The token must verify against
// the refresh secret and match the one stored for its user; a superseded
// token is rejected as reused.
func (s *AuthService) Refresh(ctx context.Context, presented string) (*model.TokenPair, error) {
	if presented == "" {
		return nil, model.ErrRefreshTokenMissing
	}

	claims, err := s.tokens.ParseRefresh(presented)
	if err != nil {
		return nil, model.ErrRefreshTokenInvalid.Wrap(err)
	}

	user, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrRefreshUserGone
		}
		return nil, model.Internal("Failed to refresh tokens").Wrap(err)
	}

	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(presented)) != 1 {
		logger.FromContext(ctx).Warn().Int64("user_id", user.ID).Msg("stale refresh token presented")
		return nil, model.ErrRefreshTokenReused
	}

	return s.issueTokens(ctx, user)
}

// Logout drops the stored refresh token. A missing user is not an error.
func (s *AuthService) Logout(ctx context.Context, userID int64) error {
	if err := s.users.ClearRefreshToken(ctx, userID); err != nil {
		return model.Internal("Failed to logout").Wrap(err)
	}
	return nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, req *model.ChangePasswordRequest) error {
	if req.OldPassword == "" || strings.TrimSpace(req.NewPassword) == "" {
		return model.BadRequest("Old and new password are required")
	}
	if err := checkPasswordLength(req.NewPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return model.ErrUserNotFound
		}
		return model.Internal("Failed to change password").Wrap(err)
	}

	if !s.hasher.Compare(user.PasswordHash, req.OldPassword) {
		return model.ErrInvalidOldPassword
	}

	if err := applyPassword(s.hasher, user, req.NewPassword, true); err != nil {
		return model.Internal("Failed to change password").Wrap(err)
	}

	if _, err := s.users.Update(ctx, userID, model.UserUpdate{PasswordHash: &user.PasswordHash}); err != nil {
		return model.Internal("Failed to change password").Wrap(err)
	}
	return nil
}

// issueTokens signs a pair and persists the refresh half before returning.
// Nothing is returned when persisting fails.
func (s *AuthService) issueTokens(ctx context.Context, user *model.User) (*model.TokenPair, error) {
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, model.ErrTokenGenerateFailed.Wrap(err)
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return nil, model.ErrTokenGenerateFailed.Wrap(err)
	}
	user.RefreshToken = &pair.RefreshToken

	return pair, nil
}
