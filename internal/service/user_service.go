package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/ostapkoval/photostream-api/internal/models"
	"github.com/ostapkoval/photostream-api/pkg/config"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
	"github.com/ostapkoval/photostream-api/pkg/storage"
)

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	ExistsOtherWithEmailOrUsername(ctx context.Context, email, username, excludeID string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) error
}

// UserService provides profile use cases.
type UserService struct {
	repo      profileRepository
	media     storage.MediaStore
	validator *validator.Validate
	logger    *zap.Logger
	uploads   config.UploadsConfig
}

// NewUserService constructs a UserService instance.
func NewUserService(repo profileRepository, media storage.MediaStore, validate *validator.Validate, logger *zap.Logger, uploads config.UploadsConfig) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, media: media, validator: validate, logger: logger, uploads: uploads}
}

// Get returns the public profile for a user.
func (s *UserService) Get(ctx context.Context, id string) (*models.Profile, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	profile := user.PublicProfile()
	return &profile, nil
}

// UpdateProfile applies mutable profile fields and an optional new avatar.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest, avatar *MediaUpload) (*models.Profile, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid profile payload")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}

	username := strings.TrimSpace(req.Username)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if username == "" {
		username = user.Username
	}
	if email == "" {
		email = user.Email
	}

	if username != user.Username || email != user.Email {
		taken, err := s.repo.ExistsOtherWithEmailOrUsername(ctx, email, username, user.ID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check existing users")
		}
		if taken {
			return nil, appErrors.Clone(appErrors.ErrConflict, "username or email already taken")
		}
	}

	user.Username = username
	user.Email = email
	user.Bio = strings.TrimSpace(req.Bio)

	if avatar != nil {
		if err := s.validateAvatar(avatar); err != nil {
			return nil, err
		}
		key := mediaKey("avatars", avatar.Filename)
		url, err := s.media.Put(ctx, key, avatar.MimeType, avatar.Content, avatar.Size)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store avatar")
		}
		oldKey := user.AvatarKey
		user.AvatarURL = url
		user.AvatarKey = key
		if oldKey != "" {
			if err := s.media.Delete(ctx, oldKey); err != nil {
				s.logger.Warn("failed to delete previous avatar", zap.String("key", oldKey), zap.Error(err))
			}
		}
	}

	if err := s.repo.UpdateProfile(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update profile")
	}

	profile := user.PublicProfile()
	return &profile, nil
}

func (s *UserService) validateAvatar(avatar *MediaUpload) error {
	if avatar.Content == nil || avatar.Size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "avatar file is empty")
	}
	if s.uploads.MaxFileSizeBytes > 0 && avatar.Size > s.uploads.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, "avatar exceeds the size limit")
	}
	allowed := s.uploads.AllowedMIMEs
	if len(allowed) == 0 {
		allowed = []string{"image/jpeg", "image/png", "image/gif"}
	}
	for _, mime := range allowed {
		if strings.EqualFold(mime, avatar.MimeType) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "only JPEG, PNG and GIF images are supported")
}
