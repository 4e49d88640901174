package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ostapkoval/photostream-api/internal/models"
	"github.com/ostapkoval/photostream-api/pkg/config"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
)

type mockProfileRepo struct {
	users   map[string]*models.User
	taken   bool
	updated *models.User
}

func (m *mockProfileRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockProfileRepo) ExistsOtherWithEmailOrUsername(ctx context.Context, email, username, excludeID string) (bool, error) {
	return m.taken, nil
}

func (m *mockProfileRepo) UpdateProfile(ctx context.Context, user *models.User) error {
	m.updated = user
	return nil
}

func newTestUserService(repo *mockProfileRepo, media *mockMediaStore) *UserService {
	uploads := config.UploadsConfig{
		MaxFileSizeBytes: 5 * 1024 * 1024,
		AllowedMIMEs:     []string{"image/jpeg", "image/png", "image/gif"},
	}
	return NewUserService(repo, media, validator.New(), zap.NewNop(), uploads)
}

func TestUserServiceGet(t *testing.T) {
	repo := &mockProfileRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com", PasswordHash: "hash", Bio: "hi"},
	}}
	svc := newTestUserService(repo, newMockMediaStore())

	profile, err := svc.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "hi", profile.Bio)

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateProfile(t *testing.T) {
	repo := &mockProfileRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com", Bio: "old"},
	}}
	svc := newTestUserService(repo, newMockMediaStore())

	profile, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{
		Username: "alice2",
		Email:    "Alice2@Example.com",
		Bio:      "new bio",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice2", profile.Username)
	assert.Equal(t, "new bio", profile.Bio)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "alice2@example.com", repo.updated.Email)
}

func TestUserServiceUpdateProfileKeepsOmittedFields(t *testing.T) {
	repo := &mockProfileRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com"},
	}}
	svc := newTestUserService(repo, newMockMediaStore())

	profile, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{Bio: "only bio"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", profile.Username)
	assert.Equal(t, "alice@example.com", repo.updated.Email)
}

func TestUserServiceUpdateProfileConflict(t *testing.T) {
	repo := &mockProfileRepo{
		users: map[string]*models.User{"u1": {ID: "u1", Username: "alice", Email: "alice@example.com"}},
		taken: true,
	}
	svc := newTestUserService(repo, newMockMediaStore())

	_, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{Username: "bob"}, nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestUserServiceUpdateAvatarReplacesOld(t *testing.T) {
	repo := &mockProfileRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com", AvatarKey: "avatars/old.png"},
	}}
	media := newMockMediaStore()
	media.objects["avatars/old.png"] = "image/png"
	svc := newTestUserService(repo, media)

	avatar := &MediaUpload{
		Filename: "face.png",
		Size:     64,
		MimeType: "image/png",
		Content:  strings.NewReader(strings.Repeat("x", 64)),
	}
	profile, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{}, avatar)
	require.NoError(t, err)
	assert.NotEmpty(t, profile.AvatarURL)
	assert.Contains(t, media.deleted, "avatars/old.png")
	assert.True(t, strings.HasPrefix(repo.updated.AvatarKey, "avatars/"))
	assert.True(t, strings.HasSuffix(repo.updated.AvatarKey, ".png"))
}

func TestUserServiceUpdateAvatarRejectsMimeType(t *testing.T) {
	repo := &mockProfileRepo{users: map[string]*models.User{
		"u1": {ID: "u1", Username: "alice", Email: "alice@example.com"},
	}}
	svc := newTestUserService(repo, newMockMediaStore())

	avatar := &MediaUpload{
		Filename: "nope.svg",
		Size:     64,
		MimeType: "image/svg+xml",
		Content:  strings.NewReader(strings.Repeat("x", 64)),
	}
	_, err := svc.UpdateProfile(context.Background(), "u1", models.UpdateProfileRequest{}, avatar)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.updated)
}
