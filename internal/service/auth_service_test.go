package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/ostapkoval/photostream-api/internal/models"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
)

type mockUserRepo struct {
	users      map[string]*models.User
	createErr  error
	existsErr  error
	exists     bool
	rotateErr  error
	setErr     error
	clearCalls int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.users[user.ID] = user
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	return m.exists, nil
}

func (m *mockUserRepo) SetRefreshToken(ctx context.Context, id, token string) error {
	if m.setErr != nil {
		return m.setErr
	}
	if user, ok := m.users[id]; ok {
		user.RefreshToken = &token
	}
	return nil
}

func (m *mockUserRepo) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) (bool, error) {
	if m.rotateErr != nil {
		return false, m.rotateErr
	}
	user, ok := m.users[id]
	if !ok || user.RefreshToken == nil || *user.RefreshToken != oldToken {
		return false, nil
	}
	user.RefreshToken = &newToken
	return true, nil
}

func (m *mockUserRepo) ClearRefreshToken(ctx context.Context, id string) error {
	m.clearCalls++
	if user, ok := m.users[id]; ok {
		user.RefreshToken = nil
	}
	return nil
}

func newTestAuthService(repo *mockUserRepo) *AuthService {
	tokens := NewTokenService(testJWTConfig(), nil)
	return NewAuthService(repo, tokens, validator.New(), zap.NewNop())
}

func seedUser(repo *mockUserRepo, id, email, password string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	user := &models.User{ID: id, Username: "user_" + id, Email: email, PasswordHash: string(hash)}
	repo.users[id] = user
	return user
}

func TestAuthServiceRegister(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo)

	res, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Email:    "Alice@Example.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, int64(900), res.ExpiresIn)

	created := repo.users[res.User.ID]
	require.NotNil(t, created)
	assert.Equal(t, "alice@example.com", created.Email)
	require.NotNil(t, created.RefreshToken)
	assert.Equal(t, res.RefreshToken, *created.RefreshToken)
	assert.NotEqual(t, "secret1", created.PasswordHash)
}

func TestAuthServiceRegisterConflict(t *testing.T) {
	repo := newMockUserRepo()
	repo.exists = true
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "secret1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRegisterValidation(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo)

	_, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "al",
		Email:    "not-an-email",
		Password: "short",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.users)
}

func TestAuthServiceLogin(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	require.NotNil(t, repo.users["u1"].RefreshToken)
	assert.Equal(t, res.RefreshToken, *repo.users["u1"].RefreshToken)
}

func TestAuthServiceLoginIndistinguishableFailures(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	_, unknownEmailErr := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	_, wrongPasswordErr := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "wrong"})

	require.Error(t, unknownEmailErr)
	require.Error(t, wrongPasswordErr)

	// A caller probing for registered emails must not be able to tell the
	// two failures apart.
	first := appErrors.FromError(unknownEmailErr)
	second := appErrors.FromError(wrongPasswordErr)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.Message, second.Message)
}

func TestAuthServiceLoginReplacesRefreshToken(t *testing.T) {
	repo := newMockUserRepo()
	user := seedUser(repo, "u1", "alice@example.com", "secret1")
	stale := "previous-session-token"
	user.RefreshToken = &stale
	svc := newTestAuthService(repo)

	res, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	require.NotNil(t, user.RefreshToken)
	assert.Equal(t, res.RefreshToken, *user.RefreshToken)
	assert.NotEqual(t, stale, *user.RefreshToken)
}

func TestAuthServiceLoginInvalidatesRegistrationToken(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestAuthService(repo)

	registered, err := svc.Register(context.Background(), models.RegisterRequest{
		Username: "ann",
		Email:    "ann@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ann@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, login.RefreshToken)

	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: registered.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotates(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	res, err := svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEqual(t, login.RefreshToken, res.RefreshToken)

	// The superseded token is gone for good.
	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)

	// The rotated token works.
	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: res.RefreshToken})
	require.NoError(t, err)
}

func TestAuthServiceRefreshAfterLogout(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), "u1"))

	// The token itself is still within its lifetime but no longer matches
	// the stored value.
	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: login.AccessToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshConcurrentLoser(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	// Simulate losing the compare-and-swap to a concurrent refresh that
	// rotated the token between the read and the write.
	winner := "concurrent-winner-token"
	repo.users["u1"].RefreshToken = &winner

	_, err = svc.Refresh(context.Background(), models.RefreshRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidToken.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceLogoutIdempotent(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	require.NoError(t, svc.Logout(context.Background(), "u1"))
	require.NoError(t, svc.Logout(context.Background(), "u1"))
	assert.Equal(t, 2, repo.clearCalls)
	assert.Nil(t, repo.users["u1"].RefreshToken)
}

func TestAuthServiceAuthenticate(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := svc.Authenticate(context.Background(), login.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)

	// A refresh token is not a valid credential for guarded routes.
	_, err = svc.Authenticate(context.Background(), login.RefreshToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceAuthenticateDeletedUser(t *testing.T) {
	repo := newMockUserRepo()
	seedUser(repo, "u1", "alice@example.com", "secret1")
	svc := newTestAuthService(repo)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	delete(repo.users, "u1")

	_, err = svc.Authenticate(context.Background(), login.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
