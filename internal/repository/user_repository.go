package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ostapkoval/photostream-api/internal/models"
)

// UserRepository provides database access for user accounts and their
// refresh-token state.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, email, password_hash, bio, avatar_url, avatar_key, refresh_token, created_at, updated_at`

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(user.Email)
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	const query = `INSERT INTO users (id, username, email, password_hash, bio, avatar_url, avatar_key, refresh_token, created_at, updated_at) VALUES (:id, :username, :email, :password_hash, :bio, :avatar_url, :avatar_key, :refresh_token, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// FindByID returns a user by identifier.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by id: %w", err)
	}
	return &user, nil
}

// FindByEmail returns a user by email address. Emails are stored lower
// case, so the lookup is case-insensitive.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE email = $1 LIMIT 1`, userColumns)
	var user models.User
	if err := r.db.GetContext(ctx, &user, query, strings.ToLower(email)); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find user by email: %w", err)
	}
	return &user, nil
}

// ExistsByEmailOrUsername reports whether any user already claims the email
// or username.
func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1 OR username = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, strings.ToLower(email), username); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return exists, nil
}

// ExistsOtherWithEmailOrUsername reports whether a different user already
// claims the email or username. Used when updating a profile.
func (r *UserRepository) ExistsOtherWithEmailOrUsername(ctx context.Context, email, username, excludeID string) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM users WHERE (email = $1 OR username = $2) AND id <> $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, strings.ToLower(email), username, excludeID); err != nil {
		return false, fmt.Errorf("check user existence: %w", err)
	}
	return exists, nil
}

// UpdateProfile updates mutable profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(user.Email)
	user.UpdatedAt = time.Now().UTC()
	const query = `UPDATE users SET username = :username, email = :email, bio = :bio, avatar_url = :avatar_url, avatar_key = :avatar_key, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	return nil
}

// SetRefreshToken overwrites the stored refresh token unconditionally.
// Used on login and registration, where any previous session is replaced.
func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	const query = `UPDATE users SET refresh_token = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, token, time.Now().UTC()); err != nil {
		return fmt.Errorf("set refresh token: %w", err)
	}
	return nil
}

// RotateRefreshToken swaps oldToken for newToken in a single compare-and-swap
// update. It returns false when the stored token no longer equals oldToken,
// which is how a concurrent refresh on the same stale token loses the race.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, id, oldToken, newToken string) (bool, error) {
	const query = `UPDATE users SET refresh_token = $3, updated_at = $4 WHERE id = $1 AND refresh_token = $2`
	res, err := r.db.ExecContext(ctx, query, id, oldToken, newToken, time.Now().UTC())
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rotate refresh token: %w", err)
	}
	return affected == 1, nil
}

// ClearRefreshToken removes the stored refresh token. Clearing an already
// empty token is a no-op, which keeps logout idempotent.
func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	const query = `UPDATE users SET refresh_token = NULL, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("clear refresh token: %w", err)
	}
	return nil
}
