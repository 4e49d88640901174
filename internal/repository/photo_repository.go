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

// PhotoRepository provides database access for photos, ratings and comments.
type PhotoRepository struct {
	db *sqlx.DB
}

// NewPhotoRepository creates a new instance of PhotoRepository.
func NewPhotoRepository(db *sqlx.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

// summarySelect aggregates the derived feed fields. The average rating is
// computed on read from the ratings table and rounded to one decimal.
const summarySelect = `SELECT p.id, p.title, p.description, p.image_url, p.user_id,
	u.username AS author_username, COALESCE(u.avatar_url, '') AS author_avatar,
	COALESCE(ROUND(AVG(r.value)::numeric, 1), 0) AS average_rating,
	COUNT(DISTINCT r.user_id) AS rating_count,
	COUNT(DISTINCT c.id) AS comment_count,
	p.created_at
	FROM photos p
	JOIN users u ON u.id = p.user_id
	LEFT JOIN photo_ratings r ON r.photo_id = p.id
	LEFT JOIN photo_comments c ON c.photo_id = p.id`

const summaryGroup = ` GROUP BY p.id, u.username, u.avatar_url`

// Create inserts a new photo.
func (r *PhotoRepository) Create(ctx context.Context, photo *models.Photo) error {
	if photo.ID == "" {
		photo.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if photo.CreatedAt.IsZero() {
		photo.CreatedAt = now
	}
	photo.UpdatedAt = now

	const query = `INSERT INTO photos (id, user_id, title, description, image_url, storage_key, created_at, updated_at) VALUES (:id, :user_id, :title, :description, :image_url, :storage_key, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, photo); err != nil {
		return fmt.Errorf("create photo: %w", err)
	}
	return nil
}

// FindByID returns the bare photo row.
func (r *PhotoRepository) FindByID(ctx context.Context, id string) (*models.Photo, error) {
	const query = `SELECT id, user_id, title, description, image_url, storage_key, created_at, updated_at FROM photos WHERE id = $1 LIMIT 1`
	var photo models.Photo
	if err := r.db.GetContext(ctx, &photo, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find photo by id: %w", err)
	}
	return &photo, nil
}

// List returns photo summaries matching the filter with a total count.
func (r *PhotoRepository) List(ctx context.Context, filter models.PhotoFilter) ([]models.PhotoSummary, int, error) {
	var conditions []string
	var args []interface{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(p.title ILIKE $%d OR p.description ILIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("p.user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var order string
	switch filter.Sort {
	case models.SortOldest:
		order = " ORDER BY p.created_at ASC"
	case models.SortRating:
		order = " ORDER BY average_rating DESC, p.created_at DESC"
	default:
		order = " ORDER BY p.created_at DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("%s%s%s%s LIMIT %d OFFSET %d", summarySelect, where, summaryGroup, order, pageSize, offset)

	var photos []models.PhotoSummary
	if err := r.db.SelectContext(ctx, &photos, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list photos: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM photos p%s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count photos: %w", err)
	}

	return photos, total, nil
}

// GetSummary returns the aggregated summary for a single photo.
func (r *PhotoRepository) GetSummary(ctx context.Context, id string) (*models.PhotoSummary, error) {
	query := summarySelect + " WHERE p.id = $1" + summaryGroup
	var summary models.PhotoSummary
	if err := r.db.GetContext(ctx, &summary, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("get photo summary: %w", err)
	}
	return &summary, nil
}

// Update mutates photo metadata.
func (r *PhotoRepository) Update(ctx context.Context, photo *models.Photo) error {
	photo.UpdatedAt = time.Now().UTC()
	const query = `UPDATE photos SET title = :title, description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, photo); err != nil {
		return fmt.Errorf("update photo: %w", err)
	}
	return nil
}

// Delete removes the photo. Ratings and comments cascade at the schema level.
func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM photos WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete photo: %w", err)
	}
	return nil
}

// UpsertRating adds the user's rating, replacing any previous value. The
// (photo_id, user_id) primary key keeps ratings to one per user per photo.
func (r *PhotoRepository) UpsertRating(ctx context.Context, photoID, userID string, value int) error {
	const query = `INSERT INTO photo_ratings (photo_id, user_id, value, created_at) VALUES ($1, $2, $3, $4)
		ON CONFLICT (photo_id, user_id) DO UPDATE SET value = EXCLUDED.value, created_at = EXCLUDED.created_at`
	if _, err := r.db.ExecContext(ctx, query, photoID, userID, value, time.Now().UTC()); err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// ListRatings returns all ratings for a photo with rater usernames.
func (r *PhotoRepository) ListRatings(ctx context.Context, photoID string) ([]models.Rating, error) {
	const query = `SELECT r.photo_id, r.user_id, u.username, r.value, r.created_at
		FROM photo_ratings r JOIN users u ON u.id = r.user_id
		WHERE r.photo_id = $1 ORDER BY r.created_at ASC`
	var ratings []models.Rating
	if err := r.db.SelectContext(ctx, &ratings, query, photoID); err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	return ratings, nil
}

// CreateComment stores a comment.
func (r *PhotoRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	if comment.ID == "" {
		comment.ID = uuid.NewString()
	}
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO photo_comments (id, photo_id, user_id, text, created_at) VALUES ($1, $2, $3, $4, $5)`
	if _, err := r.db.ExecContext(ctx, query, comment.ID, comment.PhotoID, comment.UserID, comment.Text, comment.CreatedAt); err != nil {
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

// ListComments returns all comments for a photo with commenter info.
func (r *PhotoRepository) ListComments(ctx context.Context, photoID string) ([]models.Comment, error) {
	const query = `SELECT c.id, c.photo_id, c.user_id, u.username, COALESCE(u.avatar_url, '') AS avatar_url, c.text, c.created_at
		FROM photo_comments c JOIN users u ON u.id = c.user_id
		WHERE c.photo_id = $1 ORDER BY c.created_at ASC`
	var comments []models.Comment
	if err := r.db.SelectContext(ctx, &comments, query, photoID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}
