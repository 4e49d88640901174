package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ostapkoval/photostream-api/internal/models"
	"github.com/ostapkoval/photostream-api/pkg/config"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
	"github.com/ostapkoval/photostream-api/pkg/storage"
)

type photoRepository interface {
	Create(ctx context.Context, photo *models.Photo) error
	FindByID(ctx context.Context, id string) (*models.Photo, error)
	List(ctx context.Context, filter models.PhotoFilter) ([]models.PhotoSummary, int, error)
	GetSummary(ctx context.Context, id string) (*models.PhotoSummary, error)
	Update(ctx context.Context, photo *models.Photo) error
	Delete(ctx context.Context, id string) error
	UpsertRating(ctx context.Context, photoID, userID string, value int) error
	ListRatings(ctx context.Context, photoID string) ([]models.Rating, error)
	CreateComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, photoID string) ([]models.Comment, error)
}

type authorLoader interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// MediaUpload carries an incoming multipart file.
type MediaUpload struct {
	Filename string
	Size     int64
	MimeType string
	Content  io.Reader
}

const feedCachePrefix = "photos:feed"

// PhotoService provides photo upload, feed, rating and comment use cases.
type PhotoService struct {
	repo      photoRepository
	authors   authorLoader
	media     storage.MediaStore
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	uploads   config.UploadsConfig
	cacheTTL  time.Duration
}

// NewPhotoService constructs a PhotoService instance.
func NewPhotoService(
	repo photoRepository,
	authors authorLoader,
	media storage.MediaStore,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	uploads config.UploadsConfig,
	cacheTTL time.Duration,
) *PhotoService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &PhotoService{
		repo:      repo,
		authors:   authors,
		media:     media,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		uploads:   uploads,
		cacheTTL:  cacheTTL,
	}
}

// Upload validates the image, stores its bytes in the media store and
// persists the photo record.
func (s *PhotoService) Upload(ctx context.Context, req models.CreatePhotoRequest, upload MediaUpload, actor *models.User) (*models.Photo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid photo payload")
	}
	if err := s.validateUpload(upload); err != nil {
		return nil, err
	}

	key := mediaKey("photos", upload.Filename)
	url, err := s.media.Put(ctx, key, upload.MimeType, upload.Content, upload.Size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store image")
	}

	photo := &models.Photo{
		UserID:      actor.ID,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		ImageURL:    url,
		StorageKey:  key,
	}

	if err := s.repo.Create(ctx, photo); err != nil {
		if delErr := s.media.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned media object", zap.String("key", key), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create photo")
	}

	if s.metrics != nil {
		s.metrics.RecordUpload(upload.Size)
	}
	s.invalidateFeed(ctx)

	return photo, nil
}

// feedPage is the cached shape of a feed response.
type feedPage struct {
	Items []models.PhotoSummary `json:"items"`
	Total int                   `json:"total"`
}

// List returns the photo feed for the filter, serving from cache when
// possible.
func (s *PhotoService) List(ctx context.Context, filter models.PhotoFilter) ([]models.PhotoSummary, int, error) {
	key := feedCacheKey(filter)

	var cached feedPage
	if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
		return cached.Items, cached.Total, nil
	}

	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list photos")
	}

	if s.cache.Enabled() {
		if err := s.cache.Set(ctx, key, feedPage{Items: items, Total: total}, s.cacheTTL); err != nil {
			s.logger.Warn("failed to cache photo feed", zap.Error(err))
		}
	}

	return items, total, nil
}

// Get returns the full detail for a single photo.
func (s *PhotoService) Get(ctx context.Context, id string) (*models.PhotoDetail, error) {
	return s.buildDetail(ctx, id)
}

// Update mutates title and description. Only the owner may update.
func (s *PhotoService) Update(ctx context.Context, id string, req models.UpdatePhotoRequest, actorID string) (*models.Photo, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid photo payload")
	}

	photo, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return nil, err
	}

	photo.Title = strings.TrimSpace(req.Title)
	photo.Description = strings.TrimSpace(req.Description)
	if err := s.repo.Update(ctx, photo); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update photo")
	}

	s.invalidateFeed(ctx)
	return photo, nil
}

// Delete removes the photo record and its stored object. Only the owner
// may delete.
func (s *PhotoService) Delete(ctx context.Context, id string, actorID string) error {
	photo, err := s.loadOwned(ctx, id, actorID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete photo")
	}

	if photo.StorageKey != "" {
		if err := s.media.Delete(ctx, photo.StorageKey); err != nil {
			s.logger.Warn("failed to delete media object", zap.String("key", photo.StorageKey), zap.Error(err))
		}
	}

	s.invalidateFeed(ctx)
	return nil
}

// Rate adds or replaces the actor's 1..5 rating and returns the updated
// detail with the recomputed average.
func (s *PhotoService) Rate(ctx context.Context, id string, actorID string, req models.RateRequest) (*models.PhotoDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "rating must be a number between 1 and 5")
	}

	if _, err := s.loadPhoto(ctx, id); err != nil {
		return nil, err
	}

	if err := s.repo.UpsertRating(ctx, id, actorID, req.Value); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save rating")
	}

	s.invalidateFeed(ctx)
	return s.buildDetail(ctx, id)
}

// Comment adds a comment and returns the updated detail.
func (s *PhotoService) Comment(ctx context.Context, id string, actor *models.User, req models.CommentRequest) (*models.PhotoDetail, error) {
	req.Text = strings.TrimSpace(req.Text)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "comment text is required")
	}

	if _, err := s.loadPhoto(ctx, id); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PhotoID: id,
		UserID:  actor.ID,
		Text:    req.Text,
	}
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save comment")
	}

	s.invalidateFeed(ctx)
	return s.buildDetail(ctx, id)
}

func (s *PhotoService) loadPhoto(ctx context.Context, id string) (*models.Photo, error) {
	photo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load photo")
	}
	return photo, nil
}

func (s *PhotoService) loadOwned(ctx context.Context, id, actorID string) (*models.Photo, error) {
	photo, err := s.loadPhoto(ctx, id)
	if err != nil {
		return nil, err
	}
	if photo.UserID != actorID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "photo belongs to another user")
	}
	return photo, nil
}

func (s *PhotoService) buildDetail(ctx context.Context, id string) (*models.PhotoDetail, error) {
	summary, err := s.repo.GetSummary(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "photo not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load photo")
	}

	ratings, err := s.repo.ListRatings(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ratings")
	}
	comments, err := s.repo.ListComments(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load comments")
	}

	detail := &models.PhotoDetail{
		PhotoSummary: *summary,
		Ratings:      ratings,
		Comments:     comments,
	}

	if author, err := s.authors.FindByID(ctx, summary.AuthorID); err == nil {
		detail.AuthorBio = author.Bio
	}

	return detail, nil
}

func (s *PhotoService) validateUpload(upload MediaUpload) error {
	if upload.Content == nil || upload.Size <= 0 {
		return appErrors.Clone(appErrors.ErrValidation, "image file is required")
	}
	if s.uploads.MaxFileSizeBytes > 0 && upload.Size > s.uploads.MaxFileSizeBytes {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.uploads.MaxFileSizeBytes))
	}
	allowed := s.uploads.AllowedMIMEs
	if len(allowed) == 0 {
		allowed = []string{"image/jpeg", "image/png", "image/gif"}
	}
	for _, mime := range allowed {
		if strings.EqualFold(mime, upload.MimeType) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrValidation, "only JPEG, PNG and GIF images are supported")
}

func (s *PhotoService) invalidateFeed(ctx context.Context) {
	if err := s.cache.Invalidate(ctx, feedCachePrefix+":*"); err != nil {
		s.logger.Warn("failed to invalidate photo feed cache", zap.Error(err))
	}
}

func feedCacheKey(filter models.PhotoFilter) string {
	sort := filter.Sort
	if sort == "" {
		sort = models.SortNewest
	}
	return fmt.Sprintf("%s:%s:%s:%s:%d:%d", feedCachePrefix, sort, filter.Search, filter.UserID, filter.Page, filter.PageSize)
}

func mediaKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return fmt.Sprintf("%s/%s%s", prefix, uuid.NewString(), ext)
}
