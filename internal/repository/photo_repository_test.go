package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostapkoval/photostream-api/internal/models"
)

func summaryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "description", "image_url", "user_id", "author_username", "author_avatar", "average_rating", "rating_count", "comment_count", "created_at"})
}

func TestPhotoCreate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPhotoRepository(db)

	mock.ExpectExec("INSERT INTO photos").WillReturnResult(sqlmock.NewResult(1, 1))

	photo := &models.Photo{UserID: "u1", Title: "Sunset", ImageURL: "http://media.local/photos/x.jpg", StorageKey: "photos/x.jpg"}
	err := repo.Create(context.Background(), photo)
	require.NoError(t, err)
	assert.NotEmpty(t, photo.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPhotoRepository(db)

	now := time.Now()
	rows := summaryRows().
		AddRow("p1", "Sunset", "", "http://m/p1.jpg", "u1", "alice", "", 4.5, 2, 1, now).
		AddRow("p2", "Dawn", "", "http://m/p2.jpg", "u2", "bob", "", 0, 0, 0, now)

	mock.ExpectQuery("SELECT p.id, p.title").WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM photos p")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	photos, total, err := repo.List(context.Background(), models.PhotoFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, photos, 2)
	assert.Equal(t, 4.5, photos[0].AverageRating)
	assert.Equal(t, float64(0), photos[1].AverageRating)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoListWithSearchAndUser(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPhotoRepository(db)

	mock.ExpectQuery("SELECT p.id, p.title").
		WithArgs("%sunset%", "u1").
		WillReturnRows(summaryRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM photos p")).
		WithArgs("%sunset%", "u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	photos, total, err := repo.List(context.Background(), models.PhotoFilter{Search: "sunset", UserID: "u1", Sort: models.SortRating})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, photos)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoGetSummaryNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPhotoRepository(db)

	mock.ExpectQuery("SELECT p.id, p.title").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetSummary(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertRating(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPhotoRepository(db)

	mock.ExpectExec("INSERT INTO photo_ratings").
		WithArgs("p1", "u2", 4, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.UpsertRating(context.Background(), "p1", "u2", 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListRatings(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPhotoRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"photo_id", "user_id", "username", "value", "created_at"}).
		AddRow("p1", "u2", "bob", 4, now)
	mock.ExpectQuery("SELECT r.photo_id, r.user_id").
		WithArgs("p1").
		WillReturnRows(rows)

	ratings, err := repo.ListRatings(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, ratings, 1)
	assert.Equal(t, 4, ratings[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateComment(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPhotoRepository(db)

	mock.ExpectExec("INSERT INTO photo_comments").
		WithArgs(sqlmock.AnyArg(), "p1", "u2", "great shot", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	comment := &models.Comment{PhotoID: "p1", UserID: "u2", Text: "great shot"}
	require.NoError(t, repo.CreateComment(context.Background(), comment))
	assert.NotEmpty(t, comment.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPhotoDelete(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPhotoRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM photos WHERE id = $1")).
		WithArgs("p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "p1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
