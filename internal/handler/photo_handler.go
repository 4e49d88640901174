package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ostapkoval/photostream-api/internal/models"
	"github.com/ostapkoval/photostream-api/internal/service"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
	"github.com/ostapkoval/photostream-api/pkg/response"
)

// PhotoHandler wires HTTP endpoints to the photo service.
type PhotoHandler struct {
	service *service.PhotoService
}

// NewPhotoHandler creates a new handler.
func NewPhotoHandler(svc *service.PhotoService) *PhotoHandler {
	return &PhotoHandler{service: svc}
}

// Upload godoc
// @Summary Upload a photo
// @Description Upload an image with title and description
// @Tags Photos
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param title formData string true "Photo title"
// @Param description formData string false "Photo description"
// @Param image formData file true "Image file"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /photos [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CreatePhotoRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid photo payload"))
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "image file is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
		return
	}
	defer file.Close()

	upload := service.MediaUpload{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
		MimeType: fileHeader.Header.Get("Content-Type"),
		Content:  file,
	}

	photo, err := h.service.Upload(c.Request.Context(), req, upload, user)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusCreated, photo, nil)
}

// List godoc
// @Summary Photo feed
// @Description List photos with search, sort and pagination
// @Tags Photos
// @Produce json
// @Param search query string false "Search in title and description"
// @Param sort query string false "Sort order" Enums(newest, oldest, rating)
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /photos [get]
func (h *PhotoHandler) List(c *gin.Context) {
	filter := parsePhotoFilter(c)

	photos, total, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, photos, &models.Pagination{
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalCount: total,
	})
}

// Get godoc
// @Summary Photo detail
// @Description Return a photo with its ratings and comments
// @Tags Photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /photos/{id} [get]
func (h *PhotoHandler) Get(c *gin.Context) {
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Update godoc
// @Summary Update photo metadata
// @Description Update title and description of an owned photo
// @Tags Photos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Param payload body models.UpdatePhotoRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /photos/{id} [put]
func (h *PhotoHandler) Update(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid update payload"))
		return
	}

	photo, err := h.service.Update(c.Request.Context(), c.Param("id"), req, user.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, photo, nil)
}

// Delete godoc
// @Summary Delete a photo
// @Description Delete an owned photo and its stored media
// @Tags Photos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Success 204 "No Content"
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /photos/{id} [delete]
func (h *PhotoHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	if err := h.service.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// Rate godoc
// @Summary Rate a photo
// @Description Add or replace the caller's rating (1 to 5)
// @Tags Photos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Param payload body models.RateRequest true "Rating payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /photos/{id}/rate [post]
func (h *PhotoHandler) Rate(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.RateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rating payload"))
		return
	}

	detail, err := h.service.Rate(c.Request.Context(), c.Param("id"), user.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

// Comment godoc
// @Summary Comment on a photo
// @Description Add a comment to a photo
// @Tags Photos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID"
// @Param payload body models.CommentRequest true "Comment payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /photos/{id}/comment [post]
func (h *PhotoHandler) Comment(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid comment payload"))
		return
	}

	detail, err := h.service.Comment(c.Request.Context(), c.Param("id"), user, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, detail, nil)
}

func parsePhotoFilter(c *gin.Context) models.PhotoFilter {
	filter := models.PhotoFilter{
		Search: c.Query("search"),
		Sort:   models.PhotoSort(c.DefaultQuery("sort", string(models.SortNewest))),
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && page > 0 {
		filter.Page = page
	} else {
		filter.Page = 1
	}
	if size, err := strconv.Atoi(c.DefaultQuery("page_size", "20")); err == nil && size > 0 && size <= 100 {
		filter.PageSize = size
	} else {
		filter.PageSize = 20
	}
	return filter
}
