package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ostapkoval/photostream-api/internal/models"
	"github.com/ostapkoval/photostream-api/internal/service"
	appErrors "github.com/ostapkoval/photostream-api/pkg/errors"
	"github.com/ostapkoval/photostream-api/pkg/response"
)

// UserHandler wires HTTP endpoints to the user service.
type UserHandler struct {
	users  *service.UserService
	photos *service.PhotoService
}

// NewUserHandler creates a new handler.
func NewUserHandler(users *service.UserService, photos *service.PhotoService) *UserHandler {
	return &UserHandler{users: users, photos: photos}
}

// Get godoc
// @Summary Public profile
// @Description Return a user's public profile
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	profile, err := h.users.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}

// Photos godoc
// @Summary User's photos
// @Description List photos uploaded by a user
// @Tags Users
// @Produce json
// @Param id path string true "User ID"
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /users/{id}/photos [get]
func (h *UserHandler) Photos(c *gin.Context) {
	if _, err := h.users.Get(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	filter := parsePhotoFilter(c)
	filter.UserID = c.Param("id")

	photos, total, err := h.photos.List(c.Request.Context(), filter)
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

// UpdateProfile godoc
// @Summary Update own profile
// @Description Update username, email, bio and optionally the avatar image
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param username formData string false "Username"
// @Param email formData string false "Email"
// @Param bio formData string false "Bio"
// @Param avatar formData file false "Avatar image"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid profile payload"))
		return
	}

	var avatar *service.MediaUpload
	if fileHeader, err := c.FormFile("avatar"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to read upload"))
			return
		}
		defer file.Close()
		avatar = &service.MediaUpload{
			Filename: fileHeader.Filename,
			Size:     fileHeader.Size,
			MimeType: fileHeader.Header.Get("Content-Type"),
			Content:  file,
		}
	}

	profile, err := h.users.UpdateProfile(c.Request.Context(), user.ID, req, avatar)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, profile, nil)
}
