package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/dto"
	apierrors "github.com/yukikurage/geoblog/internal/errors"
	"github.com/yukikurage/geoblog/internal/forms"
	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/repository"
	"github.com/yukikurage/geoblog/internal/services"
	"github.com/yukikurage/geoblog/internal/utils"
)

// AdminHandler serves the JSON administration endpoints.
type AdminHandler struct {
	admin *services.AdminService
	url   dto.URLFunc
	log   *zap.Logger
}

func NewAdminHandler(admin *services.AdminService, url dto.URLFunc, log *zap.Logger) *AdminHandler {
	return &AdminHandler{admin: admin, url: url, log: log}
}

// ListUsers returns users, optionally filtered by ?q=, ?staff= and ?admin=.
func (h *AdminHandler) ListUsers(c *gin.Context) {
	staffOnly, _ := strconv.ParseBool(c.Query("staff"))
	adminOnly, _ := strconv.ParseBool(c.Query("admin"))
	params := utils.GetPaginationParams(c)

	users, total, err := h.admin.ListUsers(repository.UserFilter{
		Query:      c.Query("q"),
		StaffOnly:  staffOnly,
		AdminOnly:  adminOnly,
		Pagination: params,
	})
	if err != nil {
		h.internal(c, "failed to list users", err)
		return
	}

	items := make([]dto.UserDTO, len(users))
	for i, u := range users {
		items[i] = dto.ToUserDTO(u, h.url)
	}
	c.JSON(http.StatusOK, dto.UserListResponse{
		Users:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

// UpdateUser changes the flags of a user.
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	type UpdateUserRequest struct {
		IsActive        *bool   `json:"is_active"`
		Staff           *bool   `json:"staff"`
		Admin           *bool   `json:"admin"`
		SignupConfirmed *bool   `json:"signup_confirmed"`
		SexID           *uint64 `json:"sex_id"`
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.admin.UpdateUser(id, services.UpdateUserInput{
		IsActive:        req.IsActive,
		Staff:           req.Staff,
		Admin:           req.Admin,
		SignupConfirmed: req.SignupConfirmed,
		SexID:           req.SexID,
	})
	switch {
	case err == nil:
		c.JSON(http.StatusOK, dto.ToUserDTO(*user, h.url))
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrUnknownSex):
		respondFieldError(c, "sex_id", "Select a valid choice.")
	default:
		h.internal(c, "failed to update user", err)
	}
}

func (h *AdminHandler) ListCountries(c *gin.Context) {
	countries, err := h.admin.ListCountries()
	if err != nil {
		h.internal(c, "failed to list countries", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToCountryDTOs(countries))
}

func (h *AdminHandler) CreateCountry(c *gin.Context) {
	var form forms.ReferenceForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}
	country, err := h.admin.CreateCountry(form.Name)
	if err != nil {
		h.respondCreateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToCountryDTOs([]models.Country{*country})[0])
}

func (h *AdminHandler) DeleteCountry(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.respondDelete(c, h.admin.DeleteCountry(id))
}

func (h *AdminHandler) ListSexes(c *gin.Context) {
	sexes, err := h.admin.ListSexes()
	if err != nil {
		h.internal(c, "failed to list sexes", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToSexDTOs(sexes))
}

func (h *AdminHandler) CreateSex(c *gin.Context) {
	var form forms.ReferenceForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}
	sex, err := h.admin.CreateSex(form.Name)
	if err != nil {
		h.respondCreateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToSexDTOs([]models.Sex{*sex})[0])
}

func (h *AdminHandler) DeleteSex(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.respondDelete(c, h.admin.DeleteSex(id))
}

func (h *AdminHandler) ListTags(c *gin.Context) {
	tags, err := h.admin.ListTags()
	if err != nil {
		h.internal(c, "failed to list tags", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTagDTOs(tags))
}

func (h *AdminHandler) CreateTag(c *gin.Context) {
	var form forms.TagForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}
	tag, err := h.admin.CreateTag(form.Name)
	if err != nil {
		h.respondCreateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToTagDTO(*tag))
}

func (h *AdminHandler) DeleteTag(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.respondDelete(c, h.admin.DeleteTag(id))
}

func (h *AdminHandler) ListEmojis(c *gin.Context) {
	emojis, err := h.admin.ListEmojis()
	if err != nil {
		h.internal(c, "failed to list emojis", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToEmojiDTOs(emojis, h.url))
}

// CreateEmoji stores an emoji from a multipart name and image.
func (h *AdminHandler) CreateEmoji(c *gin.Context) {
	var form forms.EmojiForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}

	f, err := form.Image.Open()
	if err != nil {
		respondFieldError(c, "image", "The submitted file could not be read.")
		return
	}
	defer f.Close()

	emoji, err := h.admin.CreateEmoji(c.Request.Context(), form.Name, f)
	if err != nil {
		h.respondCreateError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToEmojiDTO(*emoji, h.url))
}

func (h *AdminHandler) DeleteEmoji(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.respondDelete(c, h.admin.DeleteEmoji(c.Request.Context(), id))
}

// ListPosts returns posts newest first with ?page= and ?limit=.
func (h *AdminHandler) ListPosts(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	posts, total, err := h.admin.ListPosts(params)
	if err != nil {
		h.internal(c, "failed to list posts", err)
		return
	}
	c.JSON(http.StatusOK, dto.ToFeedContext(posts, utils.NewPaginationResponse(params, total), h.url))
}

// DeletePost removes a post together with its image files.
func (h *AdminHandler) DeletePost(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	h.respondDelete(c, h.admin.DeletePost(c.Request.Context(), id))
}

func (h *AdminHandler) respondCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNameRequired):
		respondFieldError(c, "name", "This field is required.")
	case errors.Is(err, services.ErrNameTooLong):
		respondFieldError(c, "name", "Ensure this value is not too long.")
	case errors.Is(err, services.ErrInvalidImage):
		respondFieldError(c, "image", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	case errors.Is(err, services.ErrAlreadyExists), errors.Is(err, repository.ErrDuplicate):
		apierrors.AlreadyExists(c, "")
	default:
		h.internal(c, "failed to create resource", err)
	}
}

func (h *AdminHandler) respondDelete(c *gin.Context, err error) {
	switch {
	case err == nil:
		c.Status(http.StatusNoContent)
	case errors.Is(err, services.ErrNotFound):
		apierrors.NotFound(c, "")
	case errors.Is(err, services.ErrInUse):
		apierrors.Conflict(c, "Resource is still in use")
	default:
		h.internal(c, "failed to delete resource", err)
	}
}

func (h *AdminHandler) internal(c *gin.Context, msg string, err error) {
	h.log.Error(msg, zap.String("path", c.FullPath()), zap.Error(err))
	apierrors.InternalError(c, "")
}
