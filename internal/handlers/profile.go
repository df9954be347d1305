package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/dto"
	apierrors "github.com/yukikurage/geoblog/internal/errors"
	"github.com/yukikurage/geoblog/internal/forms"
	"github.com/yukikurage/geoblog/internal/middleware"
	"github.com/yukikurage/geoblog/internal/services"
)

// ProfileHandler lets users view and edit their own profile.
type ProfileHandler struct {
	profiles *services.ProfileService
	url      dto.URLFunc
	log      *zap.Logger
}

func NewProfileHandler(profiles *services.ProfileService, url dto.URLFunc, log *zap.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, url: url, log: log}
}

// Show returns the profile form of the current user.
func (h *ProfileHandler) Show(c *gin.Context) {
	viewer, _ := middleware.GetUser(c)
	profile, err := h.profiles.GetProfile(viewer, c.Param("slug"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToProfileContext(*profile.User, profile.Sexes, profile.Countries, h.url))
}

// Update saves the submitted profile form.
func (h *ProfileHandler) Update(c *gin.Context) {
	viewer, _ := middleware.GetUser(c)
	slug := c.Param("slug")
	if _, err := h.profiles.GetProfile(viewer, slug); err != nil {
		h.respondError(c, err)
		return
	}

	var form forms.ProfileForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}

	var avatar io.Reader
	if form.Avatar != nil {
		readers, closeAvatar, err := openUploads([]*multipart.FileHeader{form.Avatar})
		if err != nil {
			respondFieldError(c, "avatar", "The submitted file could not be read.")
			return
		}
		defer closeAvatar()
		avatar = readers[0]
	}

	_, err := h.profiles.UpdateProfile(c.Request.Context(), viewer, slug, services.UpdateProfileInput{
		Email:     form.Email,
		SexID:     form.Sex,
		CountryID: form.Country,
		Birthday:  form.BirthdayDate,
		Avatar:    avatar,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	redirect(c, "/")
}

func (h *ProfileHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		respondMessage(c, http.StatusNotFound, "User not found.")
	case errors.Is(err, services.ErrNotProfileOwner):
		respondMessage(c, http.StatusForbidden, "You can only edit your own profile.")
	case errors.Is(err, services.ErrEmailTaken):
		respondFieldError(c, "email", "A user with this email already exists.")
	case errors.Is(err, services.ErrUnknownSex):
		respondFieldError(c, "sex", "Select a valid choice.")
	case errors.Is(err, services.ErrUnknownCountry):
		respondFieldError(c, "country", "Select a valid choice.")
	case errors.Is(err, services.ErrInvalidImage):
		respondFieldError(c, "avatar", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
	default:
		h.log.Error("profile request failed", zap.Error(err))
		apierrors.InternalError(c, "")
	}
}
