package handlers

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/dto"
	apierrors "github.com/yukikurage/geoblog/internal/errors"
	"github.com/yukikurage/geoblog/internal/forms"
	"github.com/yukikurage/geoblog/internal/models"
)

// respondMessage sends an informational page.
func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, dto.MessageDTO{Message: message})
}

// respondFieldError sends a validation failure for one field.
func respondFieldError(c *gin.Context, field, message string) {
	errs := forms.FieldErrors{}
	errs.Add(field, message)
	apierrors.ValidationFailed(c, errs)
}

func redirect(c *gin.Context, location string) {
	c.Redirect(http.StatusFound, location)
}

// safeNext returns next when it is a local path, fallback otherwise.
func safeNext(next, fallback string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return fallback
	}
	return next
}

// startSession stores user in a fresh session.
func startSession(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(constants.ContextKeyUserID, user.ID)
	return session.Save()
}

// openUploads opens every file header. The returned closer must be called
// once the readers are consumed.
func openUploads(headers []*multipart.FileHeader) ([]io.Reader, func(), error) {
	files := make([]multipart.File, 0, len(headers))
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	readers := make([]io.Reader, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			closeAll()
			return nil, func() {}, err
		}
		files = append(files, f)
		readers = append(readers, f)
	}
	return readers, closeAll, nil
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
