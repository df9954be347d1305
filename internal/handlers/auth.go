package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/dto"
	apierrors "github.com/yukikurage/geoblog/internal/errors"
	"github.com/yukikurage/geoblog/internal/forms"
	"github.com/yukikurage/geoblog/internal/services"
)

const (
	msgActivationInvalid = "Activation link is no longer valid."
	msgResetInvalid      = "Password reset link is no longer valid."
	msgResetSent         = "If an account with this email exists, a password reset link has been sent to it."
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		log:         log,
	}
}

// SignUpForm returns the empty registration form.
func (h *AuthHandler) SignUpForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FormContext{Form: "sign-up"})
}

// SignUp registers an inactive user and mails the activation link.
func (h *AuthHandler) SignUp(c *gin.Context) {
	var form forms.RegisterForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}

	_, err := h.authService.Register(c.Request.Context(), services.RegisterInput{
		Email:    form.Email,
		Password: form.Password,
		Host:     c.Request.Host,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrEmailTaken):
		respondFieldError(c, "email", "A user with this email already exists.")
		return
	case errors.Is(err, services.ErrPasswordTooShort):
		respondFieldError(c, "password", fmt.Sprintf("Ensure this value has at least %d characters.", constants.MinPasswordLength))
		return
	case errors.Is(err, services.ErrMailFailed):
		apierrors.ServiceUnavailable(c, "Could not send the activation email, try again later")
		return
	default:
		h.log.Error("registration failed", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}

	respondMessage(c, http.StatusOK, "Activation link sent to "+form.Email)
}

// Activate confirms an account from the emailed link and logs the user in.
func (h *AuthHandler) Activate(c *gin.Context) {
	user, err := h.authService.Activate(c.Param("uid"), c.Param("token"))
	if err != nil {
		if errors.Is(err, services.ErrInvalidLink) {
			respondMessage(c, http.StatusOK, msgActivationInvalid)
			return
		}
		h.log.Error("activation failed", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}

	if err := startSession(c, user); err != nil {
		h.log.Error("failed to save session", zap.Error(err))
		apierrors.InternalError(c, "Failed to save session")
		return
	}
	redirect(c, "/")
}

// SignInForm returns the empty login form.
func (h *AuthHandler) SignInForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FormContext{Form: "sign-in"})
}

// SignIn authenticates a user and initializes the session.
func (h *AuthHandler) SignIn(c *gin.Context) {
	var form forms.LoginForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}

	user, err := h.authService.Login(services.LoginInput{
		Email:    form.Email,
		Password: form.Password,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrInvalidCredentials):
		respondFieldError(c, forms.NonFieldKey, "Please enter a correct email and password.")
		return
	case errors.Is(err, services.ErrAccountInactive):
		respondFieldError(c, forms.NonFieldKey, "This account is inactive.")
		return
	default:
		h.log.Error("login failed", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}

	if err := startSession(c, user); err != nil {
		h.log.Error("failed to save session", zap.Error(err))
		apierrors.InternalError(c, "Failed to save session")
		return
	}
	redirect(c, safeNext(c.Query("next"), "/"))
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	if err := session.Save(); err != nil {
		apierrors.InternalError(c, "Failed to logout")
		return
	}
	redirect(c, "/sign-in/")
}

// ResetPasswordForm returns the empty password reset form.
func (h *AuthHandler) ResetPasswordForm(c *gin.Context) {
	c.JSON(http.StatusOK, dto.FormContext{Form: "reset-password"})
}

// ResetPassword mails a reset link. The answer does not reveal whether the
// address is registered.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var form forms.ResetPasswordForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), form.Email, c.Request.Host); err != nil {
		h.log.Error("password reset failed", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}
	respondMessage(c, http.StatusOK, msgResetSent)
}

// ChangePasswordForm validates a reset link and returns the new password form.
func (h *AuthHandler) ChangePasswordForm(c *gin.Context) {
	user, err := h.authService.CheckResetLink(c.Param("uid"), c.Param("token"))
	if err != nil {
		h.respondLinkError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ChangePasswordContext{Form: "change-password", Email: user.Email})
}

// ChangePassword stores a new password for the user a reset link was issued for.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	uid, tok := c.Param("uid"), c.Param("token")
	if _, err := h.authService.CheckResetLink(uid, tok); err != nil {
		h.respondLinkError(c, err)
		return
	}

	var form forms.ChangePasswordForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}

	if _, err := h.authService.ChangePassword(uid, tok, form.Password); err != nil {
		if errors.Is(err, services.ErrPasswordTooShort) {
			respondFieldError(c, "password", fmt.Sprintf("Ensure this value has at least %d characters.", constants.MinPasswordLength))
			return
		}
		h.respondLinkError(c, err)
		return
	}
	redirect(c, "/sign-in/")
}

func (h *AuthHandler) respondLinkError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrInvalidLink) {
		respondMessage(c, http.StatusOK, msgResetInvalid)
		return
	}
	h.log.Error("password reset link check failed", zap.Error(err))
	apierrors.InternalError(c, "")
}
