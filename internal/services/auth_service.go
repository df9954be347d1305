package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/mail"
	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/repository"
	"github.com/yukikurage/geoblog/internal/slugs"
	"github.com/yukikurage/geoblog/internal/token"
)

var (
	ErrEmailTaken           = errors.New("a user with this email already exists")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrAccountInactive      = errors.New("account is not activated")
	ErrInvalidLink          = errors.New("link is no longer valid")
	ErrPasswordTooShort     = errors.New("password too short")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
	ErrMailFailed           = errors.New("failed to send email")
)

// Site describes how links in outbound mail are built. An empty Domain
// falls back to the host of the request that triggered the mail.
type Site struct {
	Protocol string
	Domain   string
}

// AuthService handles the account lifecycle: registration, activation,
// login and password reset.
type AuthService struct {
	userRepo repository.UserRepository
	tokens   *token.Issuer
	mailer   mail.Mailer
	site     Site
	log      *zap.Logger
	hashCost int

	// background tracks reset mails sent after the request has returned.
	background sync.WaitGroup
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repository.UserRepository, tokens *token.Issuer, mailer mail.Mailer, site Site, log *zap.Logger) *AuthService {
	return &AuthService{
		userRepo: userRepo,
		tokens:   tokens,
		mailer:   mailer,
		site:     site,
		log:      log,
		hashCost: bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost; tests use bcrypt.MinCost.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.hashCost = cost
	return s
}

// RegisterInput represents the required information to create a new user.
type RegisterInput struct {
	Email    string
	Password string
	// Host of the request, used when no site domain is configured.
	Host string
}

// Register creates an inactive, unconfirmed user and mails an activation
// link. The user is not kept if the mail cannot be sent.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	if len(input.Password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	taken, err := s.userRepo.EmailTaken(input.Email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := s.hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	base, err := slugs.MakeOr(slugs.FromEmail(input.Email), "user")
	if err != nil {
		return nil, err
	}
	slug, err := slugs.Unique(base, s.userRepo.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate user slug: %w", err)
	}

	user := &models.User{
		Email:        input.Email,
		PasswordHash: hash,
		Avatar:       constants.DefaultAvatarPath,
		Slug:         slug,
	}

	err = s.userRepo.CreateWithHook(user, func(u *models.User) error {
		msg, err := mail.ActivationMessage(s.linkData(u, input.Host))
		if err != nil {
			return err
		}
		if err := s.mailer.Send(ctx, msg); err != nil {
			return fmt.Errorf("%w: %v", ErrMailFailed, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			if taken, checkErr := s.userRepo.EmailTaken(input.Email, 0); checkErr == nil && taken {
				return nil, ErrEmailTaken
			}
		}
		if errors.Is(err, ErrMailFailed) {
			s.log.Error("activation mail failed", zap.String("email", input.Email), zap.Error(err))
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	accountEvents.WithLabelValues("registered").Inc()
	return user, nil
}

// Activate confirms the account the link was issued for. Following the
// same link again fails because confirming changes the token digest.
func (s *AuthService) Activate(uid, tok string) (*models.User, error) {
	user, err := s.userFromLink(uid, tok)
	if err != nil {
		return nil, err
	}

	user.IsActive = true
	user.SignupConfirmed = true
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to activate user: %w", err)
	}

	accountEvents.WithLabelValues("activated").Inc()
	return user, nil
}

// LoginInput holds the credentials for authentication.
type LoginInput struct {
	Email    string
	Password string
}

// Login verifies credentials and returns the authenticated user.
func (s *AuthService) Login(input LoginInput) (*models.User, error) {
	user, err := s.userRepo.FindByEmail(input.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return user, nil
}

// RequestPasswordReset mails a reset link when an account with email
// exists. The outcome is the same either way so callers cannot tell
// whether the address is registered. The mail is delivered in the
// background so response time does not depend on the answer either.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email, host string) error {
	user, err := s.userRepo.FindByEmail(email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Debug("password reset for unknown email", zap.String("email", email))
			return nil
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	msg, err := mail.ResetMessage(s.linkData(user, host))
	if err != nil {
		return err
	}

	sendCtx := context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		if err := s.mailer.Send(sendCtx, msg); err != nil {
			s.log.Error("password reset mail failed", zap.Uint64("user_id", user.ID), zap.Error(err))
			return
		}
		accountEvents.WithLabelValues("reset_requested").Inc()
	}()
	return nil
}

// Wait blocks until background reset mails have been handed to the mailer.
func (s *AuthService) Wait() {
	s.background.Wait()
}

// CheckResetLink returns the user a password reset link was issued for.
func (s *AuthService) CheckResetLink(uid, tok string) (*models.User, error) {
	return s.userFromLink(uid, tok)
}

// ChangePassword validates the reset link again and stores the new password.
func (s *AuthService) ChangePassword(uid, tok, password string) (*models.User, error) {
	if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	user, err := s.userFromLink(uid, tok)
	if err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash
	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	accountEvents.WithLabelValues("password_changed").Inc()
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(id uint64) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// userFromLink resolves uid and checks tok against the user's current state.
// Malformed uids and unknown users are reported as invalid links.
func (s *AuthService) userFromLink(uid, tok string) (*models.User, error) {
	id, err := token.DecodeUID(uid)
	if err != nil {
		return nil, ErrInvalidLink
	}

	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidLink
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.tokens.Check(tokenSubject{user}, tok) {
		return nil, ErrInvalidLink
	}
	return user, nil
}

func (s *AuthService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return "", ErrFailedToHashPassword
	}
	return string(hash), nil
}

func (s *AuthService) linkData(user *models.User, host string) mail.LinkData {
	domain := s.site.Domain
	if domain == "" {
		domain = host
	}
	protocol := s.site.Protocol
	if protocol == "" {
		protocol = "http"
	}
	return mail.LinkData{
		Email:    user.Email,
		Protocol: protocol,
		Domain:   domain,
		UID:      token.EncodeUID(user.ID),
		Token:    s.tokens.Make(tokenSubject{user}),
	}
}

// tokenSubject exposes the user fields the token digest covers.
type tokenSubject struct {
	user *models.User
}

func (t tokenSubject) TokenID() uint64      { return t.user.ID }
func (t tokenSubject) TokenConfirmed() bool { return t.user.SignupConfirmed }
