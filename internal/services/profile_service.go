package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/media"
	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/repository"
)

var (
	ErrNotProfileOwner = errors.New("you can only edit your own profile")
	ErrUnknownSex      = errors.New("select a valid sex")
	ErrUnknownCountry  = errors.New("select a valid country")
)

// ProfileService reads and edits user profiles.
type ProfileService struct {
	userRepo    repository.UserRepository
	catalogRepo repository.CatalogRepository
	storage     media.Storage
	log         *zap.Logger
	now         func() time.Time
}

// NewProfileService creates a new ProfileService.
func NewProfileService(userRepo repository.UserRepository, catalogRepo repository.CatalogRepository, storage media.Storage, log *zap.Logger) *ProfileService {
	return &ProfileService{
		userRepo:    userRepo,
		catalogRepo: catalogRepo,
		storage:     storage,
		log:         log,
		now:         time.Now,
	}
}

// Profile is a user with the choices an edit form offers.
type Profile struct {
	User      *models.User
	Sexes     []models.Sex
	Countries []models.Country
}

// GetProfile returns the profile behind slug if viewer owns it.
func (s *ProfileService) GetProfile(viewer *models.User, slug string) (*Profile, error) {
	user, err := s.ownedUser(viewer, slug)
	if err != nil {
		return nil, err
	}
	return s.withChoices(user)
}

// Choices returns the sex and country options without a user.
func (s *ProfileService) Choices(user *models.User) (*Profile, error) {
	return s.withChoices(user)
}

// UpdateProfileInput carries a validated profile form.
type UpdateProfileInput struct {
	Email     string
	SexID     *uint64
	CountryID *uint64
	Birthday  *time.Time
	// Avatar is nil when no new avatar was uploaded.
	Avatar io.Reader
}

// UpdateProfile applies input to the profile behind slug.
func (s *ProfileService) UpdateProfile(ctx context.Context, viewer *models.User, slug string, input UpdateProfileInput) (*models.User, error) {
	user, err := s.ownedUser(viewer, slug)
	if err != nil {
		return nil, err
	}

	taken, err := s.userRepo.EmailTaken(input.Email, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	if input.SexID != nil {
		if _, err := s.catalogRepo.FindSexByID(*input.SexID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownSex
			}
			return nil, fmt.Errorf("failed to find sex: %w", err)
		}
	}
	if input.CountryID != nil {
		if _, err := s.catalogRepo.FindCountryByID(*input.CountryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownCountry
			}
			return nil, fmt.Errorf("failed to find country: %w", err)
		}
	}

	var avatar *pendingFile
	if input.Avatar != nil {
		normalized, err := normalizeUploads([]io.Reader{input.Avatar}, media.AvatarBox)
		if err != nil {
			return nil, err
		}
		avatar = &pendingFile{
			path:  media.DatedPath(constants.AvatarUploadPrefix, s.now()),
			image: normalized[0],
		}
		if err := saveFiles(ctx, s.storage, []pendingFile{*avatar}, s.log); err != nil {
			return nil, err
		}
	}

	oldAvatar := user.Avatar
	user.Email = input.Email
	user.SexID = input.SexID
	user.CountryID = input.CountryID
	user.Birthday = input.Birthday
	if avatar != nil {
		user.Avatar = avatar.path
	}

	if err := s.userRepo.Update(user); err != nil {
		if avatar != nil {
			removeFiles(ctx, s.storage, []string{avatar.path}, s.log)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	if avatar != nil && oldAvatar != "" && oldAvatar != constants.DefaultAvatarPath {
		removeFiles(ctx, s.storage, []string{oldAvatar}, s.log)
	}
	return s.userRepo.FindByID(user.ID)
}

func (s *ProfileService) ownedUser(viewer *models.User, slug string) (*models.User, error) {
	user, err := s.userRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if viewer == nil || viewer.ID != user.ID {
		return nil, ErrNotProfileOwner
	}
	return user, nil
}

func (s *ProfileService) withChoices(user *models.User) (*Profile, error) {
	sexes, err := s.catalogRepo.ListSexes()
	if err != nil {
		return nil, fmt.Errorf("failed to list sexes: %w", err)
	}
	countries, err := s.catalogRepo.ListCountries()
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	return &Profile{User: user, Sexes: sexes, Countries: countries}, nil
}
