package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/media"
	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/repository"
	"github.com/yukikurage/geoblog/internal/slugs"
	"github.com/yukikurage/geoblog/internal/utils"
)

var (
	ErrNotFound      = errors.New("resource not found")
	ErrInUse         = errors.New("resource is still referenced")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrNameRequired  = errors.New("name is required")
	ErrNameTooLong   = errors.New("name is too long")
)

// AdminService backs the administrative endpoints and the admin CLI.
type AdminService struct {
	userRepo    repository.UserRepository
	postRepo    repository.PostRepository
	catalogRepo repository.CatalogRepository
	storage     media.Storage
	log         *zap.Logger
	hashCost    int
}

// NewAdminService creates a new AdminService.
func NewAdminService(userRepo repository.UserRepository, postRepo repository.PostRepository, catalogRepo repository.CatalogRepository, storage media.Storage, log *zap.Logger) *AdminService {
	return &AdminService{
		userRepo:    userRepo,
		postRepo:    postRepo,
		catalogRepo: catalogRepo,
		storage:     storage,
		log:         log,
		hashCost:    bcrypt.DefaultCost,
	}
}

// WithHashCost overrides the bcrypt cost.
func (s *AdminService) WithHashCost(cost int) *AdminService {
	s.hashCost = cost
	return s
}

// ListUsers returns users matching filter.
func (s *AdminService) ListUsers(filter repository.UserFilter) ([]models.User, int64, error) {
	users, total, err := s.userRepo.List(filter)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateUserInput holds the administrative user flags; nil fields are left alone.
type UpdateUserInput struct {
	IsActive        *bool
	Staff           *bool
	Admin           *bool
	SignupConfirmed *bool
	SexID           *uint64
}

// UpdateUser changes a user's flags.
func (s *AdminService) UpdateUser(id uint64, input UpdateUserInput) (*models.User, error) {
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if input.SexID != nil {
		if _, err := s.catalogRepo.FindSexByID(*input.SexID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUnknownSex
			}
			return nil, fmt.Errorf("failed to find sex: %w", err)
		}
		user.SexID = input.SexID
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Staff != nil {
		user.Staff = *input.Staff
	}
	if input.Admin != nil {
		user.Admin = *input.Admin
	}
	if input.SignupConfirmed != nil {
		user.SignupConfirmed = *input.SignupConfirmed
	}

	if err := s.userRepo.Update(user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return s.userRepo.FindByID(id)
}

// CreatePrivilegedUser creates an active, confirmed staff user, with the
// admin flag when admin is set.
func (s *AdminService) CreatePrivilegedUser(email, password string, admin bool) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email %q", email)
	}
	if len(password) < constants.MinPasswordLength {
		return nil, ErrPasswordTooShort
	}

	taken, err := s.userRepo.EmailTaken(email, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if taken {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}
	base, err := slugs.MakeOr(slugs.FromEmail(email), "user")
	if err != nil {
		return nil, err
	}
	slug, err := slugs.Unique(base, s.userRepo.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate user slug: %w", err)
	}

	user := &models.User{
		Email:           email,
		PasswordHash:    string(hash),
		IsActive:        true,
		SignupConfirmed: true,
		Staff:           true,
		Admin:           admin,
		Avatar:          constants.DefaultAvatarPath,
		Slug:            slug,
	}
	if err := s.userRepo.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *AdminService) ListCountries() ([]models.Country, error) {
	return s.catalogRepo.ListCountries()
}

func (s *AdminService) CreateCountry(name string) (*models.Country, error) {
	name, err := cleanName(name, constants.MaxCountryNameLength)
	if err != nil {
		return nil, err
	}
	country := &models.Country{Name: name}
	if err := s.catalogRepo.CreateCountry(country); err != nil {
		return nil, fmt.Errorf("failed to create country: %w", err)
	}
	return country, nil
}

// DeleteCountry removes a country no user refers to.
func (s *AdminService) DeleteCountry(id uint64) error {
	return s.deleteReference("country_id", id, s.catalogRepo.DeleteCountry)
}

func (s *AdminService) ListSexes() ([]models.Sex, error) {
	return s.catalogRepo.ListSexes()
}

func (s *AdminService) CreateSex(name string) (*models.Sex, error) {
	name, err := cleanName(name, constants.MaxSexNameLength)
	if err != nil {
		return nil, err
	}
	sex := &models.Sex{Name: name}
	if err := s.catalogRepo.CreateSex(sex); err != nil {
		return nil, fmt.Errorf("failed to create sex: %w", err)
	}
	return sex, nil
}

// DeleteSex removes a sex no user refers to.
func (s *AdminService) DeleteSex(id uint64) error {
	return s.deleteReference("sex_id", id, s.catalogRepo.DeleteSex)
}

func (s *AdminService) deleteReference(column string, id uint64, del func(uint64) error) error {
	count, err := s.catalogRepo.CountUsersWith(column, id)
	if err != nil {
		return fmt.Errorf("failed to count references: %w", err)
	}
	if count > 0 {
		return ErrInUse
	}
	return mapDeleteError(del(id))
}

func (s *AdminService) ListTags() ([]models.Tag, error) {
	return s.catalogRepo.ListTags()
}

// CreateTag creates a tag with a slug derived from its name.
func (s *AdminService) CreateTag(name string) (*models.Tag, error) {
	name, err := cleanName(name, constants.MaxTagNameLength)
	if err != nil {
		return nil, err
	}
	base, err := slugs.MakeOr(name, "tag")
	if err != nil {
		return nil, err
	}
	slug, err := slugs.Unique(base, s.catalogRepo.TagSlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate tag slug: %w", err)
	}

	tag := &models.Tag{Name: name, Slug: slug}
	if err := s.catalogRepo.CreateTag(tag); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// DeleteTag removes a tag and unlinks it from posts.
func (s *AdminService) DeleteTag(id uint64) error {
	return mapDeleteError(s.catalogRepo.DeleteTag(id))
}

func (s *AdminService) ListEmojis() ([]models.Emoji, error) {
	return s.catalogRepo.ListEmojis()
}

// CreateEmoji normalizes image and stores a new emoji.
func (s *AdminService) CreateEmoji(ctx context.Context, name string, image io.Reader) (*models.Emoji, error) {
	name, err := cleanName(name, constants.MaxEmojiNameLength)
	if err != nil {
		return nil, err
	}
	normalized, err := normalizeUploads([]io.Reader{image}, media.EmojiBox)
	if err != nil {
		return nil, err
	}

	base, err := slugs.MakeOr(name, "emoji")
	if err != nil {
		return nil, err
	}
	slug, err := slugs.Unique(base, s.catalogRepo.EmojiSlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate emoji slug: %w", err)
	}

	file := pendingFile{path: media.FlatPath(constants.EmojiUploadPrefix), image: normalized[0]}
	if err := saveFiles(ctx, s.storage, []pendingFile{file}, s.log); err != nil {
		return nil, err
	}

	emoji := &models.Emoji{Name: name, Slug: slug, Image: file.path}
	if err := s.catalogRepo.CreateEmoji(emoji); err != nil {
		removeFiles(ctx, s.storage, []string{file.path}, s.log)
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create emoji: %w", err)
	}
	return emoji, nil
}

// DeleteEmoji removes an emoji no post uses, with its image.
func (s *AdminService) DeleteEmoji(ctx context.Context, id uint64) error {
	emoji, err := s.catalogRepo.FindEmojiByID(id)
	if err != nil {
		return mapDeleteError(err)
	}
	count, err := s.postRepo.CountByEmoji(id)
	if err != nil {
		return fmt.Errorf("failed to count posts: %w", err)
	}
	if count > 0 {
		return ErrInUse
	}
	if err := mapDeleteError(s.catalogRepo.DeleteEmoji(id)); err != nil {
		return err
	}
	removeFiles(ctx, s.storage, []string{emoji.Image}, s.log)
	return nil
}

// ListPosts returns posts newest first.
func (s *AdminService) ListPosts(params utils.PaginationParams) ([]models.Post, int64, error) {
	return s.postRepo.Feed(params)
}

// DeletePost removes a post with its images and their files.
func (s *AdminService) DeletePost(ctx context.Context, id uint64) error {
	images, err := s.postRepo.Delete(id)
	if err != nil {
		return mapDeleteError(err)
	}
	paths := make([]string, len(images))
	for i, img := range images {
		paths[i] = img.Path
	}
	removeFiles(ctx, s.storage, paths, s.log)
	return nil
}

func cleanName(name string, limit int) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ErrNameRequired
	}
	if len([]rune(name)) > limit {
		return "", ErrNameTooLong
	}
	return name, nil
}

func mapDeleteError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrReferenced):
		return ErrInUse
	default:
		return err
	}
}
