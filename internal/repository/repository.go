package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/utils"
)

var (
	// ErrDuplicate is returned when a unique index rejects a write.
	ErrDuplicate = errors.New("repository: duplicate key")
	// ErrReferenced is returned when a row cannot be deleted because other rows point at it.
	ErrReferenced = errors.New("repository: row is referenced")
)

// translate maps driver-level errors that gorm normalized into repository errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrReferenced, err)
	default:
		return err
	}
}

// UserFilter holds filtering options for listing users
type UserFilter struct {
	Query      string
	StaffOnly  bool
	AdminOnly  bool
	Pagination utils.PaginationParams
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithHook inserts user and runs afterCreate in the same
	// transaction; an error from afterCreate rolls the insert back.
	CreateWithHook(user *models.User, afterCreate func(*models.User) error) error

	// FindByID finds a user by ID with sex and country loaded
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindBySlug finds a user by slug with sex and country loaded
	FindBySlug(slug string) (*models.User, error)

	// EmailTaken reports whether another user than excludeID owns email
	EmailTaken(email string, excludeID uint64) (bool, error)

	// SlugExists reports whether a user slug is taken
	SlugExists(slug string) (bool, error)

	// Update saves the user's columns without touching associations
	Update(user *models.User) error

	// List retrieves users with filtering and pagination
	List(filter UserFilter) ([]models.User, int64, error)
}

// PostRepository defines the interface for post data access
type PostRepository interface {
	// CreateWithHook inserts post with its tag links and images, then runs
	// afterCreate in the same transaction.
	CreateWithHook(post *models.Post, afterCreate func(*models.Post) error) error

	// FindByID finds a post by ID with its images
	FindByID(id uint64) (*models.Post, error)

	// FindBySlug finds a post by slug with author, emoji, tags and all images
	FindBySlug(slug string) (*models.Post, error)

	// Feed lists posts newest first; each post carries at most one image,
	// the one with the lowest id.
	Feed(params utils.PaginationParams) ([]models.Post, int64, error)

	// SlugExists reports whether a post slug is taken
	SlugExists(slug string) (bool, error)

	// Delete removes a post with its tag links and image rows and returns
	// the removed images.
	Delete(id uint64) ([]models.PostImage, error)

	// CountByEmoji counts posts using an emoji
	CountByEmoji(emojiID uint64) (int64, error)
}

// CatalogRepository defines data access for tags, emoji and the user
// reference tables.
type CatalogRepository interface {
	ListTags() ([]models.Tag, error)
	FindTagsByIDs(ids []uint64) ([]models.Tag, error)
	CreateTag(tag *models.Tag) error
	DeleteTag(id uint64) error
	TagSlugExists(slug string) (bool, error)

	ListEmojis() ([]models.Emoji, error)
	FindEmojiByID(id uint64) (*models.Emoji, error)
	CreateEmoji(emoji *models.Emoji) error
	DeleteEmoji(id uint64) error
	EmojiSlugExists(slug string) (bool, error)

	ListCountries() ([]models.Country, error)
	FindCountryByID(id uint64) (*models.Country, error)
	CreateCountry(country *models.Country) error
	DeleteCountry(id uint64) error

	ListSexes() ([]models.Sex, error)
	FindSexByID(id uint64) (*models.Sex, error)
	CreateSex(sex *models.Sex) error
	DeleteSex(id uint64) error

	// CountUsersWith counts users whose column ("sex_id" or "country_id") equals id
	CountUsersWith(column string, id uint64) (int64, error)
}

func exists(db *gorm.DB, model any, column, value string) (bool, error) {
	var count int64
	if err := db.Model(model).Where(column+" = ?", value).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
