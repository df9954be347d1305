package repository

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return translate(r.db.Omit("Sex", "Country").Create(user).Error)
}

// CreateWithHook creates a user and runs afterCreate atomically.
func (r *GormUserRepository) CreateWithHook(user *models.User, afterCreate func(*models.User) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Sex", "Country").Create(user).Error; err != nil {
			return translate(err)
		}
		if afterCreate == nil {
			return nil
		}
		return afterCreate(user)
	})
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Sex").Preload("Country").First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindBySlug finds a user by slug
func (r *GormUserRepository) FindBySlug(slug string) (*models.User, error) {
	var user models.User
	if err := r.db.Preload("Sex").Preload("Country").Where("slug = ?", slug).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *GormUserRepository) EmailTaken(email string, excludeID uint64) (bool, error) {
	var count int64
	query := r.db.Model(&models.User{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *GormUserRepository) SlugExists(slug string) (bool, error) {
	return exists(r.db, &models.User{}, "slug", slug)
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return translate(r.db.Omit("Sex", "Country", "Posts").Save(user).Error)
}

// List retrieves users ordered by id
func (r *GormUserRepository) List(filter UserFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	if q := strings.TrimSpace(filter.Query); q != "" {
		query = query.Where("LOWER(email) LIKE ?", "%"+strings.ToLower(q)+"%")
	}
	if filter.AdminOnly {
		query = query.Where("admin = ?", true)
	}
	if filter.StaffOnly {
		query = query.Where("staff = ? OR admin = ?", true, true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	var users []models.User
	err := query.
		Preload("Sex").
		Preload("Country").
		Order("id ASC").
		Offset(filter.Pagination.Offset).
		Limit(filter.Pagination.Limit).
		Find(&users).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}
