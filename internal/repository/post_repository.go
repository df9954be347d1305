package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/database"
	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/utils"
)

// GormPostRepository is a GORM implementation of PostRepository
type GormPostRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &GormPostRepository{db: db}
}

// CreateWithHook creates a post with its tag links and images atomically.
// Tags must already exist; only their ids are used.
func (r *GormPostRepository) CreateWithHook(post *models.Post, afterCreate func(*models.Post) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Author", "Emoji", "Tags.*").Create(post).Error; err != nil {
			return translate(err)
		}
		if afterCreate == nil {
			return nil
		}
		return afterCreate(post)
	})
}

func (r *GormPostRepository) FindByID(id uint64) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("post_images.id ASC") }).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormPostRepository) FindBySlug(slug string) (*models.Post, error) {
	var post models.Post
	err := r.db.
		Preload("Author").
		Preload("Emoji").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("post_images.id ASC") }).
		Where("slug = ?", slug).
		First(&post).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormPostRepository) Feed(params utils.PaginationParams) ([]models.Post, int64, error) {
	var total int64
	if err := r.db.Model(&models.Post{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count posts: %w", err)
	}

	var posts []models.Post
	err := r.db.
		Preload("Author").
		Preload("Emoji").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.name ASC") }).
		Scopes(database.NewestFirst, database.Paginate(params)).
		Find(&posts).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list posts: %w", err)
	}
	if len(posts) == 0 {
		return posts, total, nil
	}

	ids := make([]uint64, len(posts))
	for i := range posts {
		ids[i] = posts[i].ID
	}

	first := r.db.Model(&models.PostImage{}).
		Select("MIN(id)").
		Where("post_id IN ?", ids).
		Group("post_id")

	var covers []models.PostImage
	if err := r.db.Where("id IN (?)", first).Find(&covers).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to load cover images: %w", err)
	}

	byPost := make(map[uint64]models.PostImage, len(covers))
	for _, img := range covers {
		byPost[img.PostID] = img
	}
	for i := range posts {
		if img, ok := byPost[posts[i].ID]; ok {
			posts[i].Images = []models.PostImage{img}
		}
	}
	return posts, total, nil
}

func (r *GormPostRepository) SlugExists(slug string) (bool, error) {
	return exists(r.db, &models.Post{}, "slug", slug)
}

func (r *GormPostRepository) Delete(id uint64) ([]models.PostImage, error) {
	var images []models.PostImage
	err := r.db.Transaction(func(tx *gorm.DB) error {
		post := models.Post{ID: id}
		if err := tx.First(&post).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Find(&images).Error; err != nil {
			return err
		}
		if err := tx.Model(&post).Association("Tags").Clear(); err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostImage{}).Error; err != nil {
			return err
		}
		return tx.Delete(&post).Error
	})
	if err != nil {
		return nil, err
	}
	return images, nil
}

func (r *GormPostRepository) CountByEmoji(emojiID uint64) (int64, error) {
	var count int64
	err := r.db.Model(&models.Post{}).Where("emoji_id = ?", emojiID).Count(&count).Error
	return count, err
}
