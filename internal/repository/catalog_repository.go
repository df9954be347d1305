package repository

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/models"
)

// GormCatalogRepository is a GORM implementation of CatalogRepository
type GormCatalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &GormCatalogRepository{db: db}
}

func (r *GormCatalogRepository) ListTags() ([]models.Tag, error) {
	var tags []models.Tag
	err := r.db.Order("name ASC").Find(&tags).Error
	return tags, err
}

// FindTagsByIDs returns the tags that exist among ids.
func (r *GormCatalogRepository) FindTagsByIDs(ids []uint64) ([]models.Tag, error) {
	var tags []models.Tag
	if len(ids) == 0 {
		return tags, nil
	}
	err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&tags).Error
	return tags, err
}

func (r *GormCatalogRepository) CreateTag(tag *models.Tag) error {
	return translate(r.db.Create(tag).Error)
}

// DeleteTag removes a tag and its post links.
func (r *GormCatalogRepository) DeleteTag(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		tag := models.Tag{ID: id}
		if err := tx.First(&tag).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM post_tags WHERE tag_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink tag: %w", err)
		}
		return translate(tx.Delete(&tag).Error)
	})
}

func (r *GormCatalogRepository) TagSlugExists(slug string) (bool, error) {
	return exists(r.db, &models.Tag{}, "slug", slug)
}

func (r *GormCatalogRepository) ListEmojis() ([]models.Emoji, error) {
	var emojis []models.Emoji
	err := r.db.Order("id ASC").Find(&emojis).Error
	return emojis, err
}

func (r *GormCatalogRepository) FindEmojiByID(id uint64) (*models.Emoji, error) {
	var emoji models.Emoji
	if err := r.db.First(&emoji, id).Error; err != nil {
		return nil, err
	}
	return &emoji, nil
}

func (r *GormCatalogRepository) CreateEmoji(emoji *models.Emoji) error {
	return translate(r.db.Create(emoji).Error)
}

func (r *GormCatalogRepository) DeleteEmoji(id uint64) error {
	return deleteByID(r.db, &models.Emoji{}, id)
}

func (r *GormCatalogRepository) EmojiSlugExists(slug string) (bool, error) {
	return exists(r.db, &models.Emoji{}, "slug", slug)
}

func (r *GormCatalogRepository) ListCountries() ([]models.Country, error) {
	var countries []models.Country
	err := r.db.Order("name ASC").Find(&countries).Error
	return countries, err
}

func (r *GormCatalogRepository) FindCountryByID(id uint64) (*models.Country, error) {
	var country models.Country
	if err := r.db.First(&country, id).Error; err != nil {
		return nil, err
	}
	return &country, nil
}

func (r *GormCatalogRepository) CreateCountry(country *models.Country) error {
	return translate(r.db.Create(country).Error)
}

func (r *GormCatalogRepository) DeleteCountry(id uint64) error {
	return deleteByID(r.db, &models.Country{}, id)
}

func (r *GormCatalogRepository) ListSexes() ([]models.Sex, error) {
	var sexes []models.Sex
	err := r.db.Order("id ASC").Find(&sexes).Error
	return sexes, err
}

func (r *GormCatalogRepository) FindSexByID(id uint64) (*models.Sex, error) {
	var sex models.Sex
	if err := r.db.First(&sex, id).Error; err != nil {
		return nil, err
	}
	return &sex, nil
}

func (r *GormCatalogRepository) CreateSex(sex *models.Sex) error {
	return translate(r.db.Create(sex).Error)
}

func (r *GormCatalogRepository) DeleteSex(id uint64) error {
	return deleteByID(r.db, &models.Sex{}, id)
}

func (r *GormCatalogRepository) CountUsersWith(column string, id uint64) (int64, error) {
	switch column {
	case "sex_id", "country_id":
	default:
		return 0, fmt.Errorf("unsupported user reference column %q", column)
	}
	var count int64
	err := r.db.Model(&models.User{}).Where(column+" = ?", id).Count(&count).Error
	return count, err
}

// deleteByID deletes one row and reports gorm.ErrRecordNotFound when nothing matched.
func deleteByID(db *gorm.DB, model any, id uint64) error {
	result := db.Delete(model, id)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
