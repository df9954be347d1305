package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/constants"
	"github.com/yukikurage/geoblog/internal/models"
)

// Password is the plain-text password of users made by CreateUser.
const Password = "correct-horse"

var passwordHash string

func init() {
	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	passwordHash = string(hash)
}

// CreateUser inserts an active, confirmed user.
func CreateUser(t *testing.T, db *gorm.DB, email, slug string) *models.User {
	t.Helper()
	user := &models.User{
		Email:           email,
		PasswordHash:    passwordHash,
		IsActive:        true,
		SignupConfirmed: true,
		Avatar:          constants.DefaultAvatarPath,
		Slug:            slug,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

// CreateTag inserts a tag whose slug equals its name.
func CreateTag(t *testing.T, db *gorm.DB, name string) *models.Tag {
	t.Helper()
	tag := &models.Tag{Name: name, Slug: name}
	require.NoError(t, db.Create(tag).Error)
	return tag
}

// CreateEmoji inserts an emoji.
func CreateEmoji(t *testing.T, db *gorm.DB, name string) *models.Emoji {
	t.Helper()
	emoji := &models.Emoji{Name: name, Slug: name, Image: constants.EmojiUploadPrefix + "/" + name + ".jpg"}
	require.NoError(t, db.Create(emoji).Error)
	return emoji
}

// CreatePost inserts a post with the given tags and image paths.
func CreatePost(t *testing.T, db *gorm.DB, author *models.User, emoji *models.Emoji, slug string, tags []models.Tag, images ...string) *models.Post {
	t.Helper()
	post := &models.Post{
		AuthorID: author.ID,
		Title:    slug,
		Text:     "text of " + slug,
		Slug:     slug,
		Lat:      56.95,
		Lon:      24.1,
		EmojiID:  emoji.ID,
		Tags:     tags,
	}
	for _, p := range images {
		post.Images = append(post.Images, models.PostImage{Path: p, Width: 10, Height: 10})
	}
	require.NoError(t, db.Omit("Author", "Emoji", "Tags.*").Create(post).Error)
	return post
}
