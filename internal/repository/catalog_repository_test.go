package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/testutil"
)

func TestCatalogRepository_Tags(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)

	travel := &models.Tag{Name: "travel", Slug: "travel"}
	require.NoError(t, repo.CreateTag(travel))
	require.NoError(t, repo.CreateTag(&models.Tag{Name: "art", Slug: "art"}))
	assert.ErrorIs(t, repo.CreateTag(&models.Tag{Name: "travel", Slug: "travel-2"}), ErrDuplicate)

	tags, err := repo.ListTags()
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "art", tags[0].Name)

	found, err := repo.FindTagsByIDs([]uint64{travel.ID, 999})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, travel.ID, found[0].ID)

	exists, err := repo.TagSlugExists("travel")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCatalogRepository_DeleteTagUnlinksPosts(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)
	author := testutil.CreateUser(t, db, "ann@example.com", "ann")
	emoji := testutil.CreateEmoji(t, db, "sun")
	tag := testutil.CreateTag(t, db, "travel")
	testutil.CreatePost(t, db, author, emoji, "riga", []models.Tag{*tag})

	require.NoError(t, repo.DeleteTag(tag.ID))

	var links int64
	db.Table("post_tags").Count(&links)
	assert.Zero(t, links)

	assert.ErrorIs(t, repo.DeleteTag(tag.ID), gorm.ErrRecordNotFound)
}

func TestCatalogRepository_ReferenceTables(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)

	sex := &models.Sex{Name: "female"}
	require.NoError(t, repo.CreateSex(sex))
	country := &models.Country{Name: "Estonia"}
	require.NoError(t, repo.CreateCountry(country))

	user := testutil.CreateUser(t, db, "ann@example.com", "ann")
	require.NoError(t, db.Model(user).Updates(map[string]any{"sex_id": sex.ID, "country_id": country.ID}).Error)

	count, err := repo.CountUsersWith("sex_id", sex.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	count, err = repo.CountUsersWith("country_id", country.ID+1)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = repo.CountUsersWith("email", 1)
	assert.Error(t, err)

	got, err := repo.FindCountryByID(country.ID)
	require.NoError(t, err)
	assert.Equal(t, "Estonia", got.Name)

	assert.ErrorIs(t, repo.DeleteSex(sex.ID+100), gorm.ErrRecordNotFound)
}

func TestCatalogRepository_Emojis(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewCatalogRepository(db)

	emoji := &models.Emoji{Name: "sun", Slug: "sun", Image: "blog/emoji/sun.jpg"}
	require.NoError(t, repo.CreateEmoji(emoji))
	assert.ErrorIs(t, repo.CreateEmoji(&models.Emoji{Name: "sun", Slug: "sun", Image: "x"}), ErrDuplicate)

	got, err := repo.FindEmojiByID(emoji.ID)
	require.NoError(t, err)
	assert.Equal(t, "sun", got.Slug)

	require.NoError(t, repo.DeleteEmoji(emoji.ID))
	_, err = repo.FindEmojiByID(emoji.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
