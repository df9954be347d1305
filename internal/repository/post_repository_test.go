package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/testutil"
	"github.com/yukikurage/geoblog/internal/utils"
)

type PostRepositoryTestSuite struct {
	suite.Suite
	db     *gorm.DB
	repo   PostRepository
	author *models.User
	emoji  *models.Emoji
	tags   []models.Tag
}

func (s *PostRepositoryTestSuite) SetupTest() {
	s.db = testutil.NewDB(s.T())
	s.repo = NewPostRepository(s.db)
	s.author = testutil.CreateUser(s.T(), s.db, "ann@example.com", "ann")
	s.emoji = testutil.CreateEmoji(s.T(), s.db, "sun")
	s.tags = []models.Tag{
		*testutil.CreateTag(s.T(), s.db, "travel"),
		*testutil.CreateTag(s.T(), s.db, "food"),
	}
}

func (s *PostRepositoryTestSuite) TestCreateWithHook() {
	post := &models.Post{
		AuthorID: s.author.ID,
		Title:    "Riga",
		Text:     "Old town",
		Slug:     "riga",
		EmojiID:  s.emoji.ID,
		Tags:     []models.Tag{{ID: s.tags[0].ID}, {ID: s.tags[1].ID}},
		Images:   []models.PostImage{{Path: "a.jpg"}, {Path: "b.jpg"}},
	}
	called := false
	s.Require().NoError(s.repo.CreateWithHook(post, func(p *models.Post) error {
		called = true
		s.NotZero(p.ID)
		s.NotZero(p.Images[0].PostID)
		return nil
	}))
	s.True(called)

	got, err := s.repo.FindBySlug("riga")
	s.Require().NoError(err)
	s.Equal("ann@example.com", got.Author.Email)
	s.Equal("sun", got.Emoji.Name)
	s.Len(got.Tags, 2)
	s.Equal("food", got.Tags[0].Name)
	s.Require().Len(got.Images, 2)
	s.Equal("a.jpg", got.Images[0].Path)

	// the tag rows themselves are left untouched
	var tagCount int64
	s.db.Model(&models.Tag{}).Count(&tagCount)
	s.EqualValues(2, tagCount)
}

func (s *PostRepositoryTestSuite) TestCreateWithHook_RollsBack() {
	post := &models.Post{
		AuthorID: s.author.ID,
		Title:    "Riga",
		Text:     "Old town",
		Slug:     "riga",
		EmojiID:  s.emoji.ID,
		Tags:     []models.Tag{{ID: s.tags[0].ID}},
		Images:   []models.PostImage{{Path: "a.jpg"}},
	}
	hookErr := errors.New("storage unavailable")
	s.ErrorIs(s.repo.CreateWithHook(post, func(*models.Post) error { return hookErr }), hookErr)

	var posts, images, links int64
	s.db.Model(&models.Post{}).Count(&posts)
	s.db.Model(&models.PostImage{}).Count(&images)
	s.db.Table("post_tags").Count(&links)
	s.Zero(posts)
	s.Zero(images)
	s.Zero(links)
}

func (s *PostRepositoryTestSuite) TestCreate_DuplicateSlug() {
	testutil.CreatePost(s.T(), s.db, s.author, s.emoji, "riga", s.tags[:1])

	post := &models.Post{AuthorID: s.author.ID, Title: "Riga", Text: "x", Slug: "riga", EmojiID: s.emoji.ID}
	s.ErrorIs(s.repo.CreateWithHook(post, nil), ErrDuplicate)
}

func (s *PostRepositoryTestSuite) TestFeed_NewestFirstWithCover() {
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	slugs := []string{"first", "second", "third", "fourth", "fifth"}
	for i, slug := range slugs {
		p := testutil.CreatePost(s.T(), s.db, s.author, s.emoji, slug, s.tags, slug+"-1.jpg", slug+"-2.jpg")
		s.Require().NoError(s.db.Model(p).UpdateColumn("created_at", base.Add(time.Duration(i)*time.Hour)).Error)
	}

	posts, total, err := s.repo.Feed(utils.NewPaginationParams(1, 4))
	s.Require().NoError(err)
	s.EqualValues(5, total)
	s.Require().Len(posts, 4)
	s.Equal("fifth", posts[0].Slug)
	s.Equal("second", posts[3].Slug)

	for _, p := range posts {
		s.Require().Len(p.Images, 1)
		s.Equal(p.Slug+"-1.jpg", p.Images[0].Path)
		s.Len(p.Tags, 2)
		s.Equal(s.author.ID, p.Author.ID)
	}

	posts, _, err = s.repo.Feed(utils.NewPaginationParams(2, 4))
	s.Require().NoError(err)
	s.Require().Len(posts, 1)
	s.Equal("first", posts[0].Slug)
}

func (s *PostRepositoryTestSuite) TestFeed_PostWithoutImages() {
	testutil.CreatePost(s.T(), s.db, s.author, s.emoji, "bare", s.tags[:1])

	posts, total, err := s.repo.Feed(utils.NewPaginationParams(1, 4))
	s.Require().NoError(err)
	s.EqualValues(1, total)
	s.Require().Len(posts, 1)
	s.Empty(posts[0].Images)
}

func (s *PostRepositoryTestSuite) TestDelete() {
	p := testutil.CreatePost(s.T(), s.db, s.author, s.emoji, "gone", s.tags, "x.jpg")

	images, err := s.repo.Delete(p.ID)
	s.Require().NoError(err)
	s.Require().Len(images, 1)
	s.Equal("x.jpg", images[0].Path)

	_, err = s.repo.FindByID(p.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)

	var links int64
	s.db.Table("post_tags").Count(&links)
	s.Zero(links)

	_, err = s.repo.Delete(p.ID)
	s.ErrorIs(err, gorm.ErrRecordNotFound)
}

func (s *PostRepositoryTestSuite) TestSlugExistsAndCountByEmoji() {
	testutil.CreatePost(s.T(), s.db, s.author, s.emoji, "here", s.tags[:1])

	found, err := s.repo.SlugExists("here")
	s.Require().NoError(err)
	s.True(found)

	count, err := s.repo.CountByEmoji(s.emoji.ID)
	s.Require().NoError(err)
	s.EqualValues(1, count)
}

func TestPostRepositoryTestSuite(t *testing.T) {
	suite.Run(t, new(PostRepositoryTestSuite))
}
