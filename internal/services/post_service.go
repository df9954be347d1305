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
	"github.com/yukikurage/geoblog/internal/slugs"
	"github.com/yukikurage/geoblog/internal/utils"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrPageNotFound = errors.New("page not found")
	ErrUnknownTag   = errors.New("select a valid tag")
	ErrUnknownEmoji = errors.New("select a valid emoji")
	ErrSlugTaken    = errors.New("a post with a similar title already exists")
)

// PostService handles post authoring and the read-only feed and detail views.
type PostService struct {
	postRepo    repository.PostRepository
	catalogRepo repository.CatalogRepository
	storage     media.Storage
	pageSize    int
	log         *zap.Logger
	now         func() time.Time
}

// NewPostService creates a new PostService.
func NewPostService(postRepo repository.PostRepository, catalogRepo repository.CatalogRepository, storage media.Storage, pageSize int, log *zap.Logger) *PostService {
	if pageSize < 1 {
		pageSize = constants.DefaultFeedPageSize
	}
	return &PostService{
		postRepo:    postRepo,
		catalogRepo: catalogRepo,
		storage:     storage,
		pageSize:    pageSize,
		log:         log,
		now:         time.Now,
	}
}

// PostChoices are the options a create-post form offers.
type PostChoices struct {
	Tags   []models.Tag
	Emojis []models.Emoji
}

// Choices lists tags and emoji for the create-post form.
func (s *PostService) Choices() (*PostChoices, error) {
	tags, err := s.catalogRepo.ListTags()
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	emojis, err := s.catalogRepo.ListEmojis()
	if err != nil {
		return nil, fmt.Errorf("failed to list emojis: %w", err)
	}
	return &PostChoices{Tags: tags, Emojis: emojis}, nil
}

// CreatePostInput carries a validated create-post form.
type CreatePostInput struct {
	Title   string
	Text    string
	TagIDs  []uint64
	EmojiID uint64
	Lat     float64
	Lon     float64
	Images  []io.Reader
}

// CreatePost stores a post by author. Every image is normalized before
// anything is written; one bad image rejects the whole post.
func (s *PostService) CreatePost(ctx context.Context, author *models.User, input CreatePostInput) (*models.Post, error) {
	tags, err := s.catalogRepo.FindTagsByIDs(input.TagIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find tags: %w", err)
	}
	if len(input.TagIDs) == 0 || len(tags) != len(input.TagIDs) {
		return nil, ErrUnknownTag
	}

	if _, err := s.catalogRepo.FindEmojiByID(input.EmojiID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownEmoji
		}
		return nil, fmt.Errorf("failed to find emoji: %w", err)
	}

	normalized, err := normalizeUploads(input.Images, media.PostBox)
	if err != nil {
		return nil, err
	}

	base, err := slugs.MakeOr(input.Title, "post")
	if err != nil {
		return nil, err
	}
	slug, err := slugs.Unique(base, s.postRepo.SlugExists)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate post slug: %w", err)
	}

	now := s.now()
	files := make([]pendingFile, len(normalized))
	images := make([]models.PostImage, len(normalized))
	for i, img := range normalized {
		files[i] = pendingFile{path: media.DatedPath(constants.PostUploadPrefix, now), image: img}
		images[i] = models.PostImage{
			Path:      files[i].path,
			Width:     img.Width,
			Height:    img.Height,
			SizeBytes: int64(len(img.Data)),
		}
	}

	links := make([]models.Tag, len(tags))
	for i, tag := range tags {
		links[i] = models.Tag{ID: tag.ID}
	}

	post := &models.Post{
		AuthorID: author.ID,
		Title:    input.Title,
		Text:     input.Text,
		Slug:     slug,
		Lat:      input.Lat,
		Lon:      input.Lon,
		EmojiID:  input.EmojiID,
		Tags:     links,
		Images:   images,
	}

	stored := false
	err = s.postRepo.CreateWithHook(post, func(*models.Post) error {
		if err := saveFiles(ctx, s.storage, files, s.log); err != nil {
			return err
		}
		stored = true
		return nil
	})
	if err != nil {
		if stored {
			// the commit failed after the files were written
			paths := make([]string, len(files))
			for i, f := range files {
				paths[i] = f.path
			}
			removeFiles(ctx, s.storage, paths, s.log)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrSlugTaken
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}

	postsCreated.Inc()
	s.log.Info("post created",
		zap.Uint64("post_id", post.ID),
		zap.Uint64("author_id", author.ID),
		zap.Int("images", len(images)),
	)
	return post, nil
}

// FeedPage is one page of the home feed.
type FeedPage struct {
	Posts      []models.Post
	Pagination utils.PaginationResponse
}

// Feed returns page of the feed, newest posts first. A page past the last
// one is ErrPageNotFound; the first page of an empty feed is not.
func (s *PostService) Feed(page int) (*FeedPage, error) {
	params := utils.NewPaginationParams(page, s.pageSize)
	posts, total, err := s.postRepo.Feed(params)
	if err != nil {
		return nil, fmt.Errorf("failed to load feed: %w", err)
	}
	if params.Page > 1 && len(posts) == 0 {
		return nil, ErrPageNotFound
	}
	return &FeedPage{
		Posts:      posts,
		Pagination: utils.NewPaginationResponse(params, total),
	}, nil
}

// Detail returns a post with all of its images.
func (s *PostService) Detail(slug string) (*models.Post, error) {
	post, err := s.postRepo.FindBySlug(slug)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("failed to find post: %w", err)
	}
	return post, nil
}
