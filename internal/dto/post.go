package dto

import (
	"time"

	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/utils"
)

// TagDTO represents a tag
type TagDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// EmojiDTO represents an emoji
type EmojiDTO struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	ImageURL string `json:"image_url"`
}

// ImageDTO represents a stored post image
type ImageDTO struct {
	ID     uint64 `json:"id"`
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// PostDTO represents a post in the feed
type PostDTO struct {
	ID        uint64    `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	Slug      string    `json:"slug"`
	Lat       float64   `json:"lat"`
	Lon       float64   `json:"lon"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    AuthorDTO `json:"author"`
	Emoji     EmojiDTO  `json:"emoji"`
	Tags      []TagDTO  `json:"tags"`
	Cover     *ImageDTO `json:"cover,omitempty"`
}

// PostDetailDTO represents a post with every image
type PostDetailDTO struct {
	PostDTO
	Images     []ImageDTO `json:"images"`
	ImageCount int        `json:"image_count"`
}

// FeedContext is the view context of the home page
type FeedContext struct {
	Posts      []PostDTO                `json:"posts"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// CreatePostContext lists the choices of the create-post form
type CreatePostContext struct {
	Tags   []TagDTO   `json:"tags"`
	Emojis []EmojiDTO `json:"emojis"`
}

func ToTagDTO(tag models.Tag) TagDTO {
	return TagDTO{ID: tag.ID, Name: tag.Name, Slug: tag.Slug}
}

func ToTagDTOs(tags []models.Tag) []TagDTO {
	out := make([]TagDTO, len(tags))
	for i, t := range tags {
		out[i] = ToTagDTO(t)
	}
	return out
}

func ToEmojiDTO(emoji models.Emoji, url URLFunc) EmojiDTO {
	return EmojiDTO{ID: emoji.ID, Name: emoji.Name, Slug: emoji.Slug, ImageURL: url(emoji.Image)}
}

func ToEmojiDTOs(emojis []models.Emoji, url URLFunc) []EmojiDTO {
	out := make([]EmojiDTO, len(emojis))
	for i, e := range emojis {
		out[i] = ToEmojiDTO(e, url)
	}
	return out
}

func ToImageDTO(img models.PostImage, url URLFunc) ImageDTO {
	return ImageDTO{ID: img.ID, URL: url(img.Path), Width: img.Width, Height: img.Height}
}

// ToPostDTO converts a Post model to PostDTO; the first loaded image is the cover
func ToPostDTO(post models.Post, url URLFunc) PostDTO {
	dto := PostDTO{
		ID:        post.ID,
		Title:     post.Title,
		Text:      post.Text,
		Slug:      post.Slug,
		Lat:       post.Lat,
		Lon:       post.Lon,
		CreatedAt: post.CreatedAt,
		UpdatedAt: post.UpdatedAt,
		Author:    ToAuthorDTO(post.Author, url),
		Emoji:     ToEmojiDTO(post.Emoji, url),
		Tags:      ToTagDTOs(post.Tags),
	}

	if len(post.Images) > 0 {
		cover := ToImageDTO(post.Images[0], url)
		dto.Cover = &cover
	}

	return dto
}

// ToPostDetailDTO converts a Post model with all images to PostDetailDTO
func ToPostDetailDTO(post models.Post, url URLFunc) PostDetailDTO {
	images := make([]ImageDTO, len(post.Images))
	for i, img := range post.Images {
		images[i] = ToImageDTO(img, url)
	}

	return PostDetailDTO{
		PostDTO:    ToPostDTO(post, url),
		Images:     images,
		ImageCount: len(images),
	}
}

// ToFeedContext converts a page of posts to FeedContext
func ToFeedContext(posts []models.Post, pagination utils.PaginationResponse, url URLFunc) FeedContext {
	items := make([]PostDTO, len(posts))
	for i, post := range posts {
		items[i] = ToPostDTO(post, url)
	}
	return FeedContext{Posts: items, Pagination: pagination}
}
