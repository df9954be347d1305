package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/geoblog/internal/dto"
	apierrors "github.com/yukikurage/geoblog/internal/errors"
	"github.com/yukikurage/geoblog/internal/forms"
	"github.com/yukikurage/geoblog/internal/middleware"
	"github.com/yukikurage/geoblog/internal/services"
	"github.com/yukikurage/geoblog/internal/utils"
)

// PostHandler serves the feed, post pages and post authoring.
type PostHandler struct {
	posts *services.PostService
	url   dto.URLFunc
	log   *zap.Logger
}

func NewPostHandler(posts *services.PostService, url dto.URLFunc, log *zap.Logger) *PostHandler {
	return &PostHandler{posts: posts, url: url, log: log}
}

// Feed returns one page of posts, newest first.
func (h *PostHandler) Feed(c *gin.Context) {
	page, err := h.posts.Feed(utils.GetPage(c))
	if err != nil {
		if errors.Is(err, services.ErrPageNotFound) {
			respondMessage(c, http.StatusNotFound, "Page not found.")
			return
		}
		h.log.Error("failed to load feed", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToFeedContext(page.Posts, page.Pagination, h.url))
}

// Detail returns a post with all of its images.
func (h *PostHandler) Detail(c *gin.Context) {
	post, err := h.posts.Detail(c.Param("slug"))
	if err != nil {
		if errors.Is(err, services.ErrPostNotFound) {
			respondMessage(c, http.StatusNotFound, "Post not found.")
			return
		}
		h.log.Error("failed to load post", zap.String("slug", c.Param("slug")), zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.ToPostDetailDTO(*post, h.url))
}

// CreateForm lists the tags and emoji a new post may use.
func (h *PostHandler) CreateForm(c *gin.Context) {
	choices, err := h.posts.Choices()
	if err != nil {
		h.log.Error("failed to load post choices", zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, dto.CreatePostContext{
		Tags:   dto.ToTagDTOs(choices.Tags),
		Emojis: dto.ToEmojiDTOs(choices.Emojis, h.url),
	})
}

// Create stores a post by the current user and redirects to it.
func (h *PostHandler) Create(c *gin.Context) {
	author, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var form forms.CreatePostForm
	if errs := forms.Bind(c, &form); errs != nil {
		apierrors.ValidationFailed(c, errs)
		return
	}

	images, closeImages, err := openUploads(form.Images)
	if err != nil {
		respondFieldError(c, "images", "The submitted file could not be read.")
		return
	}
	defer closeImages()

	post, err := h.posts.CreatePost(c.Request.Context(), author, services.CreatePostInput{
		Title:   form.Title,
		Text:    form.Text,
		TagIDs:  form.Tags,
		EmojiID: form.Emoji,
		Lat:     *form.Lat,
		Lon:     *form.Lon,
		Images:  images,
	})
	switch {
	case err == nil:
	case errors.Is(err, services.ErrUnknownTag):
		respondFieldError(c, "tags", "Select a valid choice.")
		return
	case errors.Is(err, services.ErrUnknownEmoji):
		respondFieldError(c, "emoji", "Select a valid choice.")
		return
	case errors.Is(err, services.ErrInvalidImage):
		respondFieldError(c, "images", "Upload a valid image. The file you uploaded was either not an image or a corrupted image.")
		return
	case errors.Is(err, services.ErrSlugTaken):
		respondFieldError(c, "title", "A post with a similar title already exists.")
		return
	default:
		h.log.Error("failed to create post", zap.Uint64("author_id", author.ID), zap.Error(err))
		apierrors.InternalError(c, "")
		return
	}

	redirect(c, "/post/"+post.Slug+"/")
}
