package forms

import (
	"mime/multipart"
	"strings"
)

// CreatePostForm is submitted as multipart to /create-post/.
type CreatePostForm struct {
	Title  string                  `form:"title" json:"title" binding:"required,trimmax=50"`
	Text   string                  `form:"text" json:"text" binding:"required,trimmax=150"`
	Tags   []uint64                `form:"tags" json:"tags" binding:"required,min=1"`
	Emoji  uint64                  `form:"emoji" json:"emoji" binding:"required"`
	Lat    *float64                `form:"lat" json:"lat" binding:"required,gte=-90,lte=90"`
	Lon    *float64                `form:"lon" json:"lon" binding:"required,gte=-180,lte=180"`
	Images []*multipart.FileHeader `form:"images" json:"-"`
}

func (f *CreatePostForm) Clean(errs FieldErrors) {
	f.Title = strings.TrimSpace(f.Title)
	f.Text = strings.TrimSpace(f.Text)
	if f.Title == "" {
		errs.Add("title", "This field is required.")
	}
	if f.Text == "" {
		errs.Add("text", "This field is required.")
	}

	seen := make(map[uint64]struct{}, len(f.Tags))
	tags := f.Tags[:0]
	for _, id := range f.Tags {
		if id == 0 {
			errs.Add("tags", "Select a valid choice.")
			return
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		tags = append(tags, id)
	}
	f.Tags = tags
}

// TagForm is posted to the admin tag endpoint.
type TagForm struct {
	Name string `form:"name" json:"name" binding:"required,trimmax=50"`
}

// EmojiForm is posted as multipart to the admin emoji endpoint.
type EmojiForm struct {
	Name  string                `form:"name" json:"name" binding:"required,trimmax=20"`
	Image *multipart.FileHeader `form:"image" json:"-" binding:"required"`
}

// ReferenceForm creates a country or sex row.
type ReferenceForm struct {
	Name string `form:"name" json:"name" binding:"required,trimmax=50"`
}
