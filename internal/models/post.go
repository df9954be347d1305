package models

import "time"

type Post struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	AuthorID  uint64    `gorm:"not null;index" json:"author_id"`
	Title     string    `gorm:"type:varchar(150);not null" json:"title"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	Slug      string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	Lat       float64   `gorm:"not null" json:"lat"`
	Lon       float64   `gorm:"not null" json:"lon"`
	EmojiID   uint64    `gorm:"not null;index" json:"emoji_id"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Author User        `gorm:"foreignKey:AuthorID;constraint:OnDelete:RESTRICT" json:"author,omitempty"`
	Emoji  Emoji       `gorm:"foreignKey:EmojiID;constraint:OnDelete:RESTRICT" json:"emoji,omitempty"`
	Tags   []Tag       `gorm:"many2many:post_tags;constraint:OnDelete:CASCADE" json:"tags,omitempty"`
	Images []PostImage `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// PostImage is a normalized JPEG attached to exactly one post.
type PostImage struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	PostID    uint64    `gorm:"not null;index" json:"post_id"`
	Path      string    `gorm:"type:varchar(255);not null" json:"path"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	SizeBytes int64     `json:"size_bytes"`
	CreatedAt time.Time `json:"created_at"`
}
