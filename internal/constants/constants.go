package constants

// Session and context keys
const (
	SessionCookieName    = "geoblog_session"
	ContextKeyUserID     = "user_id"
	ContextKeyUser       = "current_user"
	ContextKeyPost       = "post"
	DefaultAvatarPath    = "blog/avatar/default/default.png"
	MinPasswordLength    = 8
	MaxEmailLength       = 255
	MaxPostTitleLength   = 50
	MaxPostTextLength    = 150
	MaxPostSlugLength    = 50
	MaxTagNameLength     = 50
	MaxEmojiNameLength   = 20
	MaxCountryNameLength = 50
	MaxSexNameLength     = 20
)

// Pagination
const (
	MinPageSize         = 1
	DefaultPageSize     = 20
	MaxPageSize         = 100
	DefaultFeedPageSize = 4
)

// Image normalization
const (
	PostImageMaxWidth  = 1280
	PostImageMaxHeight = 720
	AvatarMaxWidth     = 50
	AvatarMaxHeight    = 50
	EmojiMaxWidth      = 128
	EmojiMaxHeight     = 128
	JPEGQuality        = 75
	MaxUploadSizeBytes = 10 << 20
)

// Storage prefixes
const (
	AvatarUploadPrefix = "blog/avatar"
	PostUploadPrefix   = "blog/post"
	EmojiUploadPrefix  = "blog/emoji"
)
