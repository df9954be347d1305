package dto

import (
	"time"

	"github.com/yukikurage/geoblog/internal/models"
	"github.com/yukikurage/geoblog/internal/utils"
)

// URLFunc turns a stored media path into a public URL.
type URLFunc func(path string) string

// RefDTO represents a sex or country choice
type RefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// AuthorDTO is the public part of a user shown next to posts
type AuthorDTO struct {
	ID        uint64 `json:"id"`
	Email     string `json:"email"`
	Slug      string `json:"slug"`
	AvatarURL string `json:"avatar_url"`
}

// UserDTO represents a user in view contexts
type UserDTO struct {
	ID              uint64    `json:"id"`
	Email           string    `json:"email"`
	Slug            string    `json:"slug"`
	AvatarURL       string    `json:"avatar_url"`
	IsActive        bool      `json:"is_active"`
	Staff           bool      `json:"staff"`
	Admin           bool      `json:"admin"`
	SignupConfirmed bool      `json:"signup_confirmed"`
	Sex             *RefDTO   `json:"sex,omitempty"`
	Country         *RefDTO   `json:"country,omitempty"`
	Birthday        string    `json:"birthday,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// ProfileContext is the view context of the profile page
type ProfileContext struct {
	User      UserDTO  `json:"user"`
	Sexes     []RefDTO `json:"sexes"`
	Countries []RefDTO `json:"countries"`
}

// UserListResponse is returned by the admin user listing
type UserListResponse struct {
	Users      []UserDTO                `json:"users"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// ToAuthorDTO converts a User model to AuthorDTO
func ToAuthorDTO(user models.User, url URLFunc) AuthorDTO {
	return AuthorDTO{
		ID:        user.ID,
		Email:     user.Email,
		Slug:      user.Slug,
		AvatarURL: url(user.Avatar),
	}
}

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User, url URLFunc) UserDTO {
	dto := UserDTO{
		ID:              user.ID,
		Email:           user.Email,
		Slug:            user.Slug,
		AvatarURL:       url(user.Avatar),
		IsActive:        user.IsActive,
		Staff:           user.Staff,
		Admin:           user.Admin,
		SignupConfirmed: user.SignupConfirmed,
		CreatedAt:       user.CreatedAt,
	}

	if user.Sex != nil {
		dto.Sex = &RefDTO{ID: user.Sex.ID, Name: user.Sex.Name}
	}
	if user.Country != nil {
		dto.Country = &RefDTO{ID: user.Country.ID, Name: user.Country.Name}
	}
	if user.Birthday != nil {
		dto.Birthday = user.Birthday.Format("2006-01-02")
	}

	return dto
}

func ToSexDTOs(sexes []models.Sex) []RefDTO {
	out := make([]RefDTO, len(sexes))
	for i, s := range sexes {
		out[i] = RefDTO{ID: s.ID, Name: s.Name}
	}
	return out
}

func ToCountryDTOs(countries []models.Country) []RefDTO {
	out := make([]RefDTO, len(countries))
	for i, c := range countries {
		out[i] = RefDTO{ID: c.ID, Name: c.Name}
	}
	return out
}

// ToProfileContext builds the profile page context
func ToProfileContext(user models.User, sexes []models.Sex, countries []models.Country, url URLFunc) ProfileContext {
	return ProfileContext{
		User:      ToUserDTO(user, url),
		Sexes:     ToSexDTOs(sexes),
		Countries: ToCountryDTOs(countries),
	}
}
