package models

import (
	"time"
)

type User struct {
	ID              uint64     `gorm:"primarykey" json:"id"`
	Email           string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash    string     `gorm:"type:varchar(255);not null" json:"-"`
	IsActive        bool       `gorm:"not null" json:"is_active"`
	Staff           bool       `gorm:"not null" json:"staff"`
	Admin           bool       `gorm:"not null" json:"admin"`
	SignupConfirmed bool       `gorm:"not null" json:"signup_confirmed"`
	SexID           *uint64    `json:"sex_id"`
	CountryID       *uint64    `json:"country_id"`
	Birthday        *time.Time `gorm:"type:date" json:"birthday"`
	Avatar          string     `gorm:"type:varchar(255);not null" json:"avatar"`
	Slug            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"slug"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	// Relations
	Sex     *Sex     `gorm:"foreignKey:SexID;constraint:OnDelete:RESTRICT" json:"sex,omitempty"`
	Country *Country `gorm:"foreignKey:CountryID;constraint:OnDelete:RESTRICT" json:"country,omitempty"`
	Posts   []Post   `gorm:"foreignKey:AuthorID" json:"-"`
}

// IsStaff reports whether the user may use the administrative endpoints.
func (u *User) IsStaff() bool {
	return u.Staff || u.Admin
}
