package forms

import (
	"mime/multipart"
	"strings"
	"time"
)

// RegisterForm is submitted to /sign-up/.
type RegisterForm struct {
	Email     string `form:"email" json:"email" binding:"required,email,max=255"`
	Password  string `form:"password" json:"-" binding:"required,min=8"`
	Password2 string `form:"password_2" json:"-" binding:"required"`
}

func (f *RegisterForm) Clean(errs FieldErrors) {
	f.Email = normalizeEmail(f.Email)
	if f.Password != f.Password2 {
		errs.Add("password_2", "Passwords do not match.")
	}
}

// LoginForm is submitted to /sign-in/.
type LoginForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"-" binding:"required"`
}

func (f *LoginForm) Clean(FieldErrors) {
	f.Email = normalizeEmail(f.Email)
}

// ResetPasswordForm is submitted to /reset-password/.
type ResetPasswordForm struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

func (f *ResetPasswordForm) Clean(FieldErrors) {
	f.Email = normalizeEmail(f.Email)
}

// ChangePasswordForm is submitted to /change-password/{uid}/{token}/.
type ChangePasswordForm struct {
	Password  string `form:"password" json:"-" binding:"required,min=8"`
	Password1 string `form:"password1" json:"-" binding:"required"`
}

func (f *ChangePasswordForm) Clean(errs FieldErrors) {
	if f.Password != f.Password1 {
		errs.Add("password", "Passwords do not match.")
	}
}

// Accepted birthday layouts.
var birthdayLayouts = []string{"2006-01-02", "02.01.2006"}

// ProfileForm is submitted to /profile/{slug}/. Zero sex or country ids mean
// "not set".
type ProfileForm struct {
	Email    string                `form:"email" json:"email" binding:"required,email,max=255"`
	Sex      *uint64               `form:"sex" json:"sex"`
	Country  *uint64               `form:"country" json:"country"`
	Birthday string                `form:"birthday" json:"birthday"`
	Avatar   *multipart.FileHeader `form:"avatar" json:"-"`

	BirthdayDate *time.Time `form:"-" json:"-"`
}

func (f *ProfileForm) Clean(errs FieldErrors) {
	f.Email = normalizeEmail(f.Email)
	if f.Sex != nil && *f.Sex == 0 {
		f.Sex = nil
	}
	if f.Country != nil && *f.Country == 0 {
		f.Country = nil
	}

	f.Birthday = strings.TrimSpace(f.Birthday)
	if f.Birthday == "" {
		return
	}
	for _, layout := range birthdayLayouts {
		if d, err := time.Parse(layout, f.Birthday); err == nil {
			if d.After(time.Now()) {
				errs.Add("birthday", "Birthday cannot be in the future.")
				return
			}
			f.BirthdayDate = &d
			return
		}
	}
	errs.Add("birthday", "Enter a valid date (dd.mm.yyyy).")
}

// normalizeEmail lower-cases the domain part, leaving the local part as typed.
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	local, domain, ok := strings.Cut(email, "@")
	if !ok {
		return email
	}
	return local + "@" + strings.ToLower(domain)
}
