package dto

// MessageDTO is the informational page shown instead of an error page
type MessageDTO struct {
	Message string `json:"message"`
}

// FormContext is the view context of a plain form page
type FormContext struct {
	Form string `json:"form"`
}

// ChangePasswordContext is the view context of the change-password page
type ChangePasswordContext struct {
	Form  string `json:"form"`
	Email string `json:"email"`
}
