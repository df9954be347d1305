package mail

import (
	"bytes"
	"fmt"
	"text/template"
)

// LinkData is what account email templates are rendered with.
type LinkData struct {
	Email    string
	Protocol string
	Domain   string
	UID      string
	Token    string
}

var (
	activationSubject = "Activate your GeoBlog account"
	activationBody    = template.Must(template.New("activation").Parse(
		`Hi {{.Email}},

Please follow the link below to confirm your registration:

{{.Protocol}}://{{.Domain}}/activate/{{.UID}}/{{.Token}}/

If you did not sign up, ignore this message.
`))

	resetSubject = "Reset your GeoBlog password"
	resetBody    = template.Must(template.New("reset").Parse(
		`Hi {{.Email}},

Someone asked to reset the password for your account. To choose a new
password, follow the link below:

{{.Protocol}}://{{.Domain}}/change-password/{{.UID}}/{{.Token}}/

If it was not you, ignore this message.
`))
)

// ActivationMessage renders the account activation email.
func ActivationMessage(data LinkData) (Message, error) {
	return render(activationSubject, activationBody, data)
}

// ResetMessage renders the password reset email.
func ResetMessage(data LinkData) (Message, error) {
	return render(resetSubject, resetBody, data)
}

func render(subject string, tmpl *template.Template, data LinkData) (Message, error) {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return Message{}, fmt.Errorf("failed to render %s mail: %w", tmpl.Name(), err)
	}
	return Message{To: data.Email, Subject: subject, Body: body.String()}, nil
}
