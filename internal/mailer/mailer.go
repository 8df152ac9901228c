package mailer

import "embed"

const (
	FromName                = "Shiksha"
	maxRetries              = 3
	UserWelcomeTemplate     = "user_welcome.tmpl"
	AccountApprovedTemplate = "account_approved.tmpl"
)

//go:embed "templates"
var FS embed.FS

type Client interface {
	Send(templateFile, username, email string, data any) (int, error)
}
