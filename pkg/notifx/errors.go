package notifx

import "github.com/grovekeep/grove/pkg/errx"

var notifxErrors = errx.NewRegistry("NOTIFX")

var (
	ErrSendFailed       = notifxErrors.Register("SEND_FAILED", errx.TypeExternal, 502, "Failed to send notification")
	ErrInvalidMessage   = notifxErrors.Register("INVALID_MESSAGE", errx.TypeValidation, 400, "Invalid notification message")
	ErrTemplateNotFound = notifxErrors.Register("TEMPLATE_NOT_FOUND", errx.TypeNotFound, 404, "Notification template not found")
	ErrTemplateParse    = notifxErrors.Register("TEMPLATE_PARSE", errx.TypeValidation, 400, "Failed to parse notification template")
	ErrTemplateRender   = notifxErrors.Register("TEMPLATE_RENDER", errx.TypeInternal, 500, "Failed to render notification template")
)
