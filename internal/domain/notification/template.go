package notification

import (
	"strings"

	"github.com/erp/notify/internal/domain/shared"
)

var (
	ErrTemplateNotFound      = shared.NewDomainError("TEMPLATE_NOT_FOUND", "No template registered for notification type")
	ErrInvalidType           = shared.NewDomainError("INVALID_NOTIFICATION_TYPE", "Unknown notification type")
	ErrTemplateTitleRequired = shared.NewDomainError("TEMPLATE_TITLE_REQUIRED", "Template title cannot be empty")
)

// Template holds per-channel message bodies for one notification type.
// Bodies may contain {{key}} placeholders resolved at dispatch time.
type Template struct {
	shared.BaseEntity
	Type         Type
	Title        string
	EmailSubject string
	EmailBody    string
	SMSBody      string
	InAppBody    string
}

func NewTemplate(typ Type, title, emailSubject, emailBody, smsBody, inAppBody string) (*Template, error) {
	if !typ.IsValid() {
		return nil, ErrInvalidType
	}
	if strings.TrimSpace(title) == "" {
		return nil, ErrTemplateTitleRequired
	}
	return &Template{
		BaseEntity:   shared.NewBaseEntity(),
		Type:         typ,
		Title:        title,
		EmailSubject: emailSubject,
		EmailBody:    emailBody,
		SMSBody:      smsBody,
		InAppBody:    inAppBody,
	}, nil
}

// Render replaces every {{key}} placeholder in template with its value from
// data. Placeholders without a matching key are left intact so missing data
// is visible rather than silently blanked.
func Render(template string, data TemplateData) string {
	if len(data) == 0 {
		return template
	}
	out := template
	for key, value := range data {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

func (t *Template) RenderTitle(data TemplateData) string        { return Render(t.Title, data) }
func (t *Template) RenderEmailSubject(data TemplateData) string { return Render(t.EmailSubject, data) }
func (t *Template) RenderEmailBody(data TemplateData) string    { return Render(t.EmailBody, data) }
func (t *Template) RenderSMS(data TemplateData) string          { return Render(t.SMSBody, data) }
func (t *Template) RenderInApp(data TemplateData) string        { return Render(t.InAppBody, data) }
