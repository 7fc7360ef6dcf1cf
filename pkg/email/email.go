// pkg/email/email.go
package email

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"rentdesk_backend/pkg/config"
	"rentdesk_backend/pkg/logger"
)

type EmailService struct {
	client    *sendgrid.Client
	from      *mail.Email
	sandbox   bool
	templates *template.Template
}

// ImportSummaryData import-summary şablonunun verisi
type ImportSummaryData struct {
	Name       string
	Entity     string
	Outcome    string
	TotalRows  int
	Imported   int
	Failed     int
	Errors     []string
	FinishedAt time.Time
}

type OccupancyLine struct {
	PropertyName string
	TotalUnits   int
	Occupied     int
}

type OccupancyDigestData struct {
	Name          string
	Date          time.Time
	Properties    []OccupancyLine
	TotalUnits    int
	OccupiedUnits int
}

func NewEmailService(cfg config.NotifyConfig) (*EmailService, error) {
	if cfg.SendGridAPIKey == "" {
		return nil, errors.New("sendgrid API key is required")
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, errors.Wrap(err, "error loading email templates")
	}

	return &EmailService{
		client:    sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:      mail.NewEmail(cfg.SendGridFromName, cfg.SendGridFromEmail),
		sandbox:   cfg.SendGridSandbox,
		templates: templates,
	}, nil
}

func (s *EmailService) sendTemplateEmail(toName, toEmail, subject, templateName, plainText string, data interface{}) error {
	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, templateName, data); err != nil {
		return errors.Wrap(err, "template execution error")
	}

	msg := mail.NewSingleEmail(s.from, subject, mail.NewEmail(toName, toEmail), plainText, body.String())
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := s.client.Send(msg)
	if err != nil {
		return errors.Wrap(err, "error sending email")
	}
	if resp.StatusCode >= 400 {
		return errors.Errorf("sendgrid API error: status %d: %s", resp.StatusCode, resp.Body)
	}

	logger.Get().Debug("email sent",
		zap.String("to", toEmail),
		zap.String("template", templateName),
		zap.Int("status", resp.StatusCode),
	)
	return nil
}

// SendImportSummaryEmail içe aktarma sonucunu kullanıcıya bildirir
func (s *EmailService) SendImportSummaryEmail(toName, toEmail string, data ImportSummaryData) error {
	subject := fmt.Sprintf("Import %s: %d imported, %d failed", humanize(data.Outcome), data.Imported, data.Failed)
	plain := fmt.Sprintf("%s import finished (%s). Rows: %d, imported: %d, failed: %d.",
		data.Entity, data.Outcome, data.TotalRows, data.Imported, data.Failed)
	return s.sendTemplateEmail(toName, toEmail, subject, "import_summary.html", plain, data)
}

// SendOccupancyDigestEmail haftalık doluluk özetini gönderir
func (s *EmailService) SendOccupancyDigestEmail(toName, toEmail string, data OccupancyDigestData) error {
	subject := fmt.Sprintf("Weekly occupancy: %d of %d units occupied", data.OccupiedUnits, data.TotalUnits)
	plain := fmt.Sprintf("%d of %d units across %d properties are occupied.",
		data.OccupiedUnits, data.TotalUnits, len(data.Properties))
	return s.sendTemplateEmail(toName, toEmail, subject, "occupancy_digest.html", plain, data)
}
