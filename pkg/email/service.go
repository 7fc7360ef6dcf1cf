// pkg/email/service.go
package email

import "rentdesk_backend/pkg/config"

var GlobalEmailService *EmailService

func InitEmailService(cfg config.NotifyConfig) error {
	service, err := NewEmailService(cfg)
	if err != nil {
		return err
	}
	GlobalEmailService = service
	return nil
}
