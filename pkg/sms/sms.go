// Package sms sends short alerts through Twilio.
package sms

import (
	"github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"rentdesk_backend/pkg/config"
)

type Client struct {
	api  *twilio.RestClient
	from string
}

// New returns nil when Twilio is not configured.
func New(cfg config.NotifyConfig) *Client {
	if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromPhone == "" {
		return nil
	}
	return &Client{
		api: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		from: cfg.TwilioFromPhone,
	}
}

func (c *Client) Send(to, body string) error {
	if to == "" {
		return errors.New("sms recipient is empty")
	}
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)
	_, err := c.api.Api.CreateMessage(params)
	return errors.Wrapf(err, "send sms to %s", to)
}
