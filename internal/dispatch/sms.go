package dispatch

import (
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

type TwilioSMS struct {
	client *twilio.RestClient
	from   string
}

func NewTwilioSMS(accountSID, authToken, from string) *TwilioSMS {
	return &TwilioSMS{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: accountSID,
			Password: authToken,
		}),
		from: from,
	}
}

func (c *TwilioSMS) SendSMS(to, body string) (string, error) {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(c.from)
	params.SetBody(body)

	resp, err := c.client.Api.CreateMessage(params)
	if err != nil {
		return "", err
	}
	if resp.Sid == nil {
		return "", nil
	}
	return *resp.Sid, nil
}
