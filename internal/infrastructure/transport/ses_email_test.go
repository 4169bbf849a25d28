package transport

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type capturingSESClient struct {
	input *ses.SendEmailInput
	err   error
}

func (c *capturingSESClient) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	c.input = params
	if c.err != nil {
		return nil, c.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESEmailSender(t *testing.T) {
	t.Run("sends the rendered body as HTML", func(t *testing.T) {
		client := &capturingSESClient{}
		sender := &SESEmailSender{
			client: client,
			from:   "Notifications <no-reply@example.com>",
			logger: zap.NewNop(),
		}

		err := sender.SendEmail(context.Background(), "reem@example.com",
			"Payment received", "<p>Payment <b>PAY-7</b> received.</p>")
		require.NoError(t, err)

		require.NotNil(t, client.input)
		assert.Equal(t, "Notifications <no-reply@example.com>", aws.ToString(client.input.Source))
		assert.Equal(t, []string{"reem@example.com"}, client.input.Destination.ToAddresses)
		assert.Equal(t, "Payment received", aws.ToString(client.input.Message.Subject.Data))
		require.NotNil(t, client.input.Message.Body.Html)
		assert.Equal(t, "<p>Payment <b>PAY-7</b> received.</p>", aws.ToString(client.input.Message.Body.Html.Data))
		assert.Nil(t, client.input.Message.Body.Text)
	})

	t.Run("empty recipient rejected", func(t *testing.T) {
		client := &capturingSESClient{}
		sender := &SESEmailSender{client: client, from: "no-reply@example.com", logger: zap.NewNop()}

		err := sender.SendEmail(context.Background(), "", "subject", "body")
		assert.Error(t, err)
		assert.Nil(t, client.input)
	})
}
