package transport

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"
)

// SNSSMSSender delivers SMS messages through AWS SNS
type SNSSMSSender struct {
	client   *sns.Client
	senderID string
	logger   *zap.Logger
}

// SNSConfig holds the settings for the SNS transport
type SNSConfig struct {
	Region   string
	SenderID string
}

// NewSNSSMSSender creates an SNS-backed SMS sender using the default
// AWS credential chain
func NewSNSSMSSender(ctx context.Context, cfg SNSConfig, logger *zap.Logger) (*SNSSMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SNSSMSSender{
		client:   sns.NewFromConfig(awsCfg),
		senderID: cfg.SenderID,
		logger:   logger,
	}, nil
}

// SendSMS sends one SMS to a phone number in E.164 format
func (s *SNSSMSSender) SendSMS(ctx context.Context, to, message string) error {
	if to == "" {
		return fmt.Errorf("sms recipient is empty")
	}

	input := &sns.PublishInput{
		PhoneNumber: aws.String(to),
		Message:     aws.String(message),
	}
	if s.senderID != "" {
		input.MessageAttributes = map[string]types.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.senderID),
			},
		}
	}

	result, err := s.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("sns publish failed: %w", err)
	}

	s.logger.Debug("SMS sent via SNS",
		zap.String("to", to),
		zap.String("message_id", aws.ToString(result.MessageId)))
	return nil
}
