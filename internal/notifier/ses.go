package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	appconfig "github.com/nartaq/forms-service/internal/config"
	"github.com/nartaq/forms-service/internal/pkg/logger"
)

// ErrSESTransport is the fixed message surfaced when an SES send fails.
var ErrSESTransport = errors.New("Failed to send email via SES")

// SESSender sends through the AWS SES v2 API.
type SESSender struct {
	client *sesv2.Client
}

// NewSESSender creates an SES-backed sender. With empty static keys the
// default credential chain (IAM role) is used.
func NewSESSender(ctx context.Context, cfg appconfig.SESConfig) (*SESSender, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	return &SESSender{client: sesv2.NewFromConfig(awsCfg)}, nil
}

// Name implements Sender.
func (s *SESSender) Name() string { return "ses" }

// Send implements Sender via sesv2 SendEmail with simple content.
func (s *SESSender) Send(ctx context.Context, msg Message) (*SendResult, error) {
	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fmt.Sprintf("%s <%s>", msg.FromName, msg.FromEmail)),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		ReplyToAddresses: []string{msg.ReplyTo},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Html: &types.Content{Data: aws.String(msg.HTML)},
					Text: &types.Content{Data: aws.String(msg.Text)},
				},
			},
		},
	})
	if err != nil {
		logger.Error("ses send error", "recipient", msg.To, "error", err.Error())
		return nil, ErrSESTransport
	}

	return &SendResult{MessageID: aws.ToString(out.MessageId)}, nil
}
