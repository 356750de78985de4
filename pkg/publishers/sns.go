package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/samvad-hq/kairos-face-client/internal/logger"
)

type snsAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// topicPublisher fans results out through an SNS topic.
type topicPublisher struct {
	id       string
	topicARN string
	fifo     bool
	client   snsAPI
	log      logger.Logger
}

func newTopicPublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg.SNS.AWSAccess)
	if err != nil {
		return nil, err
	}
	var optFns []func(*sns.Options)
	if endpoint := cfg.SNS.EndpointURL; endpoint != "" {
		optFns = append(optFns, func(o *sns.Options) { o.BaseEndpoint = aws.String(endpoint) })
	}
	return &topicPublisher{
		id:       cfg.ID,
		topicARN: cfg.SNS.TopicARN,
		fifo:     strings.HasSuffix(cfg.SNS.TopicARN, ".fifo"),
		client:   sns.NewFromConfig(awsCfg, optFns...),
		log:      log,
	}, nil
}

func (t *topicPublisher) Publish(ctx context.Context, evt Event) error {
	body, err := evt.payload()
	if err != nil {
		return err
	}
	input := &sns.PublishInput{
		TopicArn:          aws.String(t.topicARN),
		Message:           aws.String(string(body)),
		Subject:           aws.String("kairos " + evt.Operation),
		MessageAttributes: snsAttributes(evt.Attributes()),
	}
	if t.fifo {
		input.MessageGroupId = aws.String(evt.groupKey())
		input.MessageDeduplicationId = aws.String(evt.dedupID())
	}

	out, err := t.client.Publish(ctx, input)
	if err != nil {
		return fmt.Errorf("sns publish to %s: %w", t.topicARN, err)
	}
	t.log.DebugObj("result announced", "sns_delivery", map[string]any{
		"publisher_id": t.id,
		"operation":    evt.Operation,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
