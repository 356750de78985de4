package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/samvad-hq/kairos-face-client/internal/logger"
)

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// queuePublisher sends results to SQS. FIFO queues get one message group per gallery.
type queuePublisher struct {
	id       string
	queueURL string
	fifo     bool
	client   sqsAPI
	log      logger.Logger
}

func newQueuePublisher(ctx context.Context, cfg PublisherConfig, log logger.Logger) (Publisher, error) {
	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.AWSAccess)
	if err != nil {
		return nil, err
	}
	var optFns []func(*sqs.Options)
	if endpoint := cfg.SQS.EndpointURL; endpoint != "" {
		optFns = append(optFns, func(o *sqs.Options) { o.BaseEndpoint = aws.String(endpoint) })
	}
	return &queuePublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		fifo:     strings.HasSuffix(cfg.SQS.QueueURL, ".fifo"),
		client:   sqs.NewFromConfig(awsCfg, optFns...),
		log:      log,
	}, nil
}

func (q *queuePublisher) Publish(ctx context.Context, evt Event) error {
	body, err := evt.payload()
	if err != nil {
		return err
	}
	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(q.queueURL),
		MessageBody:       aws.String(string(body)),
		MessageAttributes: sqsAttributes(evt.Attributes()),
	}
	if q.fifo {
		input.MessageGroupId = aws.String(evt.groupKey())
		input.MessageDeduplicationId = aws.String(evt.dedupID())
	}

	out, err := q.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("sqs send to %s: %w", q.queueURL, err)
	}
	q.log.DebugObj("result queued", "sqs_delivery", map[string]any{
		"publisher_id": q.id,
		"operation":    evt.Operation,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
