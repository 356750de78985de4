package publishers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type fakeSNS struct {
	input *sns.PublishInput
	err   error
}

func (f *fakeSNS) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: aws.String("msg-123")}, nil
}

func TestTopicPublisherSend(t *testing.T) {
	client := &fakeSNS{}
	pub := &topicPublisher{id: "topic", topicARN: "arn:aws:sns:::topic", client: client, log: nopLog()}

	if err := pub.Publish(context.Background(), Event{Operation: "enroll", SubjectID: "gemtest"}); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if got := aws.ToString(client.input.TopicArn); got != "arn:aws:sns:::topic" {
		t.Fatalf("TopicArn = %s", got)
	}
	if got := aws.ToString(client.input.Subject); got != "kairos enroll" {
		t.Fatalf("Subject = %q", got)
	}
	attr, ok := client.input.MessageAttributes["subject_id"]
	if !ok || aws.ToString(attr.StringValue) != "gemtest" {
		t.Fatalf("subject_id attribute missing or wrong: %#v", attr)
	}
	if !strings.Contains(aws.ToString(client.input.Message), `"subject_id":"gemtest"`) {
		t.Fatalf("Message missing subject_id: %s", aws.ToString(client.input.Message))
	}
}

func TestTopicPublisherFIFOGroupsByOperationWithoutGallery(t *testing.T) {
	client := &fakeSNS{}
	pub := &topicPublisher{id: "t", topicARN: "arn:aws:sns:::results.fifo", fifo: true, client: client, log: nopLog()}

	if err := pub.Publish(context.Background(), Event{Operation: "gallery_list_all"}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if got := aws.ToString(client.input.MessageGroupId); got != "operation:gallery_list_all" {
		t.Fatalf("MessageGroupId = %q", got)
	}
	if aws.ToString(client.input.MessageDeduplicationId) == "" {
		t.Fatalf("FIFO topic needs a deduplication id")
	}
}

func TestTopicPublisherSendError(t *testing.T) {
	pub := &topicPublisher{id: "topic", topicARN: "arn:aws:sns:::topic", client: &fakeSNS{err: errors.New("boom")}, log: nopLog()}

	if err := pub.Publish(context.Background(), Event{Operation: "enroll"}); err == nil {
		t.Fatalf("expected error from Publish")
	}
}
