package publishers

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

type sqsClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// sqsPublisher sends snapshot events to a queue. FIFO queues get the watch id
// as message group and the snapshot digest as deduplication id, so the queue
// itself drops a snapshot delivered twice.
type sqsPublisher struct {
	id       string
	queueURL string
	fifo     bool
	client   sqsClient
	log      Logger
}

func newSQSPublisher(ctx context.Context, cfg PublisherConfig, log Logger) (Publisher, error) {
	if cfg.SQS == nil {
		return nil, fmt.Errorf("publisher %q missing sqs configuration", cfg.ID)
	}

	awsCfg, err := loadAWSConfig(ctx, cfg.SQS.Region, cfg.SQS.AWSAuthConfig)
	if err != nil {
		return nil, err
	}

	var opts []func(*sqs.Options)
	if ep := cfg.SQS.Endpoint; ep != "" {
		opts = append(opts, func(o *sqs.Options) { o.BaseEndpoint = aws.String(ep) })
	}

	return &sqsPublisher{
		id:       cfg.ID,
		queueURL: cfg.SQS.QueueURL,
		fifo:     strings.HasSuffix(cfg.SQS.QueueURL, ".fifo"),
		client:   sqs.NewFromConfig(awsCfg, opts...),
		log:      ensureLogger(log),
	}, nil
}

func (s *sqsPublisher) ID() string   { return s.id }
func (s *sqsPublisher) Type() string { return TypeSQS }

func (s *sqsPublisher) Publish(ctx context.Context, evt Event) error {
	payload, err := marshalEvent(evt)
	if err != nil {
		return err
	}

	input := &sqs.SendMessageInput{
		QueueUrl:          aws.String(s.queueURL),
		MessageBody:       aws.String(payload),
		MessageAttributes: map[string]types.MessageAttributeValue{},
	}
	for k, v := range evt.attributes() {
		if v != "" {
			input.MessageAttributes[k] = types.MessageAttributeValue{DataType: aws.String("String"), StringValue: aws.String(v)}
		}
	}
	if s.fifo {
		input.MessageGroupId = aws.String(evt.WatchID)
		input.MessageDeduplicationId = aws.String(evt.Snapshot.Digest)
	}

	out, err := s.client.SendMessage(ctx, input)
	if err != nil {
		s.log.ErrorObj("sqs publisher send failed", "publisher_sqs_error", map[string]any{
			"publisher_id": s.id,
			"watch_id":     evt.WatchID,
			"error":        err.Error(),
		})
		return fmt.Errorf("send snapshot to sqs: %w", err)
	}
	s.log.DebugObj("sqs publisher delivered snapshot", "publisher_sqs_delivery", map[string]any{
		"publisher_id": s.id,
		"watch_id":     evt.WatchID,
		"message_id":   aws.ToString(out.MessageId),
	})
	return nil
}
