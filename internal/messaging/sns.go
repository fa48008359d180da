package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/sony/gobreaker/v2"

	"appointments/internal/appointment"
	"appointments/internal/types"
)

// SNSClient is the subset of the SNS API used by the notifier.
type SNSClient interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
	GetTopicAttributes(ctx context.Context, params *sns.GetTopicAttributesInput, optFns ...func(*sns.Options)) (*sns.GetTopicAttributesOutput, error)
}

// SNSNotifier implements appointment.Notifier. Each appointment is published
// to the topic with a Country attribute so per-country subscriptions can
// filter on it.
type SNSNotifier struct {
	client   SNSClient
	topicARN string
	breaker  *gobreaker.CircuitBreaker[*sns.PublishOutput]
	logger   types.Logger
}

var _ appointment.Notifier = (*SNSNotifier)(nil)

func NewSNSNotifier(client SNSClient, topicARN string, settings BreakerSettings, logger types.Logger) *SNSNotifier {
	return &SNSNotifier{
		client:   client,
		topicARN: topicARN,
		breaker:  newBreaker[*sns.PublishOutput]("sns-notifier", settings),
		logger:   logger,
	}
}

// SendAppointmentScheduled publishes the appointment snapshot.
func (n *SNSNotifier) SendAppointmentScheduled(ctx context.Context, a *appointment.Appointment) error {
	body, err := json.Marshal(a)
	if err != nil {
		return appointment.NewNotificationError("failed to encode appointment", err)
	}
	country := a.Country().Value()

	input := &sns.PublishInput{
		TopicArn: aws.String(n.topicARN),
		Message:  aws.String(string(body)),
		Subject:  aws.String("New Appointment Scheduled for " + country),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			types.MessageAttrCountry:   stringAttr(country),
			types.MessageAttrEventType: stringAttr(types.EventTypeScheduled),
		},
	}

	out, err := n.breaker.Execute(func() (*sns.PublishOutput, error) {
		return n.client.Publish(ctx, input)
	})
	if err != nil {
		n.logger.Error("failed to publish appointment",
			"topic_arn", n.topicARN,
			"country", country,
			"schedule_id", a.ScheduleID().String(),
			"error", err.Error(),
		)
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return appointment.NewNotificationError("notification topic unavailable", err)
		}
		return appointment.NewNotificationError("failed to send notification", err)
	}

	n.logger.Info("appointment notification published",
		"message_id", aws.ToString(out.MessageId),
		"country", country,
		"insured_id", a.InsuredID().Value(),
	)
	return nil
}

func stringAttr(v string) snstypes.MessageAttributeValue {
	return snstypes.MessageAttributeValue{
		DataType:    aws.String("String"),
		StringValue: aws.String(v),
	}
}

// TopicProbe reports whether the notification topic is reachable.
type TopicProbe struct {
	Client   SNSClient
	TopicARN string
}

func (p TopicProbe) Name() string { return "sns" }

func (p TopicProbe) Check(ctx context.Context) error {
	if _, err := p.Client.GetTopicAttributes(ctx, &sns.GetTopicAttributesInput{TopicArn: aws.String(p.TopicARN)}); err != nil {
		return fmt.Errorf("get topic attributes: %w", err)
	}
	return nil
}
