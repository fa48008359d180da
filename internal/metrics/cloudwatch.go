// Package metrics publishes business and request metrics to CloudWatch.
// Emission is best effort: a failed PutMetricData call is logged and never
// fails the operation being measured.
package metrics

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"appointments/internal/types"
)

// Result is the value of the Result dimension.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailed  Result = "failed"
)

// ResultOf maps an operation error to its Result.
func ResultOf(err error) Result {
	if err != nil {
		return ResultFailed
	}
	return ResultSuccess
}

// CloudWatchClient is the subset of the CloudWatch API used here.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics emits:
//   - AppointmentScheduled: Dims {Country}
//   - NotificationProcessed: Dims {Result}
//   - MessageProcessed: Dims {Queue, Result} plus ProcessingLatency {Queue}
//   - APIRequestCount / APILatency: Dims {Method, Endpoint, Status}
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

func NewCloudWatchMetrics(client CloudWatchClient, logger types.Logger) *CloudWatchMetrics {
	return &CloudWatchMetrics{
		client:    client,
		namespace: types.MetricNamespace,
		logger:    logger,
	}
}

// RecordScheduled counts a registered appointment for country.
func (m *CloudWatchMetrics) RecordScheduled(ctx context.Context, country string) {
	m.put(ctx, "failed to record scheduled metric", cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricAppointmentScheduled),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{dim(types.DimCountry, country)},
	})
}

// RecordNotification counts a processed confirmation event.
func (m *CloudWatchMetrics) RecordNotification(ctx context.Context, result Result) {
	m.put(ctx, "failed to record notification metric", cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricNotificationProcessed),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{dim(types.DimResult, string(result))},
	})
}

// RecordMessage counts a processor message and records how long it took.
func (m *CloudWatchMetrics) RecordMessage(ctx context.Context, queue string, result Result, latency time.Duration) {
	m.put(ctx, "failed to record message metric",
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricMessageProcessed),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{dim(types.DimQueue, queue), dim(types.DimResult, string(result))},
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricProcessingLatency),
			Value:      aws.Float64(float64(latency.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: []cwtypes.Dimension{dim(types.DimQueue, queue)},
		},
	)
}

// RecordRequest implements core.MetricsCollector for the local HTTP mode.
func (m *CloudWatchMetrics) RecordRequest(method, endpoint, status string, duration time.Duration) {
	dims := []cwtypes.Dimension{
		dim(types.DimMethod, method),
		dim(types.DimEndpoint, endpoint),
		dim(types.DimStatus, status),
	}
	m.put(context.Background(), "failed to record request metric",
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPIRequestCount),
			Value:      aws.Float64(1),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: dims,
		},
		cwtypes.MetricDatum{
			MetricName: aws.String(types.MetricAPILatency),
			Value:      aws.Float64(float64(duration.Milliseconds())),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Dimensions: dims,
		},
	)
}

func (m *CloudWatchMetrics) put(ctx context.Context, failMsg string, data ...cwtypes.MetricDatum) {
	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: data,
	})
	if err != nil {
		m.logger.Error(failMsg, "error", err.Error(), "metric", aws.ToString(data[0].MetricName))
	}
}

func dim(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}
