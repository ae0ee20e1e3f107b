package processing

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"omc/internal/scenarios"
	"omc/internal/types"
)

// CloudWatchClient abstracts the CloudWatch PutMetricData operation for testability.
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// Metrics records processing outcomes. Recording never fails the caller.
type Metrics interface {
	scenarios.DeliveryObserver
	RecordOutcome(ctx context.Context, scenario scenarios.Kind, status types.ProcessingStatus)
	RecordLatency(ctx context.Context, scenario scenarios.Kind, d time.Duration)
}

// NopMetrics discards every metric.
type NopMetrics struct{}

func (NopMetrics) ObserveDelivery(context.Context, scenarios.Kind, types.NotifyMethod, bool) {}
func (NopMetrics) RecordOutcome(context.Context, scenarios.Kind, types.ProcessingStatus) {}
func (NopMetrics) RecordLatency(context.Context, scenarios.Kind, time.Duration) {}

// CloudWatchMetrics publishes metrics to AWS CloudWatch.
//
// Metrics emitted:
//   - ProcessingOutcome: Dims {Scenario, Status} -- once per event
//   - ProcessingLatency: Dims {Scenario} -- duration of both phases
//   - DeliveryAttempt: Dims {Scenario, Method, Status} -- once per send
type CloudWatchMetrics struct {
	client    CloudWatchClient
	namespace string
	logger    types.Logger
}

// NewCloudWatchMetrics creates a CloudWatchMetrics. An empty namespace
// falls back to types.MetricNamespace.
func NewCloudWatchMetrics(client CloudWatchClient, namespace string, logger types.Logger) *CloudWatchMetrics {
	if namespace == "" {
		namespace = types.MetricNamespace
	}
	if logger == nil {
		logger = types.NopLogger{}
	}
	return &CloudWatchMetrics{client: client, namespace: namespace, logger: logger}
}

// RecordOutcome emits a ProcessingOutcome count.
func (m *CloudWatchMetrics) RecordOutcome(ctx context.Context, scenario scenarios.Kind, status types.ProcessingStatus) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricProcessingOutcome),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			dimension(types.DimScenario, string(scenario)),
			dimension(types.DimStatus, string(status)),
		},
	})
}

// RecordLatency emits the processing duration in milliseconds.
func (m *CloudWatchMetrics) RecordLatency(ctx context.Context, scenario scenarios.Kind, d time.Duration) {
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricProcessingLatency),
		Value:      aws.Float64(float64(d.Milliseconds())),
		Unit:       cwtypes.StandardUnitMilliseconds,
		Dimensions: []cwtypes.Dimension{
			dimension(types.DimScenario, string(scenario)),
		},
	})
}

// ObserveDelivery emits a DeliveryAttempt count.
func (m *CloudWatchMetrics) ObserveDelivery(ctx context.Context, scenario scenarios.Kind, method types.NotifyMethod, succeeded bool) {
	status := "failed"
	if succeeded {
		status = "sent"
	}
	m.put(ctx, cwtypes.MetricDatum{
		MetricName: aws.String(types.MetricDeliveryAttempt),
		Value:      aws.Float64(1),
		Unit:       cwtypes.StandardUnitCount,
		Dimensions: []cwtypes.Dimension{
			dimension(types.DimScenario, string(scenario)),
			dimension(types.DimMethod, string(method)),
			dimension(types.DimStatus, status),
		},
	})
}

func (m *CloudWatchMetrics) put(ctx context.Context, datum cwtypes.MetricDatum) {
	input := &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(m.namespace),
		MetricData: []cwtypes.MetricDatum{datum},
	}
	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Error("failed to record metric",
			"error", err.Error(),
			"metric", aws.ToString(datum.MetricName),
		)
	}
}

func dimension(name, value string) cwtypes.Dimension {
	return cwtypes.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

var (
	_ Metrics = (*CloudWatchMetrics)(nil)
	_ Metrics = NopMetrics{}
)
