package metrics

import (
	"context"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace                = "BASEDRUM/API"
	httpStatusServerError    = 500
	cloudwatchTimeoutSeconds = 5
)

// Client wraps CloudWatch client for custom metrics
type Client struct {
	client      *cloudwatch.Client
	enabled     bool
	environment string
}

// NewClient creates a new CloudWatch metrics client. Disabled outside
// production or when AWS credentials are unavailable; every Record* call
// is then a no-op.
func NewClient(ctx context.Context, environment string, enabled bool) (*Client, error) {
	if !enabled || environment != "production" {
		log.Printf("CloudWatch metrics disabled (environment: %s)", environment)
		return &Client{enabled: false, environment: environment}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("Failed to load AWS config for CloudWatch: %v", err)
		return &Client{enabled: false}, nil
	}

	log.Printf("CloudWatch metrics enabled (namespace: %s)", namespace)
	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
	}, nil
}

// RecordAPIRequest records an API request metric
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		metricName := "APIRequests"
		if statusCode >= httpStatusServerError {
			metricName = "APIErrors"
		}
		dimensions := []types.Dimension{
			{Name: aws.String("Endpoint"), Value: aws.String(endpoint)},
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}
		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}
		if err := m.putMetric(ctx, "APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record APILatency metric: %v", err)
		}
	}()
}

// RecordGeneration records one pattern-generation pass with its mode
// (stochastic or threshold) and track count.
func (m *Client) RecordGeneration(mode string, trackCount int, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		dimensions := []types.Dimension{
			{Name: aws.String("Mode"), Value: aws.String(mode)},
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}
		if err := m.putMetric(ctx, "Generations", 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record Generations metric: %v", err)
		}
		if err := m.putMetric(ctx, "GeneratedTracks", float64(trackCount), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record GeneratedTracks metric: %v", err)
		}
		if err := m.putMetric(ctx, "GenerationLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record GenerationLatency metric: %v", err)
		}
	}()
}

// RecordExpansion records one producer (LLM) expansion pass outcome.
func (m *Client) RecordExpansion(model string, success bool, totalTokens int, duration time.Duration) {
	if !m.enabled {
		return
	}

	go func() {
		ctx := context.Background()
		metricName := "Expansions"
		if !success {
			metricName = "ExpansionFailures"
		}
		dimensions := []types.Dimension{
			{Name: aws.String("Model"), Value: aws.String(model)},
			{Name: aws.String("Environment"), Value: aws.String(m.environment)},
		}
		if err := m.putMetric(ctx, metricName, 1, types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record %s metric: %v", metricName, err)
		}
		if err := m.putMetric(ctx, "ProducerTokens", float64(totalTokens), types.StandardUnitCount, dimensions); err != nil {
			log.Printf("Failed to record ProducerTokens metric: %v", err)
		}
		if err := m.putMetric(ctx, "ExpansionLatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dimensions); err != nil {
			log.Printf("Failed to record ExpansionLatency metric: %v", err)
		}
	}()
}

func (m *Client) putMetric(ctx context.Context, name string, value float64, unit types.StandardUnit, dimensions []types.Dimension) error {
	ctx, cancel := context.WithTimeout(ctx, cloudwatchTimeoutSeconds*time.Second)
	defer cancel()

	_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Value:      aws.Float64(value),
				Unit:       unit,
				Dimensions: dimensions,
				Timestamp:  aws.Time(time.Now()),
			},
		},
	})
	return err
}
