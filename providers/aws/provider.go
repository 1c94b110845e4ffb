// Package aws reads EC2 instance and CloudWatch alarm state via the AWS SDK.
package aws

import (
	"context"
	"fmt"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// EC2API is the slice of the EC2 client this tool uses.
type EC2API interface {
	ec2.DescribeInstancesAPIClient
	ec2.DescribeInstanceStatusAPIClient
}

// CloudWatchAPI is the slice of the CloudWatch client this tool uses.
type CloudWatchAPI interface {
	cloudwatch.DescribeAlarmsAPIClient
}

// Provider reads instance and alarm state for a single region.
// Pagination, retries and credential resolution stay inside the SDK.
type Provider struct {
	ec2Client EC2API
	cwClient  CloudWatchAPI
	region    string
}

// New creates a provider using the default AWS credential chain.
func New(ctx context.Context, region string) (*Provider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &Provider{
		ec2Client: ec2.NewFromConfig(cfg),
		cwClient:  cloudwatch.NewFromConfig(cfg),
		region:    region,
	}, nil
}

// NewWithClients creates a provider with injected clients, for tests.
func NewWithClients(ec2Client EC2API, cwClient CloudWatchAPI, region string) *Provider {
	return &Provider{
		ec2Client: ec2Client,
		cwClient:  cwClient,
		region:    region,
	}
}

// Region returns the provider region.
func (p *Provider) Region() string {
	return p.region
}

// safeTimeValue safely converts *time.Time to time.Time
func safeTimeValue(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
