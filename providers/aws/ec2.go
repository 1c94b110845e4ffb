package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/MarvelOlas/aws-health-checker/types"
)

// ListInstances discovers EC2 instances in the region.
func (p *Provider) ListInstances(ctx context.Context, filter types.InstanceFilter) ([]types.Instance, error) {
	var instances []types.Instance

	paginator := ec2.NewDescribeInstancesPaginator(p.ec2Client, &ec2.DescribeInstancesInput{})

	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe EC2 instances: %w", err)
		}

		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				converted := p.convertInstance(instance)
				if filter.Matches(converted) {
					instances = append(instances, converted)
				}
			}
		}
	}

	if err := p.attachStatusChecks(ctx, instances); err != nil {
		return nil, err
	}

	return instances, nil
}

// attachStatusChecks merges DescribeInstanceStatus results into instances.
func (p *Provider) attachStatusChecks(ctx context.Context, instances []types.Instance) error {
	if len(instances) == 0 {
		return nil
	}

	statuses := make(map[string]ec2types.InstanceStatus)

	paginator := ec2.NewDescribeInstanceStatusPaginator(p.ec2Client, &ec2.DescribeInstanceStatusInput{
		IncludeAllInstances: aws.Bool(true),
	})

	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return fmt.Errorf("failed to describe instance status: %w", err)
		}

		for _, status := range output.InstanceStatuses {
			statuses[aws.ToString(status.InstanceId)] = status
		}
	}

	for i := range instances {
		status, ok := statuses[instances[i].ID]
		if !ok {
			continue
		}
		if status.SystemStatus != nil {
			instances[i].SystemStatus = string(status.SystemStatus.Status)
		}
		if status.InstanceStatus != nil {
			instances[i].StatusCheck = string(status.InstanceStatus.Status)
		}
	}

	return nil
}

// convertInstance converts an AWS EC2 instance to the report model.
func (p *Provider) convertInstance(instance ec2types.Instance) types.Instance {
	tags := convertTags(instance.Tags)

	converted := types.Instance{
		ID:         aws.ToString(instance.InstanceId),
		Name:       tags["Name"],
		Type:       string(instance.InstanceType),
		Region:     p.region,
		PrivateIP:  aws.ToString(instance.PrivateIpAddress),
		PublicIP:   aws.ToString(instance.PublicIpAddress),
		LaunchTime: safeTimeValue(instance.LaunchTime),
		Tags:       tags,
	}

	if instance.State != nil {
		converted.State = string(instance.State.Name)
	}
	if instance.Placement != nil {
		converted.AZ = aws.ToString(instance.Placement.AvailabilityZone)
	}

	return converted
}

// convertTags converts EC2 tags to a plain map.
func convertTags(ec2Tags []ec2types.Tag) map[string]string {
	tags := make(map[string]string, len(ec2Tags))
	for _, tag := range ec2Tags {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags
}
