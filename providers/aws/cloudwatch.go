package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	"github.com/MarvelOlas/aws-health-checker/types"
)

// ListAlarms discovers CloudWatch metric alarms in the region.
func (p *Provider) ListAlarms(ctx context.Context, filter types.AlarmFilter) ([]types.Alarm, error) {
	var alarms []types.Alarm

	input := &cloudwatch.DescribeAlarmsInput{}
	if filter.NamePrefix != "" {
		input.AlarmNamePrefix = aws.String(filter.NamePrefix)
	}

	paginator := cloudwatch.NewDescribeAlarmsPaginator(p.cwClient, input)

	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe CloudWatch alarms: %w", err)
		}

		for _, alarm := range output.MetricAlarms {
			converted := p.convertAlarm(alarm)
			if filter.Matches(converted) {
				alarms = append(alarms, converted)
			}
		}
	}

	return alarms, nil
}

// convertAlarm converts an AWS metric alarm to the report model.
func (p *Provider) convertAlarm(alarm cwtypes.MetricAlarm) types.Alarm {
	return types.Alarm{
		Name:        aws.ToString(alarm.AlarmName),
		State:       string(alarm.StateValue),
		MetricName:  aws.ToString(alarm.MetricName),
		Namespace:   aws.ToString(alarm.Namespace),
		Description: aws.ToString(alarm.AlarmDescription),
		Reason:      aws.ToString(alarm.StateReason),
		Region:      p.region,
		UpdatedAt:   safeTimeValue(alarm.StateUpdatedTimestamp),
	}
}
