package compute

import (
	"context"
	"fmt"
	"io"
	"strings"

	"platformcli/internal/cloud"
	"platformcli/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"go.uber.org/zap"
)

// EC2API is the part of the EC2 client the compute commands use
type EC2API interface {
	ec2.DescribeInstancesAPIClient
	RunInstances(ctx context.Context, params *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	StartInstances(ctx context.Context, params *ec2.StartInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StartInstancesOutput, error)
	StopInstances(ctx context.Context, params *ec2.StopInstancesInput, optFns ...func(*ec2.Options)) (*ec2.StopInstancesOutput, error)
	TerminateInstances(ctx context.Context, params *ec2.TerminateInstancesInput, optFns ...func(*ec2.Options)) (*ec2.TerminateInstancesOutput, error)
}

// Options carries the local compute policy
type Options struct {
	Owner         string
	MaxRunning    int
	Images        map[string]string // image choice -> AMI id
	InstanceTypes []string
}

// Action is an instance lifecycle operation
type Action string

const (
	ActionStart     Action = "start"
	ActionStop      Action = "stop"
	ActionTerminate Action = "terminate"
)

// Actions lists the accepted manage actions
var Actions = []string{string(ActionStart), string(ActionStop), string(ActionTerminate)}

// CapacityError is returned when another running instance would exceed the cap
type CapacityError struct {
	Max     int
	Running int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("You can't have more than %d running instances.", e.Max)
}

// Service runs compute commands restricted to instances tagged with the owner
type Service struct {
	client EC2API
	opts   Options
	out    io.Writer
	log    *zap.Logger
}

// NewService creates a compute command service writing results to out
func NewService(client EC2API, opts Options, out io.Writer) *Service {
	return &Service{
		client: client,
		opts:   opts,
		out:    out,
		log:    logging.Logger().With(zap.String("service", "compute")),
	}
}

// List returns the owner-tagged instances
func (s *Service) List(ctx context.Context) (Instances, error) {
	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String("tag:" + cloud.TagOwner), Values: []string{s.opts.Owner}},
		},
	}

	var instances Instances
	paginator := ec2.NewDescribeInstancesPaginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to describe instances: %w", cloud.Classify(err))
		}
		for _, reservation := range page.Reservations {
			for _, inst := range reservation.Instances {
				instances = append(instances, newInstance(inst))
			}
		}
	}

	s.log.Debug("Listed instances",
		zap.Int("count", len(instances)),
		zap.Int("running", instances.Running()))
	return instances, nil
}

// Create launches one instance of the chosen image and type, unless the
// running-instance cap is already reached. It returns the new instance ID.
func (s *Service) Create(ctx context.Context, image, instanceType string) (string, error) {
	image = strings.ToLower(image)
	instanceType = strings.ToLower(instanceType)

	imageID, ok := s.opts.Images[image]
	if !ok {
		return "", fmt.Errorf("unsupported image %q", image)
	}
	if !contains(s.opts.InstanceTypes, instanceType) {
		return "", fmt.Errorf("unsupported instance type %q", instanceType)
	}

	if err := s.checkCapacity(ctx); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%s-%s", s.opts.Owner, image, instanceType)
	s.log.Info("Running instance",
		zap.String("image", image),
		zap.String("image_id", imageID),
		zap.String("type", instanceType),
		zap.String("name", name))

	output, err := s.client.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:      aws.String(imageID),
		InstanceType: types.InstanceType(instanceType),
		MinCount:     aws.Int32(1),
		MaxCount:     aws.Int32(1),
		TagSpecifications: []types.TagSpecification{
			{
				ResourceType: types.ResourceTypeInstance,
				Tags: []types.Tag{
					{Key: aws.String(cloud.TagName), Value: aws.String(name)},
					{Key: aws.String(cloud.TagOwner), Value: aws.String(s.opts.Owner)},
				},
			},
		},
	})
	if err != nil {
		s.log.Warn("Failed to run instance",
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		return "", cloud.Unexpected(err)
	}
	if len(output.Instances) == 0 {
		return "", fmt.Errorf("provider returned no instance")
	}

	instanceID := aws.ToString(output.Instances[0].InstanceId)
	fmt.Fprintf(s.out, "Instance created: %s (%s, %s)\n", instanceID, image, instanceType)
	return instanceID, nil
}

// Manage starts, stops or terminates an instance. Start is subject to the running-instance cap.
func (s *Service) Manage(ctx context.Context, action Action, instanceID string) error {
	var err error
	switch action {
	case ActionStart:
		if err := s.checkCapacity(ctx); err != nil {
			return err
		}
		_, err = s.client.StartInstances(ctx, &ec2.StartInstancesInput{InstanceIds: []string{instanceID}})
	case ActionStop:
		_, err = s.client.StopInstances(ctx, &ec2.StopInstancesInput{InstanceIds: []string{instanceID}})
	case ActionTerminate:
		_, err = s.client.TerminateInstances(ctx, &ec2.TerminateInstancesInput{InstanceIds: []string{instanceID}})
	default:
		return cloud.Failf(nil, "Unsupported action: %s", action)
	}
	if err != nil {
		s.log.Warn("Instance action failed",
			zap.String("action", string(action)),
			zap.String("instance_id", instanceID),
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		return manageError(action, instanceID, err)
	}

	fmt.Fprintf(s.out, "Instance %s %s.\n", instanceID, pastTense(action))
	return nil
}

func (s *Service) checkCapacity(ctx context.Context) error {
	instances, err := s.List(ctx)
	if err != nil {
		return cloud.Unexpected(err)
	}
	if running := instances.Running(); running >= s.opts.MaxRunning {
		s.log.Info("Running instance cap reached",
			zap.Int("running", running),
			zap.Int("max", s.opts.MaxRunning))
		return &CapacityError{Max: s.opts.MaxRunning, Running: running}
	}
	return nil
}

func manageError(action Action, instanceID string, err error) error {
	err = cloud.Classify(err)
	switch cloud.KindOf(err) {
	case cloud.KindNotFound:
		return cloud.Failf(err, "Instance '%s' does not exist", instanceID)
	case cloud.KindIncorrectState:
		return cloud.Failf(err, "Cannot %s instance '%s' - incorrect state", action, instanceID)
	case cloud.KindUnauthorized:
		return cloud.Failf(err, "No permission to %s instance '%s'", action, instanceID)
	default:
		return cloud.Unexpected(err)
	}
}

func pastTense(action Action) string {
	switch action {
	case ActionStart:
		return "started"
	case ActionStop:
		return "stopped"
	default:
		return "terminated"
	}
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}
