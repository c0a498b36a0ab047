package dns

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"platformcli/internal/cloud"
	"platformcli/internal/logging"
	"platformcli/internal/prompt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Route53API is the part of the Route 53 client the DNS commands use
type Route53API interface {
	route53.ListHostedZonesAPIClient
	CreateHostedZone(ctx context.Context, params *route53.CreateHostedZoneInput, optFns ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error)
	GetHostedZone(ctx context.Context, params *route53.GetHostedZoneInput, optFns ...func(*route53.Options)) (*route53.GetHostedZoneOutput, error)
	DeleteHostedZone(ctx context.Context, params *route53.DeleteHostedZoneInput, optFns ...func(*route53.Options)) (*route53.DeleteHostedZoneOutput, error)
	ChangeTagsForResource(ctx context.Context, params *route53.ChangeTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ChangeTagsForResourceOutput, error)
	ListTagsForResource(ctx context.Context, params *route53.ListTagsForResourceInput, optFns ...func(*route53.Options)) (*route53.ListTagsForResourceOutput, error)
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput, optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// RecordAction is a record set modification requested by the operator
type RecordAction string

const (
	RecordCreate RecordAction = "create"
	RecordUpdate RecordAction = "update"
	RecordDelete RecordAction = "delete"
)

// RecordActions lists the accepted manage actions
var RecordActions = []string{string(RecordCreate), string(RecordUpdate), string(RecordDelete)}

var changeActions = map[RecordAction]types.ChangeAction{
	RecordCreate: types.ChangeActionCreate,
	RecordUpdate: types.ChangeActionUpsert,
	RecordDelete: types.ChangeActionDelete,
}

// ChangeComment is attached to every change batch
const ChangeComment = "CLI change"

// ErrCNAMEValues rejects a CNAME record with anything but one value
var ErrCNAMEValues = errors.New("CNAME must have exactly one value.")

// ErrNoValues rejects a record without values
var ErrNoValues = errors.New("Record value is required.")

// UnsupportedActionError is returned for actions outside RecordActions
type UnsupportedActionError struct {
	Action string
}

func (e *UnsupportedActionError) Error() string {
	return fmt.Sprintf("Unsupported action: %s", e.Action)
}

// ParseRecordAction maps an operator action name, in any case, to a RecordAction
func ParseRecordAction(action string) (RecordAction, error) {
	a := RecordAction(strings.ToLower(action))
	if _, ok := changeActions[a]; !ok {
		return "", &UnsupportedActionError{Action: action}
	}
	return a, nil
}

// Options configures the DNS commands
type Options struct {
	Owner string
	TTL   int64
}

// Service runs DNS commands restricted to hosted zones tagged with the owner
type Service struct {
	client  Route53API
	opts    Options
	confirm prompt.ConfirmFunc
	out     io.Writer
	log     *zap.Logger
}

// NewService creates a DNS command service
func NewService(client Route53API, opts Options, confirm prompt.ConfirmFunc, out io.Writer) *Service {
	return &Service{
		client:  client,
		opts:    opts,
		confirm: confirm,
		out:     out,
		log:     logging.Logger().With(zap.String("service", "dns")),
	}
}

// ZoneID strips the "/hostedzone/" prefix the API puts in front of zone IDs
func ZoneID(id string) string {
	return strings.TrimPrefix(id, "/hostedzone/")
}

// Create makes a hosted zone for domain, tags it with the owner and returns its ID
func (s *Service) Create(ctx context.Context, domain string) (string, error) {
	callerReference := uuid.NewString()
	s.log.Debug("Creating hosted zone",
		zap.String("domain", domain),
		zap.String("caller_reference", callerReference))

	output, err := s.client.CreateHostedZone(ctx, &route53.CreateHostedZoneInput{
		Name:            aws.String(domain),
		CallerReference: aws.String(callerReference),
	})
	if err != nil {
		s.log.Warn("Failed to create hosted zone",
			zap.String("domain", domain),
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		err = cloud.Classify(err)
		switch cloud.KindOf(err) {
		case cloud.KindAlreadyExists:
			return "", cloud.Failf(err, "Hosted zone for '%s' already exists", domain)
		case cloud.KindInvalidName:
			return "", cloud.Failf(err, "Invalid domain name '%s'", domain)
		default:
			return "", cloud.Unexpected(err)
		}
	}

	zoneID := ZoneID(aws.ToString(output.HostedZone.Id))
	_, err = s.client.ChangeTagsForResource(ctx, &route53.ChangeTagsForResourceInput{
		ResourceType: types.TagResourceTypeHostedzone,
		ResourceId:   aws.String(zoneID),
		AddTags: []types.Tag{
			{Key: aws.String(cloud.TagOwner), Value: aws.String(s.opts.Owner)},
		},
	})
	if err != nil {
		s.log.Warn("Failed to tag hosted zone",
			zap.String("zone_id", zoneID),
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		return zoneID, cloud.Failf(cloud.Classify(err), "Hosted zone %s was created but could not be tagged: %v", zoneID, err)
	}

	s.log.Info("Hosted zone created", zap.String("zone_id", zoneID), zap.String("domain", domain))
	fmt.Fprintf(s.out, "Created hosted zone %s\n", zoneID)
	return zoneID, nil
}

// Delete removes an owner-tagged hosted zone after confirmation
func (s *Service) Delete(ctx context.Context, zoneID string) error {
	zoneID = ZoneID(zoneID)

	zone, err := s.client.GetHostedZone(ctx, &route53.GetHostedZoneInput{Id: aws.String(zoneID)})
	if err != nil {
		return checkError(zoneID, err)
	}
	zoneName := aws.ToString(zone.HostedZone.Name)

	if err := s.checkOwner(ctx, zoneID); err != nil {
		return err
	}

	fmt.Fprintf(s.out, "About to delete hosted zone: %s (%s)\n", zoneName, zoneID)
	if !s.confirm(fmt.Sprintf("Are you sure you want to delete zone '%s'?", zoneName)) {
		fmt.Fprintln(s.out, "Aborted.")
		return nil
	}

	if _, err := s.client.DeleteHostedZone(ctx, &route53.DeleteHostedZoneInput{Id: aws.String(zoneID)}); err != nil {
		s.log.Warn("Failed to delete hosted zone",
			zap.String("zone_id", zoneID),
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		err = cloud.Classify(err)
		switch cloud.KindOf(err) {
		case cloud.KindNotFound:
			return cloud.Failf(err, "Hosted zone '%s' does not exist", zoneID)
		case cloud.KindNotEmpty:
			return cloud.Failf(err, "Cannot delete zone '%s' - it contains DNS records\nDelete all custom DNS records first", zoneID)
		default:
			return cloud.Unexpected(err)
		}
	}

	s.log.Info("Hosted zone deleted", zap.String("zone_id", zoneID))
	fmt.Fprintf(s.out, "Hosted zone '%s' (%s) deleted successfully\n", zoneName, zoneID)
	return nil
}

// Manage submits a single-change batch for one record set in an owner-tagged zone.
// value may hold several comma-separated values. It returns the change ID.
func (s *Service) Manage(ctx context.Context, action RecordAction, zoneID, name, recordType, value string) (string, error) {
	changeAction, ok := changeActions[action]
	if !ok {
		return "", &UnsupportedActionError{Action: string(action)}
	}
	recordType = strings.ToUpper(recordType)
	values := SplitValues(value)
	if len(values) == 0 {
		return "", ErrNoValues
	}
	if recordType == string(types.RRTypeCname) && len(values) != 1 {
		return "", ErrCNAMEValues
	}

	zoneID = ZoneID(zoneID)
	if err := s.checkOwner(ctx, zoneID); err != nil {
		return "", err
	}

	records := make([]types.ResourceRecord, 0, len(values))
	for _, v := range values {
		records = append(records, types.ResourceRecord{Value: aws.String(v)})
	}

	s.log.Debug("Changing record set",
		zap.String("zone_id", zoneID),
		zap.String("action", string(changeAction)),
		zap.String("name", name),
		zap.String("type", recordType),
		zap.Strings("values", logging.TruncateSlice(values, 10)))

	output, err := s.client.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(zoneID),
		ChangeBatch: &types.ChangeBatch{
			Comment: aws.String(ChangeComment),
			Changes: []types.Change{
				{
					Action: changeAction,
					ResourceRecordSet: &types.ResourceRecordSet{
						Name:            aws.String(name),
						Type:            types.RRType(recordType),
						TTL:             aws.Int64(s.opts.TTL),
						ResourceRecords: records,
					},
				},
			},
		},
	})
	if err != nil {
		s.log.Warn("Failed to change record set",
			zap.String("zone_id", zoneID),
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		return "", cloud.Failf(cloud.Classify(err), "Failed to %s record: %v", action, err)
	}

	changeID := aws.ToString(output.ChangeInfo.Id)
	fmt.Fprintf(s.out, "OK: %s %s %s -> Change ID: %s\n", changeAction, recordType, name, changeID)
	return changeID, nil
}

// SplitValues splits a comma-separated record value list, dropping blanks
func SplitValues(value string) []string {
	var values []string
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			values = append(values, v)
		}
	}
	return values
}

// List returns the hosted zones tagged with the owner. Zones whose tags cannot
// be read are skipped.
func (s *Service) List(ctx context.Context) (Zones, error) {
	var zones Zones
	paginator := route53.NewListHostedZonesPaginator(s.client, &route53.ListHostedZonesInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, cloud.Failf(cloud.Classify(err), "Error listing zones: %v", err)
		}
		for _, zone := range page.HostedZones {
			zoneID := ZoneID(aws.ToString(zone.Id))
			tags, err := s.zoneTags(ctx, zoneID)
			if err != nil {
				s.log.Debug("Skipping hosted zone", zap.String("zone_id", zoneID), zap.Error(err))
				continue
			}
			if tags[cloud.TagOwner] != s.opts.Owner {
				continue
			}
			zones = append(zones, Zone{
				Name:  aws.ToString(zone.Name),
				ID:    zoneID,
				Owner: s.opts.Owner,
			})
		}
	}
	return zones, nil
}

func (s *Service) checkOwner(ctx context.Context, zoneID string) error {
	tags, err := s.zoneTags(ctx, zoneID)
	if err != nil {
		return checkError(zoneID, err)
	}
	if err := cloud.CheckOwner("Hosted zone", zoneID, s.opts.Owner, tags); err != nil {
		s.log.Warn("Hosted zone not owned", zap.String("zone_id", zoneID), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) zoneTags(ctx context.Context, zoneID string) (map[string]string, error) {
	output, err := s.client.ListTagsForResource(ctx, &route53.ListTagsForResourceInput{
		ResourceType: types.TagResourceTypeHostedzone,
		ResourceId:   aws.String(zoneID),
	})
	if err != nil {
		return nil, cloud.Classify(err)
	}
	tags := map[string]string{}
	if output.ResourceTagSet != nil {
		for _, tag := range output.ResourceTagSet.Tags {
			tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
	}
	return tags, nil
}

func checkError(zoneID string, err error) error {
	err = cloud.Classify(err)
	if cloud.KindOf(err) == cloud.KindNotFound {
		return cloud.Failf(err, "Hosted zone '%s' does not exist", zoneID)
	}
	return cloud.Failf(err, "Error checking zone: %v", err)
}
