package dns_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
)

type fakeZone struct {
	name    string
	tags    map[string]string
	records int
}

// fakeRoute53 keeps hosted zones in memory and records every change batch
type fakeRoute53 struct {
	mu      sync.Mutex
	zones   map[string]*fakeZone
	calls   []string
	changes []*route53.ChangeResourceRecordSetsInput
	refs    []string
	next    int

	createErr error
	tagErr    error
	changeErr error
}

func newFakeRoute53() *fakeRoute53 {
	return &fakeRoute53{zones: map[string]*fakeZone{}}
}

func (f *fakeRoute53) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeRoute53) called(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

func (f *fakeRoute53) addZone(id, name string, tags map[string]string, records int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.zones[id] = &fakeZone{name: name, tags: tags, records: records}
}

func trimID(id *string) string {
	return strings.TrimPrefix(aws.ToString(id), "/hostedzone/")
}

func noSuchZone(id string) error {
	return &types.NoSuchHostedZone{Message: aws.String("No hosted zone found with ID: " + id)}
}

func (f *fakeRoute53) CreateHostedZone(ctx context.Context, in *route53.CreateHostedZoneInput, opts ...func(*route53.Options)) (*route53.CreateHostedZoneOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateHostedZone")
	f.refs = append(f.refs, aws.ToString(in.CallerReference))
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.next++
	id := fmt.Sprintf("ZFAKE%04d", f.next)
	name := aws.ToString(in.Name)
	if !strings.HasSuffix(name, ".") {
		name += "."
	}
	f.zones[id] = &fakeZone{name: name}
	return &route53.CreateHostedZoneOutput{
		HostedZone: &types.HostedZone{Id: aws.String("/hostedzone/" + id), Name: aws.String(name)},
	}, nil
}

func (f *fakeRoute53) GetHostedZone(ctx context.Context, in *route53.GetHostedZoneInput, opts ...func(*route53.Options)) (*route53.GetHostedZoneOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetHostedZone")
	id := trimID(in.Id)
	z, ok := f.zones[id]
	if !ok {
		return nil, noSuchZone(id)
	}
	return &route53.GetHostedZoneOutput{
		HostedZone: &types.HostedZone{Id: aws.String("/hostedzone/" + id), Name: aws.String(z.name)},
	}, nil
}

func (f *fakeRoute53) DeleteHostedZone(ctx context.Context, in *route53.DeleteHostedZoneInput, opts ...func(*route53.Options)) (*route53.DeleteHostedZoneOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteHostedZone")
	id := trimID(in.Id)
	z, ok := f.zones[id]
	if !ok {
		return nil, noSuchZone(id)
	}
	if z.records > 0 {
		return nil, &types.HostedZoneNotEmpty{Message: aws.String("The specified hosted zone contains non-required resource record sets")}
	}
	delete(f.zones, id)
	return &route53.DeleteHostedZoneOutput{}, nil
}

func (f *fakeRoute53) ChangeTagsForResource(ctx context.Context, in *route53.ChangeTagsForResourceInput, opts ...func(*route53.Options)) (*route53.ChangeTagsForResourceOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ChangeTagsForResource")
	if f.tagErr != nil {
		return nil, f.tagErr
	}
	id := aws.ToString(in.ResourceId)
	z, ok := f.zones[id]
	if !ok {
		return nil, noSuchZone(id)
	}
	if z.tags == nil {
		z.tags = map[string]string{}
	}
	for _, tag := range in.AddTags {
		z.tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return &route53.ChangeTagsForResourceOutput{}, nil
}

func (f *fakeRoute53) ListTagsForResource(ctx context.Context, in *route53.ListTagsForResourceInput, opts ...func(*route53.Options)) (*route53.ListTagsForResourceOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTagsForResource")
	id := aws.ToString(in.ResourceId)
	z, ok := f.zones[id]
	if !ok {
		return nil, noSuchZone(id)
	}
	set := &types.ResourceTagSet{ResourceId: aws.String(id), ResourceType: in.ResourceType}
	keys := make([]string, 0, len(z.tags))
	for k := range z.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		set.Tags = append(set.Tags, types.Tag{Key: aws.String(k), Value: aws.String(z.tags[k])})
	}
	return &route53.ListTagsForResourceOutput{ResourceTagSet: set}, nil
}

func (f *fakeRoute53) ChangeResourceRecordSets(ctx context.Context, in *route53.ChangeResourceRecordSetsInput, opts ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ChangeResourceRecordSets")
	f.changes = append(f.changes, in)
	if f.changeErr != nil {
		return nil, f.changeErr
	}
	return &route53.ChangeResourceRecordSetsOutput{
		ChangeInfo: &types.ChangeInfo{
			Id:     aws.String(fmt.Sprintf("/change/C%04d", len(f.changes))),
			Status: types.ChangeStatusPending,
		},
	}, nil
}

func (f *fakeRoute53) ListHostedZones(ctx context.Context, in *route53.ListHostedZonesInput, opts ...func(*route53.Options)) (*route53.ListHostedZonesOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListHostedZones")
	ids := make([]string, 0, len(f.zones))
	for id := range f.zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := &route53.ListHostedZonesOutput{}
	for _, id := range ids {
		out.HostedZones = append(out.HostedZones, types.HostedZone{
			Id:   aws.String("/hostedzone/" + id),
			Name: aws.String(f.zones[id].name),
		})
	}
	return out, nil
}
