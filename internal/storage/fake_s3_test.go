package storage_test

import (
	"context"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

type fakeBucket struct {
	created time.Time
	tags    map[string]string
	policy  string
	public  bool
	objects map[string][]byte
}

// fakeS3 keeps buckets in memory and counts every call
type fakeS3 struct {
	mu      sync.Mutex
	buckets map[string]*fakeBucket
	calls   []string

	createErr       error
	publicBlockErr  error
	deleteObjectErr error
	createConfig    *types.CreateBucketConfiguration
	listPages       int
	deleteBatches   []int
}

func newFakeS3() *fakeS3 {
	return &fakeS3{buckets: map[string]*fakeBucket{}}
}

func (f *fakeS3) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeS3) called(call string) int {
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

func (f *fakeS3) addBucket(name string, tags map[string]string, keys ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b := &fakeBucket{created: time.Date(2025, 7, 1, 10, 30, 0, 0, time.UTC), tags: tags, objects: map[string][]byte{}}
	for _, k := range keys {
		b.objects[k] = []byte(k)
	}
	f.buckets[name] = b
}

func noSuchBucket() error {
	return &types.NoSuchBucket{Message: aws.String("The specified bucket does not exist")}
}

func (f *fakeS3) ListBuckets(ctx context.Context, in *s3.ListBucketsInput, opts ...func(*s3.Options)) (*s3.ListBucketsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListBuckets")
	names := make([]string, 0, len(f.buckets))
	for name := range f.buckets {
		names = append(names, name)
	}
	sort.Strings(names)
	out := &s3.ListBucketsOutput{}
	for _, name := range names {
		out.Buckets = append(out.Buckets, types.Bucket{Name: aws.String(name), CreationDate: aws.Time(f.buckets[name].created)})
	}
	return out, nil
}

func (f *fakeS3) ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, opts ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListObjectsV2")
	b, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, noSuchBucket()
	}

	// continuation tokens are the last key of the previous page, as keys sort lexically
	after := aws.ToString(in.ContinuationToken)
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		if k > after {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	limit := int(aws.ToInt32(in.MaxKeys))
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	out := &s3.ListObjectsV2Output{IsTruncated: aws.Bool(false)}
	if len(keys) > limit {
		keys = keys[:limit]
		out.IsTruncated = aws.Bool(true)
		out.NextContinuationToken = aws.String(keys[len(keys)-1])
	}
	out.KeyCount = aws.Int32(int32(len(keys)))
	for _, k := range keys {
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}
	f.listPages++
	return out, nil
}

func (f *fakeS3) CreateBucket(ctx context.Context, in *s3.CreateBucketInput, opts ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateBucket")
	if f.createErr != nil {
		return nil, f.createErr
	}
	name := aws.ToString(in.Bucket)
	if _, exists := f.buckets[name]; exists {
		return nil, &types.BucketAlreadyExists{Message: aws.String("taken")}
	}
	f.createConfig = in.CreateBucketConfiguration
	f.buckets[name] = &fakeBucket{created: time.Now(), objects: map[string][]byte{}}
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) DeleteBucket(ctx context.Context, in *s3.DeleteBucketInput, opts ...func(*s3.Options)) (*s3.DeleteBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteBucket")
	b, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, noSuchBucket()
	}
	if len(b.objects) > 0 {
		return nil, &smithy.GenericAPIError{Code: "BucketNotEmpty", Message: "The bucket you tried to delete is not empty"}
	}
	delete(f.buckets, aws.ToString(in.Bucket))
	return &s3.DeleteBucketOutput{}, nil
}

func (f *fakeS3) PutPublicAccessBlock(ctx context.Context, in *s3.PutPublicAccessBlockInput, opts ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutPublicAccessBlock")
	if f.publicBlockErr != nil {
		return nil, f.publicBlockErr
	}
	return &s3.PutPublicAccessBlockOutput{}, nil
}

func (f *fakeS3) PutBucketPolicy(ctx context.Context, in *s3.PutBucketPolicyInput, opts ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutBucketPolicy")
	b, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, noSuchBucket()
	}
	b.policy = aws.ToString(in.Policy)
	b.public = true
	return &s3.PutBucketPolicyOutput{}, nil
}

func (f *fakeS3) GetBucketTagging(ctx context.Context, in *s3.GetBucketTaggingInput, opts ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetBucketTagging")
	b, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, noSuchBucket()
	}
	if len(b.tags) == 0 {
		return nil, &smithy.GenericAPIError{Code: "NoSuchTagSet", Message: "The TagSet does not exist"}
	}
	keys := make([]string, 0, len(b.tags))
	for k := range b.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := &s3.GetBucketTaggingOutput{}
	for _, k := range keys {
		out.TagSet = append(out.TagSet, types.Tag{Key: aws.String(k), Value: aws.String(b.tags[k])})
	}
	return out, nil
}

func (f *fakeS3) PutBucketTagging(ctx context.Context, in *s3.PutBucketTaggingInput, opts ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutBucketTagging")
	b, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, noSuchBucket()
	}
	b.tags = map[string]string{}
	for _, tag := range in.Tagging.TagSet {
		b.tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return &s3.PutBucketTaggingOutput{}, nil
}

func (f *fakeS3) DeleteObjects(ctx context.Context, in *s3.DeleteObjectsInput, opts ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteObjects")
	if f.deleteObjectErr != nil {
		return nil, f.deleteObjectErr
	}
	b, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, noSuchBucket()
	}
	if len(in.Delete.Objects) > 1000 {
		return nil, &smithy.GenericAPIError{Code: "MalformedXML", Message: "more than 1000 keys"}
	}
	f.deleteBatches = append(f.deleteBatches, len(in.Delete.Objects))
	for _, obj := range in.Delete.Objects {
		delete(b.objects, aws.ToString(obj.Key))
	}
	return &s3.DeleteObjectsOutput{}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("PutObject")
	b, ok := f.buckets[aws.ToString(in.Bucket)]
	if !ok {
		return nil, noSuchBucket()
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	b.objects[aws.ToString(in.Key)] = data
	return &s3.PutObjectOutput{}, nil
}
