package storage

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"strings"

	"platformcli/internal/cloud"
	"platformcli/internal/logging"
	"platformcli/internal/prompt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3API is the part of the S3 client the storage commands use
type S3API interface {
	s3.ListBucketsAPIClient
	s3.ListObjectsV2APIClient
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	DeleteBucket(ctx context.Context, params *s3.DeleteBucketInput, optFns ...func(*s3.Options)) (*s3.DeleteBucketOutput, error)
	PutPublicAccessBlock(ctx context.Context, params *s3.PutPublicAccessBlockInput, optFns ...func(*s3.Options)) (*s3.PutPublicAccessBlockOutput, error)
	PutBucketPolicy(ctx context.Context, params *s3.PutBucketPolicyInput, optFns ...func(*s3.Options)) (*s3.PutBucketPolicyOutput, error)
	GetBucketTagging(ctx context.Context, params *s3.GetBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.GetBucketTaggingOutput, error)
	PutBucketTagging(ctx context.Context, params *s3.PutBucketTaggingInput, optFns ...func(*s3.Options)) (*s3.PutBucketTaggingOutput, error)
	DeleteObjects(ctx context.Context, params *s3.DeleteObjectsInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectsOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Visibility is the access level requested for a new bucket
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Visibilities lists the accepted visibility values
var Visibilities = []string{string(VisibilityPublic), string(VisibilityPrivate)}

const (
	suffixAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"
	suffixLength   = 6

	// DeleteObjects accepts at most this many keys per request
	maxDeleteBatch = 1000
)

// Options configures the storage commands
type Options struct {
	Owner  string
	Region string

	// NameSuffix generates the random part of bucket names; nil uses RandomSuffix
	NameSuffix func() string
}

// Service runs storage commands restricted to buckets tagged with the owner
type Service struct {
	client  S3API
	opts    Options
	confirm prompt.ConfirmFunc
	out     io.Writer
	log     *zap.Logger
}

// NewService creates a storage command service
func NewService(client S3API, opts Options, confirm prompt.ConfirmFunc, out io.Writer) *Service {
	if opts.NameSuffix == nil {
		opts.NameSuffix = RandomSuffix
	}
	return &Service{
		client:  client,
		opts:    opts,
		confirm: confirm,
		out:     out,
		log:     logging.Logger().With(zap.String("service", "storage")),
	}
}

// RandomSuffix returns six random lowercase alphanumeric characters
func RandomSuffix() string {
	var b strings.Builder
	for i := 0; i < suffixLength; i++ {
		b.WriteByte(suffixAlphabet[rand.Intn(len(suffixAlphabet))])
	}
	return b.String()
}

// BucketName builds the name of a bucket owned by owner
func BucketName(owner, suffix string) string {
	return fmt.Sprintf("s3-bucket-%s-%s", strings.ToLower(owner), suffix)
}

// Create makes a new owner-tagged bucket and returns its name. A public bucket
// needs confirmation; if the public policy cannot be applied the bucket stays private.
// A declined confirmation returns an empty name and no error.
func (s *Service) Create(ctx context.Context, visibility Visibility) (string, error) {
	if visibility == VisibilityPublic {
		if !s.confirm("Are you sure you want to make this bucket public?") {
			fmt.Fprintln(s.out, "Aborted.")
			return "", nil
		}
	}

	name := BucketName(s.opts.Owner, s.opts.NameSuffix())
	fmt.Fprintf(s.out, "Creating bucket: %s\n", name)

	input := &s3.CreateBucketInput{Bucket: aws.String(name)}
	if s.opts.Region != "" && s.opts.Region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(s.opts.Region),
		}
	}
	if _, err := s.client.CreateBucket(ctx, input); err != nil {
		s.log.Warn("Failed to create bucket",
			zap.String("bucket", name),
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		return "", createError(name, err)
	}
	fmt.Fprintf(s.out, "Bucket created: %s\n", name)

	if visibility == VisibilityPublic {
		if err := s.makePublic(ctx, name); err != nil {
			s.log.Warn("Failed to make bucket public",
				zap.String("bucket", name),
				zap.String("provider_message", cloud.ProviderMessage(err)),
				zap.Error(err))
			fmt.Fprintf(s.out, "Could not make bucket public: %v\n", err)
			fmt.Fprintln(s.out, "Bucket remains private for security.")
			visibility = VisibilityPrivate
		} else {
			fmt.Fprintln(s.out, "Bucket set to public using policy")
		}
	}

	_, err := s.client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket: aws.String(name),
		Tagging: &types.Tagging{
			TagSet: []types.Tag{
				{Key: aws.String(cloud.TagOwner), Value: aws.String(s.opts.Owner)},
				{Key: aws.String(cloud.TagVisibility), Value: aws.String(string(visibility))},
			},
		},
	})
	if err != nil {
		s.log.Warn("Failed to tag bucket",
			zap.String("bucket", name),
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		return "", createError(name, err)
	}
	fmt.Fprintln(s.out, "Tags added")

	s.log.Info("Bucket created",
		zap.String("bucket", name),
		zap.String("visibility", string(visibility)))
	return name, nil
}

func (s *Service) makePublic(ctx context.Context, bucket string) error {
	_, err := s.client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(false),
			IgnorePublicAcls:      aws.Bool(false),
			BlockPublicPolicy:     aws.Bool(false),
			RestrictPublicBuckets: aws.Bool(false),
		},
	})
	if err != nil {
		return cloud.Classify(err)
	}

	policy, err := PublicReadPolicy(bucket)
	if err != nil {
		return err
	}
	_, err = s.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(policy),
	})
	return cloud.Classify(err)
}

func createError(bucket string, err error) error {
	err = cloud.Classify(err)
	switch cloud.KindOf(err) {
	case cloud.KindAlreadyExists:
		return cloud.Failf(err, "Bucket name '%s' already exists globally", bucket)
	case cloud.KindInvalidName:
		return cloud.Failf(err, "Invalid bucket name '%s'", bucket)
	default:
		return cloud.Unexpected(err)
	}
}

// Delete removes an owner-tagged bucket after confirmation, purging its objects first.
// A failed purge is reported and the bucket deletion is still attempted.
func (s *Service) Delete(ctx context.Context, bucket string) error {
	tags, err := s.bucketTags(ctx, bucket)
	if err != nil {
		s.log.Debug("Failed to read bucket tags", zap.String("bucket", bucket), zap.Error(err))
		switch cloud.KindOf(err) {
		case cloud.KindNotFound:
			return cloud.Failf(err, "Bucket '%s' does not exist", bucket)
		case cloud.KindNoTags:
			return &cloud.OwnershipError{Resource: "Bucket", ID: bucket, Untagged: true}
		default:
			return cloud.Failf(err, "Error checking bucket: %v", err)
		}
	}
	if err := cloud.CheckOwner("Bucket", bucket, s.opts.Owner, tags); err != nil {
		s.log.Warn("Refusing to delete bucket", zap.String("bucket", bucket), zap.Error(err))
		return err
	}

	fmt.Fprintf(s.out, "About to delete bucket: %s\n", bucket)
	if !s.confirm(fmt.Sprintf("Are you sure you want to delete '%s'?", bucket)) {
		fmt.Fprintln(s.out, "Aborted.")
		return nil
	}

	deleted, err := s.purge(ctx, bucket)
	if err != nil {
		s.log.Warn("Failed to purge bucket",
			zap.String("bucket", bucket),
			zap.String("provider_message", cloud.ProviderMessage(err)),
			zap.Error(err))
		fmt.Fprintf(s.out, "Could not delete objects: %v\n", err)
	}
	if deleted > 0 {
		fmt.Fprintf(s.out, "Deleted %d objects from bucket\n", deleted)
	}

	if _, err := s.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)}); err != nil {
		err = cloud.Classify(err)
		switch cloud.KindOf(err) {
		case cloud.KindNotEmpty:
			return cloud.Failf(err, "Bucket '%s' is not empty", bucket)
		case cloud.KindNotFound:
			return cloud.Failf(err, "Bucket '%s' does not exist", bucket)
		default:
			return cloud.Unexpected(err)
		}
	}

	s.log.Info("Bucket deleted", zap.String("bucket", bucket))
	fmt.Fprintf(s.out, "Bucket '%s' deleted successfully\n", bucket)
	return nil
}

func (s *Service) bucketTags(ctx context.Context, bucket string) (map[string]string, error) {
	output, err := s.client.GetBucketTagging(ctx, &s3.GetBucketTaggingInput{Bucket: aws.String(bucket)})
	if err != nil {
		return nil, cloud.Classify(err)
	}
	tags := make(map[string]string, len(output.TagSet))
	for _, tag := range output.TagSet {
		tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
	}
	return tags, nil
}

// purge deletes every object in the bucket and returns how many were removed
func (s *Service) purge(ctx context.Context, bucket string) (int, error) {
	deleted := 0
	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(maxDeleteBatch),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return deleted, cloud.Classify(err)
		}
		if len(page.Contents) == 0 {
			continue
		}

		objects := make([]types.ObjectIdentifier, 0, len(page.Contents))
		keys := make([]string, 0, len(page.Contents))
		for _, obj := range page.Contents {
			objects = append(objects, types.ObjectIdentifier{Key: obj.Key})
			keys = append(keys, aws.ToString(obj.Key))
		}
		s.log.Debug("Deleting objects",
			zap.String("bucket", bucket),
			zap.Strings("keys", logging.TruncateSlice(keys, 10)))

		output, err := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		if err != nil {
			return deleted, cloud.Classify(err)
		}
		deleted += len(objects) - len(output.Errors)
		if len(output.Errors) > 0 {
			first := output.Errors[0]
			return deleted, fmt.Errorf("failed to delete %d objects, first %s: %s",
				len(output.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}
	return deleted, nil
}

// Upload copies one local file to bucket/key
func (s *Service) Upload(ctx context.Context, localPath, bucket, key string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer file.Close()

	s.log.Debug("Uploading file",
		zap.String("path", localPath),
		zap.String("bucket", bucket),
		zap.String("key", key))

	if _, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   file,
	}); err != nil {
		return fmt.Errorf("failed to upload %s to %s/%s: %w", localPath, bucket, key, cloud.Classify(err))
	}

	fmt.Fprintln(s.out, "The file was uploaded to S3 bucket successfully")
	return nil
}

// List returns the buckets tagged with the owner. Buckets whose tags cannot be
// read are skipped.
func (s *Service) List(ctx context.Context) (Buckets, error) {
	var buckets Buckets
	paginator := s3.NewListBucketsPaginator(s.client, &s3.ListBucketsInput{})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, cloud.Failf(cloud.Classify(err), "Error listing buckets: %v", err)
		}
		for _, b := range page.Buckets {
			name := aws.ToString(b.Name)
			tags, err := s.bucketTags(ctx, name)
			if err != nil {
				s.log.Debug("Skipping bucket", zap.String("bucket", name), zap.Error(err))
				continue
			}
			if tags[cloud.TagOwner] != s.opts.Owner {
				continue
			}
			visibility, ok := tags[cloud.TagVisibility]
			if !ok {
				visibility = "N/A"
			}
			buckets = append(buckets, Bucket{
				Name:       name,
				Visibility: visibility,
				CreatedAt:  aws.ToTime(b.CreationDate),
				Source:     "CLI-created",
			})
		}
	}
	return buckets, nil
}
