package cloud

import (
	"context"
	"fmt"

	"platformcli/internal/config"
	"platformcli/internal/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"
)

// Service names a provider API the session can build a client for
type Service string

const (
	ServiceCompute Service = "ec2"
	ServiceStorage Service = "s3"
	ServiceDNS     Service = "route53"
)

// Session holds the resolved provider configuration shared by all clients
type Session struct {
	cfg aws.Config
}

// NewSession builds a session from the configured credentials and region.
// Credentials are not checked here; a bad or missing key fails on the first call.
func NewSession(ctx context.Context, cfg *config.Config) (*Session, error) {
	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" || cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logging.Logger().Debug("AWS session ready", zap.String("region", awsCfg.Region))
	return &Session{cfg: awsCfg}, nil
}

// Region returns the region the session is bound to
func (s *Session) Region() string {
	return s.cfg.Region
}

// EC2 returns a compute client
func (s *Session) EC2() *ec2.Client {
	s.logClient(ServiceCompute)
	return ec2.NewFromConfig(s.cfg)
}

// S3 returns a storage client
func (s *Session) S3() *s3.Client {
	s.logClient(ServiceStorage)
	return s3.NewFromConfig(s.cfg)
}

// Route53 returns a DNS client
func (s *Session) Route53() *route53.Client {
	s.logClient(ServiceDNS)
	return route53.NewFromConfig(s.cfg)
}

func (s *Session) logClient(service Service) {
	logging.Logger().Debug("Creating client",
		zap.String("service", string(service)),
		zap.String("region", s.cfg.Region))
}
