package storage

import (
	"encoding/json"
	"fmt"
	"time"
)

// Bucket is one owner-tagged storage bucket
type Bucket struct {
	Name       string    `json:"name" yaml:"name"`
	Visibility string    `json:"visibility" yaml:"visibility"`
	CreatedAt  time.Time `json:"created" yaml:"created"`
	Source     string    `json:"source" yaml:"source"`
}

// Buckets is a list result printable as a table
type Buckets []Bucket

func (l Buckets) Len() int { return len(l) }

func (l Buckets) Headers() []string {
	return []string{"Bucket Name", "Visibility", "Created", "Source"}
}

func (l Buckets) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, b := range l {
		rows = append(rows, []string{b.Name, b.Visibility, b.CreatedAt.Format("2006-01-02 15:04"), b.Source})
	}
	return rows
}

type policyStatement struct {
	Effect    string `json:"Effect"`
	Principal string `json:"Principal"`
	Action    string `json:"Action"`
	Resource  string `json:"Resource"`
}

type policyDocument struct {
	Version   string            `json:"Version"`
	Statement []policyStatement `json:"Statement"`
}

// PublicReadPolicy returns a bucket policy granting anonymous GetObject on every key
func PublicReadPolicy(bucket string) (string, error) {
	doc := policyDocument{
		Version: "2012-10-17",
		Statement: []policyStatement{
			{
				Effect:    "Allow",
				Principal: "*",
				Action:    "s3:GetObject",
				Resource:  fmt.Sprintf("arn:aws:s3:::%s/*", bucket),
			},
		},
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal bucket policy: %w", err)
	}
	return string(data), nil
}
