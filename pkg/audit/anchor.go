package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// Anchorer writes daily ledger root hashes to S3 with Object Lock so that
// recorded roots cannot be altered after the fact.
type Anchorer struct {
	client    *s3.Client
	bucket    string
	keyPrefix string
}

// AnchorerConfig holds S3 configuration for ledger anchoring.
type AnchorerConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	KeyPrefix       string // defaults to "ledger-anchors/"
}

// NewS3Client builds an S3 client from static credentials.
func NewS3Client(ctx context.Context, region, accessKeyID, secretAccessKey string) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			accessKeyID,
			secretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return s3.NewFromConfig(awsCfg), nil
}

func NewAnchorer(client *s3.Client, cfg AnchorerConfig) *Anchorer {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "ledger-anchors/"
	}
	return &Anchorer{
		client:    client,
		bucket:    cfg.Bucket,
		keyPrefix: prefix,
	}
}

type anchorDocument struct {
	Date       string `json:"date"`
	RootHash   string `json:"rootHash"`
	LogCount   int    `json:"logCount"`
	FirstLogID int64  `json:"firstLogId"`
	LastLogID  int64  `json:"lastLogId"`
	AnchoredAt string `json:"anchoredAt"`
}

// PutDailyAnchor writes one day's root hash to the anchor bucket and returns
// the object key. Objects are written under GOVERNANCE-mode Object Lock with
// a one-year retention.
func (a *Anchorer) PutDailyAnchor(ctx context.Context, date time.Time, rootHash string, logCount int, firstLogID, lastLogID int64) (string, error) {
	key := fmt.Sprintf("%s%s.hash", a.keyPrefix, date.Format("2006-01-02"))

	doc := anchorDocument{
		Date:       date.Format("2006-01-02"),
		RootHash:   rootHash,
		LogCount:   logCount,
		FirstLogID: firstLogID,
		LastLogID:  lastLogID,
		AnchoredAt: time.Now().UTC().Format(time.RFC3339),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}

	_, err = a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:                    aws.String(a.bucket),
		Key:                       aws.String(key),
		Body:                      bytes.NewReader(body),
		ContentType:               aws.String("application/json"),
		ObjectLockMode:            types.ObjectLockModeGovernance,
		ObjectLockRetainUntilDate: aws.Time(time.Now().AddDate(1, 0, 0)),
	})
	if err != nil {
		return "", fmt.Errorf("write anchor to S3: %w", err)
	}

	return key, nil
}

// GetDailyAnchor fetches and decodes a day's anchor document.
func (a *Anchorer) GetDailyAnchor(ctx context.Context, date time.Time) (string, error) {
	key := fmt.Sprintf("%s%s.hash", a.keyPrefix, date.Format("2006-01-02"))

	out, err := a.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return "", fmt.Errorf("read anchor from S3: %w", err)
	}
	defer out.Body.Close()

	var doc anchorDocument
	if err := json.NewDecoder(out.Body).Decode(&doc); err != nil {
		return "", fmt.Errorf("decode anchor document: %w", err)
	}
	return doc.RootHash, nil
}
