package media

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// Storage persists posture assessment media in an S3-compatible bucket.
// Objects are private; clients receive short-lived presigned URLs.
type Storage struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
}

func NewStorage(client *s3.Client, bucket string) *Storage {
	return &Storage{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    bucket,
	}
}

// StoredObject describes an uploaded media object.
type StoredObject struct {
	Key          string
	ThumbnailKey string // empty for video uploads
	ContentType  string
	Size         int64
}

// PutPostureMedia uploads a validated posture media file and, for images,
// its thumbnail. The key embeds user and slot so re-uploads to the same
// slot overwrite the previous object.
func (s *Storage) PutPostureMedia(ctx context.Context, userID int64, slot string, data []byte, contentType string, thumbnail []byte) (*StoredObject, error) {
	key := fmt.Sprintf("posture/%d/%s/%s", userID, slot, uuid.NewString())

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, fmt.Errorf("upload media: %w", err)
	}

	obj := &StoredObject{
		Key:         key,
		ContentType: contentType,
		Size:        int64(len(data)),
	}

	if len(thumbnail) > 0 {
		thumbKey := key + "_thumb.jpg"
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(thumbKey),
			Body:        bytes.NewReader(thumbnail),
			ContentType: aws.String("image/jpeg"),
		})
		if err != nil {
			return nil, fmt.Errorf("upload thumbnail: %w", err)
		}
		obj.ThumbnailKey = thumbKey
	}

	return obj, nil
}

// PresignGet returns a time-limited download URL for a stored object.
func (s *Storage) PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	req, err := s.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", fmt.Errorf("presign media URL: %w", err)
	}
	return req.URL, nil
}

// Delete removes a stored object. Missing keys are not an error.
func (s *Storage) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	return nil
}
