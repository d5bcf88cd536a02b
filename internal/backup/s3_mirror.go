package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"time"

	"go-recruitment-datalayer/pkg/logger"

	"github.com/avast/retry-go/v4"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the slice of the S3 API the mirror uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Mirror copies both documents of a run to an S3-compatible bucket
// after the primary store has written them.
type S3Mirror struct {
	Client   ObjectPutter
	Bucket   string
	Prefix   string
	Attempts uint
	Delay    time.Duration
	Log      *logger.Logger
}

// Mirror uploads the artifact under <prefix>/<run name>/ and returns the key
// prefix used.
func (m *S3Mirror) Mirror(ctx context.Context, location string, a *Artifact) (string, error) {
	base := path.Join(m.Prefix, filepath.Base(location))
	docs := []struct {
		name string
		v    any
	}{
		{DataFile, a.Data},
		{MetadataFile, a.Metadata},
	}
	for _, doc := range docs {
		raw, err := json.Marshal(doc.v)
		if err != nil {
			return "", fmt.Errorf("backup: encode %s: %w", doc.name, err)
		}
		if err := m.put(ctx, path.Join(base, doc.name), raw); err != nil {
			return "", err
		}
	}
	return base, nil
}

func (m *S3Mirror) put(ctx context.Context, key string, body []byte) error {
	attempts := m.Attempts
	if attempts == 0 {
		attempts = 3
	}
	delay := m.Delay
	if delay == 0 {
		delay = time.Second
	}
	log := m.Log
	if log == nil {
		log = logger.Nop()
	}

	return retry.Do(func() error {
		_, err := m.Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(m.Bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(body),
			ContentType: aws.String("application/json"),
		})
		return err
	},
		retry.Context(ctx),
		retry.Attempts(attempts),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warn("backup upload failed, retrying", "key", key, "attempt", n+1, "error", err)
		}),
	)
}
