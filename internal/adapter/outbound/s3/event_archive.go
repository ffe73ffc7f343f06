package s3

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/uniedit/fintoc-gateway/internal/model"
	"github.com/uniedit/fintoc-gateway/internal/port/outbound"
)

// objectPutter is the subset of *s3.Client used by the archive.
type objectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// EventArchiveAdapter implements EventArchivePort by writing raw payloads to a bucket.
type EventArchiveAdapter struct {
	client objectPutter
	bucket string
	prefix string
}

// NewEventArchiveAdapter creates a new webhook event archive.
func NewEventArchiveAdapter(client objectPutter, bucket, prefix string) *EventArchiveAdapter {
	return &EventArchiveAdapter{client: client, bucket: bucket, prefix: prefix}
}

// Archive stores the payload under {prefix}yyyy/mm/dd/{event_id}.json.
func (a *EventArchiveAdapter) Archive(ctx context.Context, event *model.FintocEvent) error {
	key := a.objectKey(event)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        strings.NewReader(event.Payload),
		ContentType: aws.String("application/json"),
		Metadata: map[string]string{
			"event-type": event.EventType,
			"provider":   event.Provider,
		},
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

func (a *EventArchiveAdapter) objectKey(event *model.FintocEvent) string {
	day := event.CreatedAt.UTC().Format("2006/01/02")
	return a.prefix + path.Join(day, event.EventID+".json")
}

// Compile-time check
var _ outbound.EventArchivePort = (*EventArchiveAdapter)(nil)
