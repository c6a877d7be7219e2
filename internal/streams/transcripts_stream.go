package streams

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/spacesedan/transcriptflow/internal/models"
)

const OBJECT_CREATED_PREFIX = "ObjectCreated:"

type RecordProcessor interface {
	ProcessRecord(ctx context.Context, loc models.ObjectLocator) (*models.EnrichedRecord, error)
}

// LocatorFromS3Record returns the bucket and decoded object key of an S3
// notification record. Keys arrive form-encoded, so "a+b%2Fc" is "a b/c".
func LocatorFromS3Record(record events.S3EventRecord) (models.ObjectLocator, error) {
	key := record.S3.Object.URLDecodedKey
	if key == "" {
		decoded, err := url.QueryUnescape(record.S3.Object.Key)
		if err != nil {
			return models.ObjectLocator{}, fmt.Errorf("decode object key %q: %w", record.S3.Object.Key, err)
		}
		key = decoded
	}

	if record.S3.Bucket.Name == "" || key == "" {
		return models.ObjectLocator{}, fmt.Errorf("s3 record is missing bucket or key")
	}

	return models.ObjectLocator{Bucket: record.S3.Bucket.Name, Key: key}, nil
}

// ProcessS3Event runs one activation per ObjectCreated record, in order.
// The first failure fails the whole event so the runtime re-drives it;
// replays overwrite records already written.
func ProcessS3Event(ctx context.Context, processor RecordProcessor, event events.S3Event) error {
	slog.Info("[S3Stream] Received S3 event", slog.Int("record_count", len(event.Records)))

	for _, record := range event.Records {
		if record.EventName != "" && !strings.HasPrefix(record.EventName, OBJECT_CREATED_PREFIX) {
			slog.Debug("[S3Stream] Skipping non-create event",
				slog.String("event_name", record.EventName),
				slog.String("object_key", record.S3.Object.Key))
			continue
		}

		loc, err := LocatorFromS3Record(record)
		if err != nil {
			slog.Error("[S3Stream] Invalid S3 record",
				slog.String("object_key", record.S3.Object.Key),
				slog.String("error", err.Error()))
			return err
		}

		if _, err := processor.ProcessRecord(ctx, loc); err != nil {
			return fmt.Errorf("process s3://%s/%s: %w", loc.Bucket, loc.Key, err)
		}
	}

	slog.Info("[S3Stream] Successfully processed all records in the event")
	return nil
}
