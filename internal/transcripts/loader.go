package transcripts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

const artifactSchemaURL = "transcription-artifact.json"

// Only results.transcripts[0].transcript is read; everything else a
// speech-to-text job writes (items, speaker labels, status) is ignored.
const artifactSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["results"],
	"properties": {
		"results": {
			"type": "object",
			"required": ["transcripts"],
			"properties": {
				"transcripts": {
					"type": "array",
					"minItems": 1,
					"items": [{
						"type": "object",
						"required": ["transcript"],
						"properties": {
							"transcript": {"type": "string"}
						}
					}]
				}
			}
		}
	}
}`

type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

type Loader struct {
	client ObjectGetter
	schema *jsonschema.Schema
}

func NewLoader(client ObjectGetter) (*Loader, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(artifactSchemaURL, strings.NewReader(artifactSchema)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile(artifactSchemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}

	return &Loader{client: client, schema: schema}, nil
}

// Load fetches the artifact at loc and returns its primary transcript.
func (l *Loader) Load(ctx context.Context, loc models.ObjectLocator) (models.Transcript, error) {
	slog.Debug("[TranscriptLoader] Fetching transcript",
		slog.String("bucket", loc.Bucket),
		slog.String("object_key", loc.Key))

	out, err := l.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(loc.Bucket),
		Key:    aws.String(loc.Key),
	})
	if err != nil {
		if isNotFound(err) {
			return models.Transcript{}, &common.NotFoundError{Bucket: loc.Bucket, Key: loc.Key, Err: err}
		}
		return models.Transcript{}, fmt.Errorf("get s3://%s/%s: %w", loc.Bucket, loc.Key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return models.Transcript{}, fmt.Errorf("read s3://%s/%s: %w", loc.Bucket, loc.Key, err)
	}

	text, err := l.Extract(loc.Key, raw)
	if err != nil {
		return models.Transcript{}, err
	}

	transcript := models.NewTranscript(text)
	slog.Info("[TranscriptLoader] Loaded transcript",
		slog.String("object_key", loc.Key),
		slog.Int("chars", models.CharCount(transcript.FullText)),
		slog.Bool("truncated", len(transcript.AnalyzedText) < len(transcript.FullText)))

	return transcript, nil
}

// Extract pulls results.transcripts[0].transcript out of a raw artifact.
func (l *Loader) Extract(key string, raw []byte) (string, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return "", &common.MalformedInputError{Key: key, Reason: "payload is not valid JSON", Err: err}
	}

	if err := l.schema.Validate(doc); err != nil {
		return "", &common.MalformedInputError{Key: key, Reason: "missing results.transcripts[0].transcript", Err: err}
	}

	var artifact models.TranscriptionArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		return "", &common.MalformedInputError{Key: key, Reason: "unexpected artifact layout", Err: err}
	}

	return artifact.Results.Transcripts[0].Transcript, nil
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var noSuchBucket *types.NoSuchBucket
	if errors.As(err, &noSuchKey) || errors.As(err, &noSuchBucket) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NoSuchBucket", "NotFound":
			return true
		}
	}
	return false
}
