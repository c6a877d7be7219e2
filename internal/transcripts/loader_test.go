package transcripts

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

type fakeS3 struct {
	objects map[string][]byte
	err     error
	calls   int
}

func (f *fakeS3) GetObject(_ context.Context, params *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.objects[aws.ToString(params.Bucket)+"/"+aws.ToString(params.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("The specified key does not exist.")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func newTestLoader(t *testing.T, client ObjectGetter) *Loader {
	t.Helper()
	loader, err := NewLoader(client)
	require.NoError(t, err)
	return loader
}

func TestLoader_Load(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"recordings/calls/2020/01/01/abc.json": []byte(`{"jobName":"abc","results":{"transcripts":[{"transcript":"Great service, very fast."}],"items":[]},"status":"COMPLETED"}`),
	}}
	loader := newTestLoader(t, client)

	tr, err := loader.Load(context.Background(), models.ObjectLocator{Bucket: "recordings", Key: "calls/2020/01/01/abc.json"})
	require.NoError(t, err)

	assert.Equal(t, "Great service, very fast.", tr.FullText)
	assert.Equal(t, tr.FullText, tr.AnalyzedText)
	assert.Equal(t, 1, client.calls)
}

func TestLoader_Load_OnlyFirstTranscript(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"b/k": []byte(`{"results":{"transcripts":[{"transcript":"first"},{"transcript":"second"}]}}`),
	}}

	tr, err := newTestLoader(t, client).Load(context.Background(), models.ObjectLocator{Bucket: "b", Key: "k"})
	require.NoError(t, err)
	assert.Equal(t, "first", tr.FullText)
}

func TestLoader_Load_TruncatesForAnalysis(t *testing.T) {
	long := strings.Repeat("word ", 2000)
	client := &fakeS3{objects: map[string][]byte{
		"b/k": []byte(`{"results":{"transcripts":[{"transcript":"` + long + `"}]}}`),
	}}

	tr, err := newTestLoader(t, client).Load(context.Background(), models.ObjectLocator{Bucket: "b", Key: "k"})
	require.NoError(t, err)

	assert.Equal(t, long, tr.FullText)
	assert.Len(t, tr.AnalyzedText, models.MAX_ANALYZED_CHARS)
	assert.True(t, strings.HasPrefix(tr.FullText, tr.AnalyzedText))
}

func TestLoader_Load_EmptyTranscript(t *testing.T) {
	client := &fakeS3{objects: map[string][]byte{
		"b/k": []byte(`{"results":{"transcripts":[{"transcript":""}]}}`),
	}}

	tr, err := newTestLoader(t, client).Load(context.Background(), models.ObjectLocator{Bucket: "b", Key: "k"})
	require.NoError(t, err)
	assert.Empty(t, tr.FullText)
	assert.Empty(t, tr.AnalyzedText)
}

func TestLoader_Load_NotFound(t *testing.T) {
	loader := newTestLoader(t, &fakeS3{})

	_, err := loader.Load(context.Background(), models.ObjectLocator{Bucket: "b", Key: "missing.json"})

	var notFound *common.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "b", notFound.Bucket)
	assert.Equal(t, "missing.json", notFound.Key)
}

func TestLoader_Load_NotFoundAPICode(t *testing.T) {
	loader := newTestLoader(t, &fakeS3{err: &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}})

	_, err := loader.Load(context.Background(), models.ObjectLocator{Bucket: "b", Key: "k"})

	var notFound *common.NotFoundError
	assert.ErrorAs(t, err, &notFound)
}

func TestLoader_Load_OtherS3Error(t *testing.T) {
	loader := newTestLoader(t, &fakeS3{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"}})

	_, err := loader.Load(context.Background(), models.ObjectLocator{Bucket: "b", Key: "k"})
	require.Error(t, err)

	var notFound *common.NotFoundError
	var malformed *common.MalformedInputError
	assert.False(t, errors.As(err, &notFound))
	assert.False(t, errors.As(err, &malformed))
	assert.Contains(t, err.Error(), "AccessDenied")
}

func TestLoader_Extract_Malformed(t *testing.T) {
	loader := newTestLoader(t, &fakeS3{})

	cases := map[string]string{
		"not json":            `{"results":`,
		"no results":          `{"status":"COMPLETED"}`,
		"no transcripts":      `{"results":{}}`,
		"empty transcripts":   `{"results":{"transcripts":[]}}`,
		"transcript missing":  `{"results":{"transcripts":[{"text":"x"}]}}`,
		"transcript not text": `{"results":{"transcripts":[{"transcript":42}]}}`,
		"array payload":       `[]`,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := loader.Extract("calls/x.json", []byte(payload))

			var malformed *common.MalformedInputError
			require.ErrorAs(t, err, &malformed)
			assert.Equal(t, "calls/x.json", malformed.Key)
		})
	}
}
