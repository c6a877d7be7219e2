package sentiment

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

// fakeComprehend returns scripted errors per operation before succeeding.
type fakeComprehend struct {
	mu     sync.Mutex
	errs   map[string][]error
	calls  map[string]int
	texts  []string
	langs  []types.LanguageCode
	always map[string]error
}

func newFakeComprehend() *fakeComprehend {
	return &fakeComprehend{
		errs:   map[string][]error{},
		calls:  map[string]int{},
		always: map[string]error{},
	}
}

func (f *fakeComprehend) next(op string, text string, lang types.LanguageCode) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[op]++
	f.texts = append(f.texts, text)
	f.langs = append(f.langs, lang)
	if err := f.always[op]; err != nil {
		return err
	}
	if queued := f.errs[op]; len(queued) > 0 {
		f.errs[op] = queued[1:]
		return queued[0]
	}
	return nil
}

func (f *fakeComprehend) callCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[op]
}

func (f *fakeComprehend) DetectSentiment(_ context.Context, in *comprehend.DetectSentimentInput, _ ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error) {
	if err := f.next(OpDetectSentiment, aws.ToString(in.Text), in.LanguageCode); err != nil {
		return nil, err
	}
	return &comprehend.DetectSentimentOutput{
		Sentiment: types.SentimentTypePositive,
		SentimentScore: &types.SentimentScore{
			Positive: aws.Float32(0.75),
			Negative: aws.Float32(0.125),
			Neutral:  aws.Float32(0.0625),
			Mixed:    aws.Float32(0.0625),
		},
	}, nil
}

func (f *fakeComprehend) DetectKeyPhrases(_ context.Context, in *comprehend.DetectKeyPhrasesInput, _ ...func(*comprehend.Options)) (*comprehend.DetectKeyPhrasesOutput, error) {
	if err := f.next(OpDetectKeyPhrases, aws.ToString(in.Text), in.LanguageCode); err != nil {
		return nil, err
	}
	return &comprehend.DetectKeyPhrasesOutput{
		KeyPhrases: []types.KeyPhrase{
			{Text: aws.String("Great service"), Score: aws.Float32(0.5), BeginOffset: aws.Int32(0), EndOffset: aws.Int32(13)},
		},
	}, nil
}

func (f *fakeComprehend) DetectEntities(_ context.Context, in *comprehend.DetectEntitiesInput, _ ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error) {
	if err := f.next(OpDetectEntities, aws.ToString(in.Text), in.LanguageCode); err != nil {
		return nil, err
	}
	return &comprehend.DetectEntitiesOutput{
		Entities: []types.Entity{
			{Text: aws.String("Acme"), Type: types.EntityTypeOrganization, Score: aws.Float32(0.25), BeginOffset: aws.Int32(4), EndOffset: aws.Int32(8)},
		},
	}, nil
}

func fastRetries(n uint64) ComprehendOption {
	return WithBackOff(func() backoff.BackOff {
		return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, n)
	})
}

func TestComprehendAnalyzer_Analyze(t *testing.T) {
	client := newFakeComprehend()
	analyzer := NewComprehendAnalyzer(client, "en")

	result, err := analyzer.Analyze(context.Background(), "Great service, very fast.")
	require.NoError(t, err)

	assert.Equal(t, models.SentimentPositive, result.Sentiment)
	assert.Equal(t, models.SentimentScores{Positive: 0.75, Negative: 0.125, Neutral: 0.0625, Mixed: 0.0625}, result.Scores)
	assert.Equal(t, []models.KeyPhrase{{Text: "Great service", Score: 0.5, BeginOffset: 0, EndOffset: 13}}, result.KeyPhrases)
	assert.Equal(t, []models.Entity{{Text: "Acme", Type: "ORGANIZATION", Score: 0.25, BeginOffset: 4, EndOffset: 8}}, result.Entities)

	for _, op := range []string{OpDetectSentiment, OpDetectKeyPhrases, OpDetectEntities} {
		assert.Equal(t, 1, client.callCount(op), op)
	}
	for i := range client.texts {
		assert.Equal(t, "Great service, very fast.", client.texts[i])
		assert.Equal(t, types.LanguageCodeEn, client.langs[i])
	}
}

func TestComprehendAnalyzer_PermanentFailureNotRetried(t *testing.T) {
	client := newFakeComprehend()
	client.always[OpDetectEntities] = &types.InvalidRequestException{Message: aws.String("text is empty")}
	analyzer := NewComprehendAnalyzer(client, "en", fastRetries(5))

	result, err := analyzer.Analyze(context.Background(), "")

	assert.Nil(t, result)
	var analysisErr *common.AnalysisServiceError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, OpDetectEntities, analysisErr.Operation)
	assert.Equal(t, 1, client.callCount(OpDetectEntities))

	var invalid *types.InvalidRequestException
	assert.ErrorAs(t, err, &invalid)
}

func TestComprehendAnalyzer_TransientFailureRetried(t *testing.T) {
	client := newFakeComprehend()
	client.errs[OpDetectSentiment] = []error{
		&types.TooManyRequestsException{Message: aws.String("slow down")},
		&types.InternalServerException{Message: aws.String("oops")},
	}
	analyzer := NewComprehendAnalyzer(client, "en", fastRetries(5))

	result, err := analyzer.Analyze(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, models.SentimentPositive, result.Sentiment)
	assert.Equal(t, 3, client.callCount(OpDetectSentiment))
}

func TestComprehendAnalyzer_RetriesExhausted(t *testing.T) {
	client := newFakeComprehend()
	client.always[OpDetectKeyPhrases] = &smithy.GenericAPIError{Code: "ThrottlingException", Message: "Rate exceeded"}
	analyzer := NewComprehendAnalyzer(client, "en", fastRetries(2))

	_, err := analyzer.Analyze(context.Background(), "hello")

	var analysisErr *common.AnalysisServiceError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, OpDetectKeyPhrases, analysisErr.Operation)
	assert.Equal(t, 3, client.callCount(OpDetectKeyPhrases))
}

func TestComprehendAnalyzer_ZeroRetryElapsedMeansSingleAttempt(t *testing.T) {
	client := newFakeComprehend()
	client.always[OpDetectSentiment] = &types.TooManyRequestsException{Message: aws.String("slow down")}
	analyzer := NewComprehendAnalyzer(client, "en", WithMaxRetryElapsed(0))

	_, err := analyzer.Analyze(context.Background(), "hello")

	var analysisErr *common.AnalysisServiceError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, 1, client.callCount(OpDetectSentiment))
}

func TestComprehendAnalyzer_CancelledContext(t *testing.T) {
	client := newFakeComprehend()
	analyzer := NewComprehendAnalyzer(client, "en", WithRateLimit(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := analyzer.Analyze(ctx, "hello")

	var analysisErr *common.AnalysisServiceError
	require.ErrorAs(t, err, &analysisErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&types.TooManyRequestsException{}))
	assert.True(t, isRetryable(&types.InternalServerException{}))
	assert.True(t, isRetryable(&smithy.GenericAPIError{Code: "ServiceUnavailable"}))
	assert.True(t, isRetryable(&smithy.GenericAPIError{Code: "Whatever", Fault: smithy.FaultServer}))
	assert.True(t, isRetryable(errors.New("connection reset by peer")))

	assert.False(t, isRetryable(&types.InvalidRequestException{}))
	assert.False(t, isRetryable(&types.TextSizeLimitExceededException{}))
	assert.False(t, isRetryable(&types.UnsupportedLanguageException{}))
	assert.False(t, isRetryable(&smithy.GenericAPIError{Code: "AccessDeniedException", Fault: smithy.FaultClient}))
	assert.False(t, isRetryable(context.DeadlineExceeded))
}

func TestWithRateLimit(t *testing.T) {
	a := NewComprehendAnalyzer(newFakeComprehend(), "en", WithRateLimit(0))
	assert.Nil(t, a.limiter)

	a = NewComprehendAnalyzer(newFakeComprehend(), "en", WithRateLimit(10))
	require.NotNil(t, a.limiter)
	assert.Equal(t, 10, a.limiter.Burst())
}
