package sentiment

import (
	"context"
	"testing"

	"github.com/jonreiter/govader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

func TestVaderAnalyzer_Positive(t *testing.T) {
	result, err := NewVaderAnalyzer().Analyze(context.Background(), "Great service, very fast.")
	require.NoError(t, err)

	assert.Equal(t, models.SentimentPositive, result.Sentiment)
	assert.Greater(t, result.Scores.Positive, result.Scores.Negative)
	assert.NotNil(t, result.KeyPhrases)
	assert.NotNil(t, result.Entities)
	assert.Empty(t, result.KeyPhrases)
	assert.Empty(t, result.Entities)
}

func TestVaderAnalyzer_Negative(t *testing.T) {
	result, err := NewVaderAnalyzer().Analyze(context.Background(), "The agent was rude and the wait was terrible.")
	require.NoError(t, err)

	assert.Equal(t, models.SentimentNegative, result.Sentiment)
	assert.Greater(t, result.Scores.Negative, result.Scores.Positive)
}

func TestVaderAnalyzer_EmptyText(t *testing.T) {
	result, err := NewVaderAnalyzer().Analyze(context.Background(), "   \n ")
	require.NoError(t, err)

	assert.Equal(t, models.SentimentNeutral, result.Sentiment)
	assert.Equal(t, models.SentimentScores{Neutral: 1}, result.Scores)
}

func TestVaderAnalyzer_ScoresInRange(t *testing.T) {
	result, err := NewVaderAnalyzer().Analyze(context.Background(), "I love the product but the billing is a horrible mess.")
	require.NoError(t, err)

	for _, s := range []float64{result.Scores.Positive, result.Scores.Negative, result.Scores.Neutral, result.Scores.Mixed} {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestVaderAnalyzer_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewVaderAnalyzer().Analyze(ctx, "hello")

	var analysisErr *common.AnalysisServiceError
	require.ErrorAs(t, err, &analysisErr)
	assert.Equal(t, OpDetectSentiment, analysisErr.Operation)
}

func TestLabelFor(t *testing.T) {
	assert.Equal(t, models.SentimentPositive, labelFor(govader.Sentiment{Positive: 0.6, Neutral: 0.4, Compound: 0.7}))
	assert.Equal(t, models.SentimentNegative, labelFor(govader.Sentiment{Negative: 0.5, Neutral: 0.5, Compound: -0.6}))
	assert.Equal(t, models.SentimentNeutral, labelFor(govader.Sentiment{Neutral: 1, Compound: 0.05}))
	assert.Equal(t, models.SentimentMixed, labelFor(govader.Sentiment{Positive: 0.3, Negative: 0.3, Neutral: 0.4, Compound: 0.1}))
}
