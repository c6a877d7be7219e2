package sentiment

import (
	"context"
	"log/slog"
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

const (
	VADER_POLARITY_THRESHOLD = 0.20
	VADER_MIXED_THRESHOLD    = 0.25
)

// VaderAnalyzer scores sentiment locally, with no calls to the analysis
// service. It does not extract key phrases or entities.
type VaderAnalyzer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderAnalyzer() *VaderAnalyzer {
	return &VaderAnalyzer{analyzer: govader.NewSentimentIntensityAnalyzer()}
}

func (v *VaderAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, &common.AnalysisServiceError{Operation: OpDetectSentiment, Err: err}
	}

	result := &models.AnalysisResult{
		KeyPhrases: []models.KeyPhrase{},
		Entities:   []models.Entity{},
	}

	plainText := strings.Join(strings.Fields(text), " ")
	if plainText == "" {
		result.Sentiment = models.SentimentNeutral
		result.Scores = models.SentimentScores{Neutral: 1}
		return result, nil
	}

	scores := v.analyzer.PolarityScores(plainText)
	result.Sentiment = labelFor(scores)
	result.Scores = models.SentimentScores{
		Positive: scores.Positive,
		Negative: scores.Negative,
		Neutral:  scores.Neutral,
		Mixed:    math.Min(scores.Positive, scores.Negative),
	}

	slog.Debug("[VaderAnalyzer] Scored transcript",
		slog.String("sentiment", result.Sentiment),
		slog.Float64("compound", scores.Compound))

	return result, nil
}

func labelFor(s govader.Sentiment) string {
	switch {
	case s.Positive >= VADER_MIXED_THRESHOLD && s.Negative >= VADER_MIXED_THRESHOLD:
		return models.SentimentMixed
	case s.Compound >= VADER_POLARITY_THRESHOLD:
		return models.SentimentPositive
	case s.Compound <= -VADER_POLARITY_THRESHOLD:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}
