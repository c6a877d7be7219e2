package sentiment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/comprehend"
	"github.com/aws/aws-sdk-go-v2/service/comprehend/types"
	"github.com/aws/smithy-go"
	"github.com/cenkalti/backoff/v4"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

type ComprehendAPI interface {
	DetectSentiment(ctx context.Context, params *comprehend.DetectSentimentInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectSentimentOutput, error)
	DetectKeyPhrases(ctx context.Context, params *comprehend.DetectKeyPhrasesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectKeyPhrasesOutput, error)
	DetectEntities(ctx context.Context, params *comprehend.DetectEntitiesInput, optFns ...func(*comprehend.Options)) (*comprehend.DetectEntitiesOutput, error)
}

type ComprehendAnalyzer struct {
	client          ComprehendAPI
	languageCode    types.LanguageCode
	maxRetryElapsed time.Duration
	limiter         *rate.Limiter
	newBackOff      func() backoff.BackOff
}

type ComprehendOption func(*ComprehendAnalyzer)

// WithMaxRetryElapsed bounds how long transient failures are retried. Zero
// disables retries.
func WithMaxRetryElapsed(d time.Duration) ComprehendOption {
	return func(a *ComprehendAnalyzer) {
		a.maxRetryElapsed = d
	}
}

// WithRateLimit caps the calls per second issued by this analyzer across all
// activations sharing it. rps <= 0 means unlimited.
func WithRateLimit(rps float64) ComprehendOption {
	return func(a *ComprehendAnalyzer) {
		if rps <= 0 {
			a.limiter = nil
			return
		}
		burst := int(rps)
		if burst < 3 {
			burst = 3
		}
		a.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithBackOff(fn func() backoff.BackOff) ComprehendOption {
	return func(a *ComprehendAnalyzer) {
		a.newBackOff = fn
	}
}

func NewComprehendAnalyzer(client ComprehendAPI, languageCode string, opts ...ComprehendOption) *ComprehendAnalyzer {
	a := &ComprehendAnalyzer{
		client:       client,
		languageCode: types.LanguageCode(languageCode),
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.newBackOff == nil {
		a.newBackOff = a.defaultBackOff
	}
	return a
}

func (a *ComprehendAnalyzer) defaultBackOff() backoff.BackOff {
	if a.maxRetryElapsed <= 0 {
		return &backoff.StopBackOff{}
	}
	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = a.maxRetryElapsed
	return b
}

// Analyze issues the three detections concurrently. The first failure
// cancels the others.
func (a *ComprehendAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	var (
		sentiment  string
		scores     models.SentimentScores
		keyPhrases []models.KeyPhrase
		entities   []models.Entity
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.call(gctx, OpDetectSentiment, func(ctx context.Context) error {
			out, err := a.client.DetectSentiment(ctx, &comprehend.DetectSentimentInput{
				LanguageCode: a.languageCode,
				Text:         aws.String(text),
			})
			if err != nil {
				return err
			}
			sentiment = string(out.Sentiment)
			scores = toScores(out.SentimentScore)
			return nil
		})
	})

	g.Go(func() error {
		return a.call(gctx, OpDetectKeyPhrases, func(ctx context.Context) error {
			out, err := a.client.DetectKeyPhrases(ctx, &comprehend.DetectKeyPhrasesInput{
				LanguageCode: a.languageCode,
				Text:         aws.String(text),
			})
			if err != nil {
				return err
			}
			keyPhrases = toKeyPhrases(out.KeyPhrases)
			return nil
		})
	})

	g.Go(func() error {
		return a.call(gctx, OpDetectEntities, func(ctx context.Context) error {
			out, err := a.client.DetectEntities(ctx, &comprehend.DetectEntitiesInput{
				LanguageCode: a.languageCode,
				Text:         aws.String(text),
			})
			if err != nil {
				return err
			}
			entities = toEntities(out.Entities)
			return nil
		})
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("[ComprehendAnalyzer] Analysis complete",
		slog.String("sentiment", sentiment),
		slog.Int("key_phrases", len(keyPhrases)),
		slog.Int("entities", len(entities)))

	return &models.AnalysisResult{
		Sentiment:  sentiment,
		Scores:     scores,
		KeyPhrases: keyPhrases,
		Entities:   entities,
	}, nil
}

func (a *ComprehendAnalyzer) call(ctx context.Context, op string, fn func(context.Context) error) error {
	start := time.Now()
	attempt := 0

	operation := func() error {
		attempt++
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return backoff.Permanent(err)
			}
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	notify := func(err error, wait time.Duration) {
		slog.Warn("[ComprehendAnalyzer] Request failed, will retry",
			slog.String("operation", op),
			slog.Int("attempt", attempt),
			slog.Duration("wait", wait),
			slog.String("error", err.Error()))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(a.newBackOff(), ctx), notify); err != nil {
		slog.Error("[ComprehendAnalyzer] Request failed",
			slog.String("operation", op),
			slog.Int("attempts", attempt),
			slog.Duration("elapsed", time.Since(start)),
			slog.String("error", err.Error()))
		return &common.AnalysisServiceError{Operation: op, Err: err}
	}

	slog.Debug("[ComprehendAnalyzer] Request successful",
		slog.String("operation", op),
		slog.Duration("elapsed", time.Since(start)))
	return nil
}

// isRetryable reports whether err is worth another attempt: throttling,
// server faults and transport errors are; client errors and cancellation are not.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var (
		tooMany     *types.TooManyRequestsException
		internal    *types.InternalServerException
		invalid     *types.InvalidRequestException
		tooLarge    *types.TextSizeLimitExceededException
		unsupported *types.UnsupportedLanguageException
	)
	switch {
	case errors.As(err, &tooMany), errors.As(err, &internal):
		return true
	case errors.As(err, &invalid), errors.As(err, &tooLarge), errors.As(err, &unsupported):
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "ThrottlingException", "Throttling", "RequestLimitExceeded", "ServiceUnavailable":
			return true
		}
		return apiErr.ErrorFault() == smithy.FaultServer
	}

	return true
}

func toScores(s *types.SentimentScore) models.SentimentScores {
	if s == nil {
		return models.SentimentScores{}
	}
	return models.SentimentScores{
		Positive: float64(aws.ToFloat32(s.Positive)),
		Negative: float64(aws.ToFloat32(s.Negative)),
		Neutral:  float64(aws.ToFloat32(s.Neutral)),
		Mixed:    float64(aws.ToFloat32(s.Mixed)),
	}
}

func toKeyPhrases(in []types.KeyPhrase) []models.KeyPhrase {
	out := make([]models.KeyPhrase, 0, len(in))
	for _, kp := range in {
		out = append(out, models.KeyPhrase{
			Text:        aws.ToString(kp.Text),
			Score:       float64(aws.ToFloat32(kp.Score)),
			BeginOffset: aws.ToInt32(kp.BeginOffset),
			EndOffset:   aws.ToInt32(kp.EndOffset),
		})
	}
	return out
}

func toEntities(in []types.Entity) []models.Entity {
	out := make([]models.Entity, 0, len(in))
	for _, e := range in {
		out = append(out, models.Entity{
			Text:        aws.ToString(e.Text),
			Type:        string(e.Type),
			Score:       float64(aws.ToFloat32(e.Score)),
			BeginOffset: aws.ToInt32(e.BeginOffset),
			EndOffset:   aws.ToInt32(e.EndOffset),
		})
	}
	return out
}
