package processing

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
	"github.com/spacesedan/transcriptflow/internal/sentiment"
)

type TranscriptLoader interface {
	Load(ctx context.Context, loc models.ObjectLocator) (models.Transcript, error)
}

type RecordStore interface {
	PutRecord(ctx context.Context, record models.EnrichedRecord) error
}

type SearchIndex interface {
	IndexRecord(ctx context.Context, record models.EnrichedRecord) error
}

type Processor struct {
	loader   TranscriptLoader
	analyzer sentiment.Analyzer
	store    RecordStore
	index    SearchIndex
	timeout  time.Duration
	now      func() time.Time
}

type ProcessorOption func(*Processor)

// WithActivationTimeout bounds one activation end to end. Zero leaves the
// caller's deadline in place.
func WithActivationTimeout(d time.Duration) ProcessorOption {
	return func(p *Processor) {
		p.timeout = d
	}
}

func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.now = now
	}
}

func NewProcessor(loader TranscriptLoader, analyzer sentiment.Analyzer, store RecordStore, index SearchIndex, opts ...ProcessorOption) *Processor {
	p := &Processor{
		loader:   loader,
		analyzer: analyzer,
		store:    store,
		index:    index,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ProcessRecord runs one activation: load, analyze, compose, then write to
// both sinks. A load or analysis failure stops before any sink is touched.
// Once composed, both writes are attempted and their failures are joined.
func (p *Processor) ProcessRecord(ctx context.Context, loc models.ObjectLocator) (*models.EnrichedRecord, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	logger := slog.With(
		slog.String("invocation_id", uuid.NewString()),
		slog.String("object_key", loc.Key))
	start := p.now()

	transcript, err := p.loader.Load(ctx, loc)
	if err != nil {
		logger.Error("[Processor] Failed to load transcript",
			slog.String("stage", common.StageLoad),
			slog.String("error", err.Error()))
		return nil, err
	}

	analysis, err := p.analyzer.Analyze(ctx, transcript.AnalyzedText)
	if err != nil {
		logger.Error("[Processor] Failed to analyze transcript",
			slog.String("stage", common.StageAnalyze),
			slog.String("error", err.Error()))
		return nil, err
	}

	record := ComposeRecord(loc.Key, transcript, analysis, p.now())
	logger.Debug("[Processor] Composed record",
		slog.String("stage", common.StageCompose),
		slog.String("sentiment", record.Sentiment),
		slog.Int("key_phrases", len(record.KeyPhrases)),
		slog.Int("entities", len(record.Entities)))

	if err := p.writeSinks(ctx, logger, record); err != nil {
		return &record, err
	}

	logger.Info("[Processor] Successfully processed transcript",
		slog.String("sentiment", record.Sentiment),
		slog.Duration("duration", p.now().Sub(start)))
	return &record, nil
}

// writeSinks writes to the table and the index concurrently. Neither write
// cancels the other.
func (p *Processor) writeSinks(ctx context.Context, logger *slog.Logger, record models.EnrichedRecord) error {
	var (
		wg       sync.WaitGroup
		storeErr error
		indexErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		storeErr = p.store.PutRecord(ctx, record)
	}()
	go func() {
		defer wg.Done()
		indexErr = p.index.IndexRecord(ctx, record)
	}()
	wg.Wait()

	if storeErr != nil {
		logger.Error("[Processor] Failed to store record",
			slog.String("stage", common.StageStore),
			slog.String("error", storeErr.Error()))
	}
	if indexErr != nil {
		logger.Error("[Processor] Failed to index record",
			slog.String("stage", common.StageIndex),
			slog.String("error", indexErr.Error()))
	}

	return errors.Join(storeErr, indexErr)
}
