package processing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/transcriptflow/config"
	"github.com/spacesedan/transcriptflow/internal/clients"
	"github.com/spacesedan/transcriptflow/internal/db"
	"github.com/spacesedan/transcriptflow/internal/monitoring"
	"github.com/spacesedan/transcriptflow/internal/sentiment"
	"github.com/spacesedan/transcriptflow/internal/transcripts"
)

// Pipeline is everything one process needs to run activations, built once
// from Config.
type Pipeline struct {
	Processor *Processor
	Store     *db.RecordStore
	Index     *clients.SearchIndex
}

func Bootstrap(ctx context.Context, cfg config.Config) (*Pipeline, error) {
	awsClients, err := clients.NewAWSClients(ctx, cfg)
	if err != nil {
		return nil, err
	}

	loader, err := transcripts.NewLoader(awsClients.S3)
	if err != nil {
		return nil, fmt.Errorf("init transcript loader: %w", err)
	}

	var analyzer sentiment.Analyzer
	switch cfg.AnalyzerBackend {
	case config.AnalyzerVader:
		analyzer = sentiment.NewVaderAnalyzer()
	default:
		analyzer = sentiment.NewComprehendAnalyzer(awsClients.Comprehend, cfg.LanguageCode,
			sentiment.WithMaxRetryElapsed(cfg.AnalysisMaxRetryElapsed),
			sentiment.WithRateLimit(cfg.AnalysisRPS))
	}

	signed, err := clients.NewSignedHTTPClient(cfg.SearchEndpoint, awsClients.Config.Credentials, cfg.Region, cfg.SearchTimeout)
	if err != nil {
		return nil, fmt.Errorf("init signed search client: %w", err)
	}
	osClient, err := clients.NewOpensearchClient(signed)
	if err != nil {
		return nil, err
	}

	store := db.NewRecordStore(awsClients.DynamoDB, cfg.TableName)
	index := clients.NewSearchIndex(signed, osClient, cfg.SearchIndex, cfg.SearchDocType)

	slog.Info("[Bootstrap] Pipeline initialized",
		slog.String("analyzer", cfg.AnalyzerBackend),
		slog.String("table", cfg.TableName),
		slog.String("search_host", signed.Host()),
		slog.String("search_path", index.Path()))

	return &Pipeline{
		Processor: NewProcessor(loader, analyzer, store, index, WithActivationTimeout(cfg.ActivationTimeout)),
		Store:     store,
		Index:     index,
	}, nil
}

func (p *Pipeline) HealthCheckers() map[string]monitoring.HealthChecker {
	return map[string]monitoring.HealthChecker{
		db.SINK_DYNAMODB:        p.Store,
		clients.SINK_OPENSEARCH: p.Index,
	}
}
