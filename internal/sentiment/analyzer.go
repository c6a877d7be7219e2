package sentiment

import (
	"context"

	"github.com/spacesedan/transcriptflow/internal/models"
)

// Operation names reported in common.AnalysisServiceError.
const (
	OpDetectSentiment  = "DetectSentiment"
	OpDetectKeyPhrases = "DetectKeyPhrases"
	OpDetectEntities   = "DetectEntities"
)

// Analyzer runs sentiment, key phrase and entity detection over text that is
// already capped at models.MAX_ANALYZED_CHARS. A failure of any of the three
// passes fails the whole call.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}
