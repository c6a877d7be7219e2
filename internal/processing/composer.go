package processing

import (
	"time"

	"github.com/spacesedan/transcriptflow/internal/models"
)

// ComposeRecord merges the transcript and its analysis into the record both
// sinks receive. The record ID is the object key and Transcript is the full,
// untruncated text.
func ComposeRecord(key string, transcript models.Transcript, analysis *models.AnalysisResult, now time.Time) models.EnrichedRecord {
	if analysis == nil {
		panic("processing: ComposeRecord called without an analysis result")
	}

	keyPhrases := analysis.KeyPhrases
	if keyPhrases == nil {
		keyPhrases = []models.KeyPhrase{}
	}
	entities := analysis.Entities
	if entities == nil {
		entities = []models.Entity{}
	}

	return models.EnrichedRecord{
		ID:         key,
		Transcript: transcript.FullText,
		Created:    now.Unix(),
		Sentiment:  analysis.Sentiment,
		KeyPhrases: keyPhrases,
		Entities:   entities,
		Positive:   analysis.Scores.Positive,
		Negative:   analysis.Scores.Negative,
		Neutral:    analysis.Scores.Neutral,
		Mixed:      analysis.Scores.Mixed,
	}
}
