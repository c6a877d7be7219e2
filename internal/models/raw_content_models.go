package models

import "unicode/utf8"

// MAX_ANALYZED_CHARS is the longest text the analysis service accepts.
const MAX_ANALYZED_CHARS = 4098

// ObjectLocator points at a transcription artifact in the object store.
type ObjectLocator struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// TranscriptionArtifact is the subset of a speech-to-text output document the
// pipeline reads.
type TranscriptionArtifact struct {
	Results struct {
		Transcripts []struct {
			Transcript string `json:"transcript"`
		} `json:"transcripts"`
	} `json:"results"`
}

type Transcript struct {
	FullText     string
	AnalyzedText string
}

// NewTranscript caps the analyzed text at MAX_ANALYZED_CHARS characters.
// AnalyzedText is always a prefix of FullText.
func NewTranscript(fullText string) Transcript {
	return Transcript{
		FullText:     fullText,
		AnalyzedText: TruncateChars(fullText, MAX_ANALYZED_CHARS),
	}
}

// TruncateChars returns the first max characters of s without splitting a
// multi-byte rune.
func TruncateChars(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if len(s) <= max {
		return s
	}
	count := 0
	for i := range s {
		if count == max {
			return s[:i]
		}
		count++
	}
	return s
}

// CharCount is the length TruncateChars measures against.
func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}
