package models

// EnrichedRecord is the merged output written to both sinks. ID is the
// source object key, so replaying an activation overwrites the same record.
type EnrichedRecord struct {
	ID         string
	Transcript string
	Created    int64
	Sentiment  string
	KeyPhrases []KeyPhrase
	Entities   []Entity
	Positive   float64
	Negative   float64
	Neutral    float64
	Mixed      float64
}
