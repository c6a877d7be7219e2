package models

const (
	SentimentPositive = "POSITIVE"
	SentimentNegative = "NEGATIVE"
	SentimentNeutral  = "NEUTRAL"
	SentimentMixed    = "MIXED"
)

type SentimentScores struct {
	Positive float64 `json:"Positive"`
	Negative float64 `json:"Negative"`
	Neutral  float64 `json:"Neutral"`
	Mixed    float64 `json:"Mixed"`
}

// KeyPhrase and Entity keep the analysis service's field names so the
// records in both sinks read the same as the service output.
type KeyPhrase struct {
	Text        string  `json:"Text" dynamodbav:"Text"`
	Score       float64 `json:"Score" dynamodbav:"Score"`
	BeginOffset int32   `json:"BeginOffset" dynamodbav:"BeginOffset"`
	EndOffset   int32   `json:"EndOffset" dynamodbav:"EndOffset"`
}

type Entity struct {
	Text        string  `json:"Text" dynamodbav:"Text"`
	Type        string  `json:"Type" dynamodbav:"Type"`
	Score       float64 `json:"Score" dynamodbav:"Score"`
	BeginOffset int32   `json:"BeginOffset" dynamodbav:"BeginOffset"`
	EndOffset   int32   `json:"EndOffset" dynamodbav:"EndOffset"`
}

type AnalysisResult struct {
	Sentiment  string          `json:"Sentiment"`
	Scores     SentimentScores `json:"SentimentScore"`
	KeyPhrases []KeyPhrase     `json:"KeyPhrases"`
	Entities   []Entity        `json:"Entities"`
}
