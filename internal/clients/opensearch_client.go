package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/spacesedan/transcriptflow/internal/common"
	"github.com/spacesedan/transcriptflow/internal/models"
)

const SINK_OPENSEARCH = "opensearch"

// SignedRequester is the narrow capability the index writer needs: send one
// signed request and hand back status and body.
type SignedRequester interface {
	Do(ctx context.Context, method, path string, header http.Header, body []byte) (*SignedResponse, error)
}

type indexDocument struct {
	RecordingID string             `json:"recordingId"`
	Transcript  string             `json:"transcript"`
	Created     int64              `json:"created"`
	Sentiment   string             `json:"Sentiment"`
	KeyPhrases  []models.KeyPhrase `json:"KeyPhrases"`
	Entities    []models.Entity    `json:"Entities"`
	Positive    float64            `json:"Positive"`
	Negative    float64            `json:"Negative"`
	Neutral     float64            `json:"Neutral"`
	Mixed       float64            `json:"Mixed"`
}

func newIndexDocument(record models.EnrichedRecord) indexDocument {
	doc := indexDocument{
		RecordingID: record.ID,
		Transcript:  record.Transcript,
		Created:     record.Created,
		Sentiment:   record.Sentiment,
		KeyPhrases:  record.KeyPhrases,
		Entities:    record.Entities,
		Positive:    record.Positive,
		Negative:    record.Negative,
		Neutral:     record.Neutral,
		Mixed:       record.Mixed,
	}
	if doc.KeyPhrases == nil {
		doc.KeyPhrases = []models.KeyPhrase{}
	}
	if doc.Entities == nil {
		doc.Entities = []models.Entity{}
	}
	return doc
}

type SearchIndex struct {
	requester SignedRequester
	client    *opensearch.Client
	path      string
}

// NewSearchIndex writes documents to /<index>/<docType>. client is only used
// for health probes and may be nil.
func NewSearchIndex(requester SignedRequester, client *opensearch.Client, index, docType string) *SearchIndex {
	return &SearchIndex{
		requester: requester,
		client:    client,
		path:      path.Join("/", index, docType),
	}
}

// NewOpensearchClient builds an opensearch-go client that signs through the
// same transport as the index writer.
func NewOpensearchClient(signed *SignedHTTPClient) (*opensearch.Client, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{signed.BaseURL()},
		Transport: signed.Transport(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenSearch Client: %w", err)
	}
	return client, nil
}

func (s *SearchIndex) Path() string {
	return s.path
}

func (s *SearchIndex) IndexRecord(ctx context.Context, record models.EnrichedRecord) error {
	slog.Info("[OpenSearchClient] Indexing enriched record",
		slog.String("object_key", record.ID),
		slog.String("path", s.path))

	payload, err := json.Marshal(newIndexDocument(record))
	if err != nil {
		slog.Error("[OpenSearchClient] failed to marshal record",
			slog.String("object_key", record.ID),
			slog.String("error", err.Error()))
		return &common.IndexWriteError{Sink: SINK_OPENSEARCH, Err: fmt.Errorf("marshal document: %w", err)}
	}

	header := http.Header{}
	header.Set("Content-Type", "application/json")

	res, err := s.requester.Do(ctx, http.MethodPost, s.path, header, payload)
	if err != nil {
		slog.Error("[OpenSearchClient] Failed to index record",
			slog.String("object_key", record.ID),
			slog.String("error", err.Error()))
		return &common.IndexWriteError{Sink: SINK_OPENSEARCH, Err: err}
	}

	if !res.IsSuccess() {
		slog.Error("[OpenSearchClient] OpenSearch indexing error",
			slog.String("object_key", record.ID),
			slog.Int("status", res.StatusCode),
			getPreview(res.Body))
		return &common.IndexWriteError{
			Sink: SINK_OPENSEARCH,
			Err:  fmt.Errorf("opensearch error: status %d: %s", res.StatusCode, preview(res.Body)),
		}
	}

	slog.Info("[OpenSearchClient] Indexed enriched record",
		slog.String("object_key", record.ID),
		slog.Int("status", res.StatusCode))
	return nil
}

func (s *SearchIndex) IsHealthy(ctx context.Context) bool {
	if s.client == nil {
		return false
	}

	req := opensearchapi.ClusterHealthReq{}
	res, err := s.client.Do(ctx, req, nil)
	if err != nil {
		slog.Warn("[OpenSearchClient] Health check failed",
			slog.String("error", err.Error()))
		return false
	}
	defer res.Body.Close()

	if res.IsError() {
		return false
	}

	return res.StatusCode == http.StatusOK
}

func getPreview(body []byte) slog.Attr {
	return slog.String("raw_response", preview(body))
}

func preview(body []byte) string {
	raw := string(body)
	if len(raw) > 200 {
		raw = raw[:200]
	}
	return raw
}
