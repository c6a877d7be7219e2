package clients

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/spacesedan/transcriptflow/internal/common"
)

// SIGNING_SERVICE_ES is the SigV4 service name of managed search domains.
const SIGNING_SERVICE_ES = "es"

// sha256 of an empty payload
const emptyPayloadHash = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

type sigV4Transport struct {
	credentials aws.CredentialsProvider
	signer      *v4.Signer
	region      string
	service     string
	now         func() time.Time
	next        http.RoundTripper
}

func NewSigV4Transport(creds aws.CredentialsProvider, signer *v4.Signer, region string, service string) http.RoundTripper {
	return &sigV4Transport{
		credentials: creds,
		signer:      signer,
		region:      region,
		service:     service,
		now:         time.Now,
		next:        http.DefaultTransport,
	}
}

func (t *sigV4Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	signedReq, err := t.sign(req)
	if err != nil {
		return nil, err
	}

	return t.next.RoundTrip(signedReq)
}

// sign returns a signed copy of req. Every failure wraps common.ErrRequestSigning.
func (t *sigV4Transport) sign(req *http.Request) (*http.Request, error) {
	ctx := req.Context()

	if t.credentials == nil {
		return nil, fmt.Errorf("%w: no credentials provider", common.ErrRequestSigning)
	}
	creds, err := t.credentials.Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: retrieve credentials: %v", common.ErrRequestSigning, err)
	}

	payloadHash, err := hashPayload(req)
	if err != nil {
		return nil, fmt.Errorf("%w: hash payload: %v", common.ErrRequestSigning, err)
	}

	signedReq := req.Clone(ctx)
	signedReq.Header.Del("Authorization")

	err = t.signer.SignHTTP(ctx, creds, signedReq, payloadHash, t.service, t.region, t.now())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRequestSigning, err)
	}

	return signedReq, nil
}

func hashPayload(req *http.Request) (string, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return emptyPayloadHash, nil
	}
	if req.GetBody == nil {
		return "", errors.New("request body cannot be replayed")
	}

	body, err := req.GetBody()
	if err != nil {
		return "", err
	}
	defer body.Close()

	h := sha256.New()
	if _, err := io.Copy(h, body); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// SignedResponse is the outcome of a signed request. Callers decide what a
// status code means.
type SignedResponse struct {
	StatusCode int
	Body       []byte
}

func (r *SignedResponse) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// SignedHTTPClient sends SigV4 signed requests to a single endpoint.
type SignedHTTPClient struct {
	baseURL   *url.URL
	transport http.RoundTripper
	client    *http.Client
}

func NewSignedHTTPClient(endpoint string, creds aws.CredentialsProvider, region string, timeout time.Duration) (*SignedHTTPClient, error) {
	baseURL, err := ParseEndpoint(endpoint)
	if err != nil {
		return nil, err
	}

	transport := NewSigV4Transport(creds, v4.NewSigner(), region, SIGNING_SERVICE_ES)

	return &SignedHTTPClient{
		baseURL:   baseURL,
		transport: transport,
		client: &http.Client{
			Transport: transport,
			Timeout:   timeout,
		},
	}, nil
}

// ParseEndpoint accepts a bare host ("search-x.us-east-1.es.amazonaws.com")
// or a full URL. Bare hosts default to https.
func ParseEndpoint(endpoint string) (*url.URL, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, errors.New("search endpoint is empty")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "https://" + endpoint
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse search endpoint: %w", err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("search endpoint %q has no host", endpoint)
	}
	u.Path = ""
	u.RawQuery = ""
	return u, nil
}

func (c *SignedHTTPClient) Host() string {
	return c.baseURL.Host
}

func (c *SignedHTTPClient) BaseURL() string {
	return c.baseURL.String()
}

// Transport exposes the signing round tripper so other clients of the same
// endpoint sign the same way.
func (c *SignedHTTPClient) Transport() http.RoundTripper {
	return c.transport
}

// Do signs and sends one request and waits for the full response body.
func (c *SignedHTTPClient) Do(ctx context.Context, method, path string, header http.Header, body []byte) (*SignedResponse, error) {
	target := *c.baseURL
	target.Path = path

	var reader io.Reader = http.NoBody
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, target.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	// net/http sends req.Host and ignores a Host entry in Header.
	req.Host = c.baseURL.Host
	req.Header.Set("presigned-expires", "false")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &SignedResponse{StatusCode: resp.StatusCode, Body: respBody}, nil
}
