// Package pinning uploads card artwork and metadata to IPFS through the
// Pinata pinning API.
package pinning

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the Pinata API root.
const DefaultBaseURL = "https://api.pinata.cloud"

// ErrMissingJWT is returned when no Pinata token is configured.
var ErrMissingJWT = errors.New("missing PINATA_JWT")

// APIError is a non-2xx answer from Pinata.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("pinata: status %d: %s", e.StatusCode, e.Body)
}

// Config configures a Client.
type Config struct {
	JWT     string
	Gateway string
	// BaseURL overrides DefaultBaseURL.
	BaseURL string
	// HTTPClient overrides the default instrumented client.
	HTTPClient *http.Client
}

// Client talks to the Pinata API.
type Client struct {
	jwt     string
	gateway string
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for cfg. It fails with ErrMissingJWT when no
// token is set.
func NewClient(cfg Config) (*Client, error) {
	jwt := strings.TrimSpace(cfg.JWT)
	if jwt == "" {
		return nil, ErrMissingJWT
	}
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   60 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		jwt:     jwt,
		gateway: strings.TrimSpace(cfg.Gateway),
		baseURL: base,
		http:    hc,
	}, nil
}

type pinResponse struct {
	IpfsHash string `json:"IpfsHash"`
}

type pinMetadata struct {
	Name string `json:"name"`
}

// PinFile uploads data as a file named name and returns its CID.
func (c *Client) PinFile(ctx context.Context, name, contentType string, data []byte) (string, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return "", fmt.Errorf("pinata: create part: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("pinata: write part: %w", err)
	}

	meta, _ := json.Marshal(pinMetadata{Name: name})
	if err := w.WriteField("pinataMetadata", string(meta)); err != nil {
		return "", fmt.Errorf("pinata: write metadata: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("pinata: close form: %w", err)
	}

	return c.pin(ctx, "/pinning/pinFileToIPFS", w.FormDataContentType(), &body)
}

// PinJSON uploads content as a JSON document named name and returns its CID.
func (c *Client) PinJSON(ctx context.Context, name string, content any) (string, error) {
	b, err := json.Marshal(struct {
		Content  any         `json:"pinataContent"`
		Metadata pinMetadata `json:"pinataMetadata"`
	}{Content: content, Metadata: pinMetadata{Name: name}})
	if err != nil {
		return "", fmt.Errorf("pinata: encode json: %w", err)
	}
	return c.pin(ctx, "/pinning/pinJSONToIPFS", "application/json", bytes.NewReader(b))
}

// GatewayURL returns an HTTP URL for cid on the configured gateway, or the
// ipfs:// URI when no gateway is set.
func (c *Client) GatewayURL(cid string) string {
	if c.gateway == "" {
		return "ipfs://" + cid
	}
	gw := strings.TrimRight(c.gateway, "/")
	if !strings.Contains(gw, "://") {
		gw = "https://" + gw
	}
	return gw + "/ipfs/" + cid
}

func (c *Client) pin(ctx context.Context, path, contentType string, body io.Reader) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return "", fmt.Errorf("pinata: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.jwt)
	req.Header.Set("Content-Type", contentType)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("pinata: %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	var out pinResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("pinata: decode response: %w", err)
	}
	if out.IpfsHash == "" {
		return "", errors.New("pinata: response without IpfsHash")
	}
	return out.IpfsHash, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
