package library

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/atinyakov/SolForge/internal/models"
	"github.com/atinyakov/SolForge/internal/service"
)

// Client calls the SolForge server API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient returns a Client for the server at baseURL. A nil hc uses a
// client with a 60 second timeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 60 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

// ServerError is a non-2xx answer from the server.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server: status %d: %s", e.StatusCode, e.Message)
}

// Publish stores card on the server.
func (c *Client) Publish(ctx context.Context, card models.Card) error {
	var out struct {
		OK bool   `json:"ok"`
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/api/cards", card, &out); err != nil {
		return fmt.Errorf("publish card: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("publish card: server did not acknowledge %s", card.ID)
	}
	return nil
}

// Pin uploads the card artwork and metadata through the server.
func (c *Client) Pin(ctx context.Context, card models.Card) (service.PinResult, error) {
	req := service.PinRequest{
		ID:          card.ID,
		Name:        card.Name,
		Description: card.Description,
		Rarity:      string(card.Rarity),
		Stats:       card.Stats,
		ImageURL:    card.ImageURL,
	}
	var out service.PinResult
	if err := c.post(ctx, "/api/pin", req, &out); err != nil {
		return service.PinResult{}, fmt.Errorf("pin card: %w", err)
	}
	return out, nil
}

// ActionURL is the buy action endpoint for card id.
func (c *Client) ActionURL(id string) string {
	return c.baseURL + "/api/actions/buy?cardId=" + url.QueryEscape(id)
}

// BlinkURL wraps the action URL in a dial.to link that renders it as a
// Blink.
func (c *Client) BlinkURL(id string) string {
	return "https://dial.to/?action=" + url.QueryEscape("solana-action:"+c.ActionURL(id))
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &e) != nil || e.Error == "" {
			e.Error = strings.TrimSpace(string(raw))
		}
		return &ServerError{StatusCode: resp.StatusCode, Message: e.Error}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
