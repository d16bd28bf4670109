// Package extraction turns a PDF into positioned text blocks via a
// layout-recognition HTTP service. The service receives the raw PDF bytes
// and returns, per page, each text block with its quadrilateral position
// in source-document pixel coordinates.
package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned when the extraction service credentials are
// missing.
var ErrNotConfigured = errors.New("extraction: service not configured")

// Block is one positioned text run. Quad holds eight values, the four
// corners as x,y pairs in source pixel coordinates at the request DPI.
type Block struct {
	Text   string    `json:"text"`
	Quad   []float64 `json:"quad"`
	PageID int       `json:"page_id"`
}

// Page groups the blocks of a single source page. Width and Height are in
// source pixel coordinates at the request DPI.
type Page struct {
	PageID int     `json:"page_id"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Blocks []Block `json:"blocks"`
}

// Result is the full extraction of a document.
type Result struct {
	Pages     []Page `json:"pages"`
	PageCount int    `json:"page_count"`
}

// Service extracts positioned text from PDF bytes.
type Service interface {
	Extract(ctx context.Context, pdf []byte, dpi int) (*Result, error)
}

// Config holds the extraction service endpoint and credentials.
type Config struct {
	BaseURL string
	AppID   string
	Secret  string
	Timeout time.Duration
}

// Client calls a TextIn-compatible recognition endpoint.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Available reports whether credentials are configured.
func (c *Client) Available() error {
	if c.cfg.BaseURL == "" || c.cfg.AppID == "" || c.cfg.Secret == "" {
		return ErrNotConfigured
	}
	return nil
}

// Extract uploads the PDF body and parses the recognized pages. dpi selects
// the coordinate resolution of the returned positions.
func (c *Client) Extract(ctx context.Context, pdf []byte, dpi int) (*Result, error) {
	if err := c.Available(); err != nil {
		return nil, err
	}
	if len(pdf) == 0 {
		return nil, errors.New("extraction: empty document")
	}
	if dpi <= 0 {
		dpi = 72
	}

	url := c.cfg.BaseURL + "?dpi=" + strconv.Itoa(dpi)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(pdf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("x-ti-app-id", c.cfg.AppID)
	req.Header.Set("x-ti-secret-code", c.cfg.Secret)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("extraction service returned HTTP %d", resp.StatusCode)
	}

	var parsed struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Result  struct {
			TotalPageNumber int `json:"total_page_number"`
			Pages           []struct {
				PageID     int     `json:"page_id"`
				Width      float64 `json:"width"`
				Height     float64 `json:"height"`
				Structured []struct {
					Text string    `json:"text"`
					Pos  []float64 `json:"pos"`
				} `json:"structured"`
			} `json:"pages"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("extraction response malformed: %w", err)
	}
	if parsed.Code != 200 {
		return nil, fmt.Errorf("extraction service error %d: %s", parsed.Code, parsed.Message)
	}

	result := &Result{PageCount: parsed.Result.TotalPageNumber}
	for _, p := range parsed.Result.Pages {
		page := Page{PageID: p.PageID, Width: p.Width, Height: p.Height}
		for _, s := range p.Structured {
			if s.Text == "" {
				continue
			}
			page.Blocks = append(page.Blocks, Block{
				Text:   s.Text,
				Quad:   s.Pos,
				PageID: p.PageID,
			})
		}
		result.Pages = append(result.Pages, page)
	}
	if result.PageCount == 0 {
		result.PageCount = len(result.Pages)
	}

	c.logger.Info("document extracted",
		zap.Int("pages", result.PageCount),
		zap.Int("bytes", len(pdf)))
	return result, nil
}
