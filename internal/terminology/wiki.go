package terminology

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/valpere/termitran/internal"
)

// ErrNotConfigured is returned by a Source whose credentials are missing.
// The store treats it like any other fetch failure and falls back to the
// seed dictionary.
var ErrNotConfigured = errors.New("knowledge base credentials not configured")

// Source is the external knowledge base holding terminology documents, one
// per language-pair key.
type Source interface {
	// Fetch returns the raw text content of the document for langKey.
	Fetch(ctx context.Context, langKey string) (string, error)
	// Append adds term lines to the document for langKey.
	Append(ctx context.Context, langKey string, terms []internal.Term) error
}

// WikiConfig configures a WikiSource.
type WikiConfig struct {
	AppID     string
	AppSecret string
	BaseURL   string
	// Nodes maps language-pair keys to wiki node tokens.
	Nodes map[string]string
}

// WikiSource reads and appends terminology documents stored as wiki pages.
// Access requires a tenant token; the wiki node is resolved to a document
// token before the content API is called.
type WikiSource struct {
	cfg    WikiConfig
	client *http.Client
	logger *zap.Logger
}

// NewWikiSource creates a wiki-backed terminology source.
func NewWikiSource(cfg WikiConfig, logger *zap.Logger) *WikiSource {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://open.feishu.cn"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WikiSource{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
		logger: logger,
	}
}

func (s *WikiSource) nodeToken(langKey string) (string, error) {
	node, ok := s.cfg.Nodes[langKey]
	if !ok || node == "" {
		return "", fmt.Errorf("no wiki node configured for %s", langKey)
	}
	return node, nil
}

// accessToken obtains a tenant access token.
func (s *WikiSource) accessToken(ctx context.Context) (string, error) {
	if s.cfg.AppID == "" || s.cfg.AppSecret == "" {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(map[string]string{
		"app_id":     s.cfg.AppID,
		"app_secret": s.cfg.AppSecret,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal token request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.cfg.BaseURL+"/open-apis/auth/v3/tenant_access_token/internal", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	var tokenResp struct {
		TenantAccessToken string `json:"tenant_access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.TenantAccessToken == "" {
		return "", fmt.Errorf("no access token in response")
	}
	return tokenResp.TenantAccessToken, nil
}

// resolveNode resolves a wiki node token to the underlying document token
// and type ("docx" or "doc").
func (s *WikiSource) resolveNode(ctx context.Context, token, nodeToken string) (objToken, objType string, err error) {
	u := fmt.Sprintf("%s/open-apis/wiki/v2/spaces/get_node?token=%s", s.cfg.BaseURL, url.QueryEscape(nodeToken))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", "", fmt.Errorf("failed to create node request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("node request failed: %w", err)
	}
	defer resp.Body.Close()

	var nodeResp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Node struct {
				ObjToken string `json:"obj_token"`
				ObjType  string `json:"obj_type"`
			} `json:"node"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&nodeResp); err != nil {
		return "", "", fmt.Errorf("failed to decode node response: %w", err)
	}
	if nodeResp.Code != 0 || nodeResp.Data.Node.ObjToken == "" {
		return "", "", fmt.Errorf("node resolution failed: %s", nodeResp.Msg)
	}
	return nodeResp.Data.Node.ObjToken, nodeResp.Data.Node.ObjType, nil
}

// Fetch implements Source.
func (s *WikiSource) Fetch(ctx context.Context, langKey string) (string, error) {
	nodeToken, err := s.nodeToken(langKey)
	if err != nil {
		return "", err
	}
	token, err := s.accessToken(ctx)
	if err != nil {
		return "", err
	}
	objToken, objType, err := s.resolveNode(ctx, token, nodeToken)
	if err != nil {
		return "", err
	}

	var contentURL string
	switch objType {
	case "docx":
		contentURL = fmt.Sprintf("%s/open-apis/docx/v1/documents/%s/raw_content", s.cfg.BaseURL, objToken)
	case "doc":
		contentURL = fmt.Sprintf("%s/open-apis/doc/v2/%s/raw_content", s.cfg.BaseURL, objToken)
	default:
		return "", fmt.Errorf("unsupported document type: %s", objType)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create content request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("content request failed: %w", err)
	}
	defer resp.Body.Close()

	var contentResp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
		Data struct {
			Content string `json:"content"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&contentResp); err != nil {
		return "", fmt.Errorf("failed to decode content response: %w", err)
	}
	if contentResp.Code != 0 {
		return "", fmt.Errorf("content fetch failed: %s", contentResp.Msg)
	}

	s.logger.Debug("fetched knowledge base document",
		zap.String("lang_key", langKey),
		zap.Int("bytes", len(contentResp.Data.Content)))
	return contentResp.Data.Content, nil
}

// Append implements Source. Terms are appended to the document as one
// "original | translation" text block per term.
func (s *WikiSource) Append(ctx context.Context, langKey string, terms []internal.Term) error {
	if len(terms) == 0 {
		return nil
	}
	nodeToken, err := s.nodeToken(langKey)
	if err != nil {
		return err
	}
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}
	objToken, objType, err := s.resolveNode(ctx, token, nodeToken)
	if err != nil {
		return err
	}
	if objType != "docx" {
		return fmt.Errorf("append unsupported for document type: %s", objType)
	}

	type textRun struct {
		Content string `json:"content"`
	}
	type element struct {
		TextRun textRun `json:"text_run"`
	}
	type block struct {
		BlockType int `json:"block_type"`
		Text      struct {
			Elements []element         `json:"elements"`
			Style    map[string]string `json:"style"`
		} `json:"text"`
	}

	children := make([]block, 0, len(terms))
	for _, term := range terms {
		var b block
		b.BlockType = 2 // text block
		b.Text.Elements = []element{{TextRun: textRun{Content: term.Original + " | " + term.Translation}}}
		b.Text.Style = map[string]string{}
		children = append(children, b)
	}

	body, err := json.Marshal(map[string]any{
		"children": children,
		"index":    -1,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal append request: %w", err)
	}

	u := fmt.Sprintf("%s/open-apis/docx/v1/documents/%s/blocks/%s/children", s.cfg.BaseURL, objToken, objToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create append request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("append request failed: %w", err)
	}
	defer resp.Body.Close()

	var appendResp struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&appendResp); err != nil {
		return fmt.Errorf("failed to decode append response: %w", err)
	}
	if appendResp.Code != 0 {
		return fmt.Errorf("append rejected: %s", appendResp.Msg)
	}

	s.logger.Info("appended terms to knowledge base",
		zap.String("lang_key", langKey),
		zap.Int("count", len(terms)))
	return nil
}
