package jira

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

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/johnquangdev/standup-assistant/pkg/callcontext"
	"github.com/johnquangdev/standup-assistant/pkg/config"
)

// Client updates issues through the Jira Cloud REST API v3
type Client struct {
	baseURL  string
	email    string
	apiToken string
	http     *http.Client
	retry    callcontext.RetryPolicy
	logger   *zap.Logger
}

// NewClient authenticates with a bearer token when JIRA_OAUTH_TOKEN is set,
// otherwise with basic auth (email + API token)
func NewClient(cfg config.JiraConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		email:    cfg.Email,
		apiToken: cfg.APIToken,
		http:     &http.Client{Timeout: 30 * time.Second},
		retry:    callcontext.DefaultRetryPolicy,
		logger:   logger,
	}
	if cfg.OAuthToken != "" {
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.OAuthToken, TokenType: "Bearer"})
		c.http = oauth2.NewClient(context.Background(), src)
		c.http.Timeout = 30 * time.Second
		c.apiToken = ""
	}
	return c
}

// WithRetryPolicy replaces the retry policy, mostly for tests
func (c *Client) WithRetryPolicy(p callcontext.RetryPolicy) *Client {
	c.retry = p
	return c
}

type transitionRequest struct {
	Transition struct {
		ID string `json:"id"`
	} `json:"transition"`
}

// UpdateStatus moves the issue through a workflow transition
func (c *Client) UpdateStatus(ctx context.Context, itemID, transitionID string) error {
	var req transitionRequest
	req.Transition.ID = transitionID
	if err := c.post(ctx, "/rest/api/3/issue/"+url.PathEscape(itemID)+"/transitions", req); err != nil {
		return fmt.Errorf("failed to transition %s: %w", itemID, err)
	}
	c.logger.Info("✅ Issue transitioned", zap.String("issue", itemID), zap.String("transition", transitionID))
	return nil
}

// AddComment appends a plain-text comment in Atlassian document format
func (c *Client) AddComment(ctx context.Context, itemID, text string) error {
	if err := c.post(ctx, "/rest/api/3/issue/"+url.PathEscape(itemID)+"/comment", commentBody(text)); err != nil {
		return fmt.Errorf("failed to comment on %s: %w", itemID, err)
	}
	c.logger.Info("✅ Issue commented", zap.String("issue", itemID))
	return nil
}

type adfNode struct {
	Type    string    `json:"type"`
	Version int       `json:"version,omitempty"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

// commentBody renders each line as its own paragraph
func commentBody(text string) map[string]adfNode {
	doc := adfNode{Type: "doc", Version: 1}
	for _, line := range strings.Split(text, "\n") {
		p := adfNode{Type: "paragraph"}
		if line = strings.TrimRight(line, " "); line != "" {
			p.Content = []adfNode{{Type: "text", Text: line}}
		}
		doc.Content = append(doc.Content, p)
	}
	return map[string]adfNode{"body": doc}
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return callcontext.Retry(ctx, c.retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		if c.apiToken != "" {
			req.SetBasicAuth(c.email, c.apiToken)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode >= 300 {
			return fmt.Errorf("jira returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
		}
		return nil
	})
}
