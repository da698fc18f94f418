package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"strings"

	"github.com/desertthunder/cutout/internal/models"
	"github.com/desertthunder/cutout/internal/shared"
	"golang.org/x/oauth2"
)

const (
	defaultBaseURL    = "http://127.0.0.1:8000"
	defaultTokenPath  = "/token"
	defaultRemovePath = "/remove-background"

	// maxMessageBytes bounds how much of an error body is kept for display.
	maxMessageBytes = 512
)

var (
	_ Authenticator = (*Client)(nil)
	_ Remover       = (*Client)(nil)
)

// Client implements [Authenticator] and [Remover] over HTTP.
type Client struct {
	baseURL      string
	tokenPath    string
	removePath   string
	progressRate float64
	httpClient   *http.Client
}

// NewClient creates a client for the service at baseURL.
func NewClient(baseURL string, client *http.Client) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokenPath:  defaultTokenPath,
		removePath: defaultRemovePath,
		httpClient: client,
	}
}

// WithPaths overrides the endpoint paths; empty values keep the defaults.
func (c *Client) WithPaths(tokenPath, removePath string) *Client {
	if tokenPath != "" {
		c.tokenPath = tokenPath
	}
	if removePath != "" {
		c.removePath = removePath
	}
	return c
}

// WithProgressRate limits progress reports to perSecond events; zero reports every change.
func (c *Client) WithProgressRate(perSecond float64) *Client {
	c.progressRate = perSecond
	return c
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string { return c.baseURL }

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Authenticate posts creds to the token endpoint as multipart form fields.
func (c *Client) Authenticate(ctx context.Context, creds Credentials) (*oauth2.Token, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if err := mw.WriteField("username", creds.Username); err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := mw.WriteField("password", creds.Password); err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("failed to encode credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.tokenPath, &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAuthFailed, resp.StatusCode, readMessage(resp.Body))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("%w: failed to decode token response: %v", shared.ErrAuthFailed, err)
	}
	if tr.AccessToken == "" {
		return nil, fmt.Errorf("%w: response has no access_token", shared.ErrAuthFailed)
	}

	return &oauth2.Token{AccessToken: tr.AccessToken, TokenType: tr.TokenType}, nil
}

// RemoveBackground streams file to the removal endpoint as the multipart field "image".
//
// A nil token sends no Authorization header.
func (c *Client) RemoveBackground(ctx context.Context, file models.SelectedFile, token *oauth2.Token, progress ProgressFunc) Outcome {
	f, err := os.Open(file.Path)
	if err != nil {
		return Outcome{Kind: OutcomeTransportError, Err: fmt.Errorf("failed to open %s: %w", file.Path, err)}
	}
	defer f.Close()

	size := file.Size
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}

	body, err := newUploadBody("image", file, f, size)
	if err != nil {
		return Outcome{Kind: OutcomeTransportError, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.removePath,
		newProgressReader(body, body.Len(), progress, c.progressRate))
	if err != nil {
		return Outcome{Kind: OutcomeTransportError, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.ContentLength = body.Len()
	req.Header.Set("Content-Type", body.ContentType())
	req.Header.Set("Accept", "image/png")
	if token != nil && token.AccessToken != "" {
		token.SetAuthHeader(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Outcome{Kind: OutcomeTransportError, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return Outcome{Kind: OutcomeTransportError, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response: %w", err)}
		}
		return Outcome{
			Kind:       OutcomeSuccess,
			StatusCode: resp.StatusCode,
			Image:      &models.ResultImage{Data: data, ContentType: "image/png"},
		}
	case http.StatusUnauthorized:
		return Outcome{Kind: OutcomeAuthExpired, StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	default:
		return Outcome{Kind: OutcomeRejected, StatusCode: resp.StatusCode, Message: readMessage(resp.Body)}
	}
}

func readMessage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, maxMessageBytes))
	return strings.TrimSpace(string(b))
}
