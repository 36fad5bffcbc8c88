// Package trustcheck provides a client for the TrustCheck registry API.
package trustcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/trustcheck/scraper-agent/internal/model"
)

// Client defines the registry operations the pipeline depends on.
type Client interface {
	// SubmitReport files a report. nil means the registry acknowledged the
	// creation.
	SubmitReport(ctx context.Context, payload model.ReportPayload) error
	// Exists reports whether the identity already has community reports.
	Exists(ctx context.Context, targetValue string) (bool, error)
	// UploadScreenshot stores an image on the registry and returns its
	// server-side path.
	UploadScreenshot(ctx context.Context, data []byte, contentType string) (string, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	baseURL  string
	botToken string
	http     *http.Client
}

// NewClient creates a registry client authenticated with the bot token.
func NewClient(baseURL, botToken string, opts ...Option) Client {
	c := &httpClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		botToken: botToken,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *httpClient) SubmitReport(ctx context.Context, payload model.ReportPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrap(err, "trustcheck: marshal report")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/reports", bytes.NewReader(body))
	if err != nil {
		return eris.Wrap(err, "trustcheck: build submit request")
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "trustcheck: submit report")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return eris.Errorf("trustcheck: submit returned status %d: %s", resp.StatusCode, string(respBody))
	}
	return nil
}

// searchResponse is the subset of the verification search payload the dedup
// guard needs.
type searchResponse struct {
	Community struct {
		TotalReports int `json:"totalReports"`
	} `json:"community"`
}

func (c *httpClient) Exists(ctx context.Context, targetValue string) (bool, error) {
	endpoint := fmt.Sprintf("%s/verification/search/%s", c.baseURL, url.PathEscape(targetValue))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, eris.Wrap(err, "trustcheck: build search request")
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return false, eris.Wrap(err, "trustcheck: search identity")
	}
	defer resp.Body.Close()

	// Unknown identities come back as non-200; treat them as not present.
	if resp.StatusCode != http.StatusOK {
		return false, nil
	}

	var search searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&search); err != nil {
		return false, eris.Wrap(err, "trustcheck: decode search response")
	}
	return search.Community.TotalReports > 0, nil
}

// uploadResponse carries the server-side path of a stored screenshot.
type uploadResponse struct {
	Path string `json:"path"`
}

func (c *httpClient) UploadScreenshot(ctx context.Context, data []byte, contentType string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="screenshot"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return "", eris.Wrap(err, "trustcheck: create form part")
	}
	if _, err := part.Write(data); err != nil {
		return "", eris.Wrap(err, "trustcheck: write form part")
	}
	if err := writer.Close(); err != nil {
		return "", eris.Wrap(err, "trustcheck: close form writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/uploads/screenshots", &body)
	if err != nil {
		return "", eris.Wrap(err, "trustcheck: build upload request")
	}
	c.authorize(req)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", eris.Wrap(err, "trustcheck: upload screenshot")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", eris.Errorf("trustcheck: upload returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var upload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&upload); err != nil {
		return "", eris.Wrap(err, "trustcheck: decode upload response")
	}
	if upload.Path == "" {
		return "", eris.New("trustcheck: upload response carries no path")
	}
	return upload.Path, nil
}

func (c *httpClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.botToken)
}
