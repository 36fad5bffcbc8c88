// Package apify provides a client for the Apify Facebook group scraper
// actor, the upstream post source of the pipeline.
package apify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/trustcheck/scraper-agent/internal/model"
)

// groupScraperActor is the actor identifier in Apify's URL form.
const groupScraperActor = "apify~facebook-groups-scraper"

// Client defines the post source operations.
type Client interface {
	// FetchRecentPosts runs the group scraper and returns the mapped posts.
	FetchRecentPosts(ctx context.Context, groupURL string, maxPosts, daysBack int) ([]model.RawPost, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL sets a custom API base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates an Apify client.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: "https://api.apify.com",
		http: &http.Client{
			// Actor runs are synchronous and can take a while on large groups.
			Timeout: 5 * time.Minute,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// runInput is the actor input for the group scraper.
type runInput struct {
	StartURLs          []startURL  `json:"startUrls"`
	ResultsLimit       int         `json:"resultsLimit"`
	OnlyPostsNewerThan string      `json:"onlyPostsNewerThan"`
	ProxyConfiguration proxyConfig `json:"proxyConfiguration"`
}

type startURL struct {
	URL string `json:"url"`
}

type proxyConfig struct {
	UseApifyProxy bool `json:"useApifyProxy"`
}

// datasetItem is the subset of the actor's output the pipeline consumes.
type datasetItem struct {
	// IDs and timestamps arrive as strings or numbers depending on the
	// actor version.
	LegacyID      model.FlexString `json:"legacyId"`
	ID            model.FlexString `json:"id"`
	URL           string           `json:"url"`
	Text          string           `json:"text"`
	Time          model.FlexString `json:"time"`
	CommentsCount int              `json:"commentsCount"`
	User          *itemUser        `json:"user"`
	Attachments   []attachment     `json:"attachments"`
}

type itemUser struct {
	Name string `json:"name"`
}

// attachment mirrors the actor's nested image shapes. The direct CDN URL is
// usually under photo_image.uri; thumbnail and image.uri are backups.
type attachment struct {
	PhotoImage *imageRef `json:"photo_image"`
	Thumbnail  string    `json:"thumbnail"`
	Image      *imageRef `json:"image"`
}

type imageRef struct {
	URI string `json:"uri"`
}

func (c *httpClient) FetchRecentPosts(ctx context.Context, groupURL string, maxPosts, daysBack int) ([]model.RawPost, error) {
	cutoff := time.Now().AddDate(0, 0, -daysBack).Format("2006-01-02")

	input := runInput{
		StartURLs:          []startURL{{URL: groupURL}},
		ResultsLimit:       maxPosts,
		OnlyPostsNewerThan: cutoff,
		ProxyConfiguration: proxyConfig{UseApifyProxy: true},
	}
	body, err := json.Marshal(input)
	if err != nil {
		return nil, eris.Wrap(err, "apify: marshal run input")
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, groupScraperActor, url.QueryEscape(c.token))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "apify: build run request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrap(err, "apify: run actor")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, eris.Errorf("apify: actor run returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var items []datasetItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, eris.Wrap(err, "apify: decode dataset items")
	}

	posts := make([]model.RawPost, 0, len(items))
	for _, item := range items {
		posts = append(posts, item.toPost())
	}
	return posts, nil
}

func (it datasetItem) toPost() model.RawPost {
	id := it.LegacyID.String()
	if id == "" {
		id = it.ID.String()
	}

	var author string
	if it.User != nil {
		author = it.User.Name
	}

	return model.RawPost{
		ID:           id,
		URL:          it.URL,
		Author:       author,
		Text:         it.Text,
		Images:       it.imageURLs(),
		Timestamp:    it.Time.String(),
		CommentCount: it.CommentsCount,
	}
}

// imageURLs collects direct image URLs from the attachment shapes, keeping
// order and dropping duplicates. Links to FB photo pages are never present
// in these fields, only CDN URLs.
func (it datasetItem) imageURLs() []string {
	var urls []string
	seen := make(map[string]struct{})

	add := func(u string) {
		if u == "" {
			return
		}
		if _, ok := seen[u]; ok {
			return
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}

	for _, att := range it.Attachments {
		if att.PhotoImage != nil {
			add(att.PhotoImage.URI)
		}
		add(att.Thumbnail)
		if att.Image != nil {
			add(att.Image.URI)
		}
	}
	return urls
}
