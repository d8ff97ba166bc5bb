// Package images resolves article thumbnails via a stock-photo search API,
// degrading to locally rendered placeholders when the API is unavailable.
package images

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const unsplashDefaultBase = "https://api.unsplash.com"

// Descriptor describes one resolved image.
type Descriptor struct {
	URL             string `json:"url"`
	ThumbnailURL    string `json:"thumbnail_url"`
	AttributionName string `json:"attribution_name"`
	AttributionURL  string `json:"attribution_url"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	IsPlaceholder   bool   `json:"is_placeholder"`
}

// placeholderSizes cycle deterministically through fallback descriptors.
var placeholderSizes = [][2]int{
	{1200, 800},
	{1280, 720},
	{1600, 900},
}

// Resolver finds images for article categories.
type Resolver struct {
	accessKey string
	base      string
	localBase string
	client    *http.Client
	logger    *slog.Logger
}

// NewResolver creates a Resolver. An empty accessKey is allowed; every call
// then yields placeholders. localBase is the public base URL under which
// this process serves rendered placeholder PNGs.
func NewResolver(accessKey, baseURL, localBase string) *Resolver {
	if baseURL == "" {
		baseURL = unsplashDefaultBase
	}
	return &Resolver{
		accessKey: accessKey,
		base:      baseURL,
		localBase: strings.TrimRight(localBase, "/"),
		client:    &http.Client{Timeout: 10 * time.Second},
		logger:    slog.Default(),
	}
}

type photoSearchResponse struct {
	Results []struct {
		Width  int `json:"width"`
		Height int `json:"height"`
		URLs   struct {
			Regular string `json:"regular"`
			Thumb   string `json:"thumb"`
		} `json:"urls"`
		User struct {
			Name  string `json:"name"`
			Links struct {
				HTML string `json:"html"`
			} `json:"links"`
		} `json:"user"`
	} `json:"results"`
}

// ImagesForTopic returns exactly count descriptors for a topic. The live
// path queries the photo API filtered to landscape orientation and high
// content safety; any shortfall (no credentials, error, empty results) is
// made up with placeholders. Never fails.
func (r *Resolver) ImagesForTopic(ctx context.Context, topic string, count int) []Descriptor {
	if count <= 0 {
		count = 1
	}

	var live []Descriptor
	if r.accessKey != "" {
		live = r.search(ctx, topic, count)
	}
	if len(live) >= count {
		return live[:count]
	}

	out := make([]Descriptor, 0, count)
	out = append(out, live...)
	for i := len(live); i < count; i++ {
		out = append(out, r.Placeholder(topic, i))
	}
	return out
}

func (r *Resolver) search(ctx context.Context, topic string, count int) []Descriptor {
	q := url.Values{}
	q.Set("query", topic)
	q.Set("per_page", fmt.Sprintf("%d", count))
	q.Set("orientation", "landscape")
	q.Set("content_filter", "high")

	req, err := http.NewRequestWithContext(ctx, "GET", r.base+"/search/photos?"+q.Encode(), nil)
	if err != nil {
		r.logger.Warn("photo request build failed", "error", err)
		return nil
	}
	req.Header.Set("Authorization", "Client-ID "+r.accessKey)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Warn("photo search failed", "topic", topic, "error", err)
		return nil
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		r.logger.Warn("photo response read failed", "error", err)
		return nil
	}
	if resp.StatusCode != http.StatusOK {
		r.logger.Warn("photo provider returned error", "status", resp.StatusCode)
		return nil
	}

	var parsed photoSearchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		r.logger.Warn("photo response unmarshal failed", "error", err)
		return nil
	}

	descriptors := make([]Descriptor, 0, len(parsed.Results))
	for _, p := range parsed.Results {
		if p.URLs.Regular == "" {
			continue
		}
		descriptors = append(descriptors, Descriptor{
			URL:             p.URLs.Regular,
			ThumbnailURL:    p.URLs.Thumb,
			AttributionName: p.User.Name,
			AttributionURL:  p.User.Links.HTML,
			Width:           p.Width,
			Height:          p.Height,
		})
	}
	return descriptors
}

// Placeholder builds the nth placeholder descriptor for a topic. Dimensions
// cycle through a fixed set so output is deterministic.
func (r *Resolver) Placeholder(topic string, n int) Descriptor {
	size := placeholderSizes[n%len(placeholderSizes)]
	slug := topicSlug(topic)
	imgURL := fmt.Sprintf("%s/images/placeholder/%s?w=%d&h=%d", r.localBase, slug, size[0], size[1])
	return Descriptor{
		URL:             imgURL,
		ThumbnailURL:    fmt.Sprintf("%s/images/placeholder/%s?w=400&h=267", r.localBase, slug),
		AttributionName: "TrendWise",
		AttributionURL:  r.localBase,
		Width:           size[0],
		Height:          size[1],
		IsPlaceholder:   true,
	}
}

func topicSlug(topic string) string {
	topic = strings.ToLower(strings.TrimSpace(topic))
	if topic == "" {
		return "general"
	}
	var b strings.Builder
	for _, r := range topic {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	s := strings.Trim(b.String(), "-")
	if s == "" {
		return "general"
	}
	return s
}
