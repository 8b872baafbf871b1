// Package catalog looks up candidate books in the Google Books volumes API.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/model"
	cb "github.com/versewell/library-service/pkg/circuit_breaker"
)

const defaultBaseURL = "https://www.googleapis.com/books/v1/volumes"

var ErrUnavailable = errors.New("catalog unavailable")

type Config struct {
	BaseURL string `envconfig:"CATALOG_BASE_URL"`
	APIKey  string `envconfig:"CATALOG_API_KEY"`
}

type Client struct {
	log     *zap.Logger
	client  *http.Client
	breaker cb.CircuitBreaker
	baseURL string
	apiKey  string
}

func NewClient(cfg Config, log *zap.Logger) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		log:     log.Named("catalog"),
		client:  &http.Client{Timeout: time.Minute},
		breaker: cb.New(10, 30*time.Second, 0.5, 3),
		baseURL: baseURL,
		apiKey:  cfg.APIKey,
	}
}

// volumesResponse mirrors the slice of the Google Books payload we consume.
type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title               string   `json:"title"`
			Authors             []string `json:"authors"`
			PublishedDate       string   `json:"publishedDate"`
			Description         string   `json:"description"`
			PageCount           int      `json:"pageCount"`
			Categories          []string `json:"categories"`
			IndustryIdentifiers []struct {
				Type       string `json:"type"`
				Identifier string `json:"identifier"`
			} `json:"industryIdentifiers"`
			ImageLinks struct {
				SmallThumbnail string `json:"smallThumbnail"`
				Thumbnail      string `json:"thumbnail"`
				Small          string `json:"small"`
				Medium         string `json:"medium"`
			} `json:"imageLinks"`
			PreviewLink         string `json:"previewLink"`
			InfoLink            string `json:"infoLink"`
			CanonicalVolumeLink string `json:"canonicalVolumeLink"`
		} `json:"volumeInfo"`
		AccessInfo struct {
			WebReaderLink string `json:"webReaderLink"`
			Embeddable    bool   `json:"embeddable"`
			PublicDomain  bool   `json:"publicDomain"`
		} `json:"accessInfo"`
	} `json:"items"`
}

// Search queries the catalog. Failures trip the circuit breaker; an open
// breaker surfaces as ErrUnavailable without hitting the network.
func (c *Client) Search(ctx context.Context, query string, startIndex, maxResults int) (model.CatalogSearchResult, error) {
	if query == "" {
		query = "programming"
	}
	if maxResults <= 0 {
		maxResults = 12
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("startIndex", strconv.Itoa(startIndex))
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("printType", "books")
	if c.apiKey != "" {
		params.Set("key", c.apiKey)
	}

	var payload volumesResponse
	err := c.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), http.NoBody)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		resp, err := c.client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("catalog status %d", resp.StatusCode)
		}
		return json.NewDecoder(resp.Body).Decode(&payload)
	})
	if err != nil {
		c.log.Warn("catalog search", zap.String("q", query), zap.Error(err))
		if errors.Is(err, cb.ErrOpenCB) {
			return model.CatalogSearchResult{}, ErrUnavailable
		}
		return model.CatalogSearchResult{}, errors.Wrap(ErrUnavailable, err.Error())
	}

	books := make([]model.CatalogEntry, 0, len(payload.Items))
	for _, item := range payload.Items {
		vi := item.VolumeInfo

		authors := vi.Authors
		if len(authors) == 0 {
			authors = []string{"Unknown Author"}
		}
		cover := vi.ImageLinks.Thumbnail
		if cover == "" {
			cover = vi.ImageLinks.SmallThumbnail
		}
		if cover == "" {
			cover = vi.ImageLinks.Small
		}
		if cover == "" {
			cover = vi.ImageLinks.Medium
		}
		year := "N/A"
		if len(vi.PublishedDate) >= 4 {
			year = vi.PublishedDate[:4]
		}
		isbn := ""
		if len(vi.IndustryIdentifiers) > 0 {
			isbn = vi.IndustryIdentifiers[0].Identifier
		}
		desc := vi.Description
		if desc == "" {
			desc = "No description available"
		}
		title := vi.Title
		if title == "" {
			title = "Title not available"
		}

		books = append(books, model.CatalogEntry{
			ID:            item.ID,
			Title:         title,
			Authors:       authors,
			Cover:         cover,
			Year:          year,
			Pages:         vi.PageCount,
			Description:   desc,
			Categories:    vi.Categories,
			ISBN:          isbn,
			PreviewLink:   vi.PreviewLink,
			InfoLink:      vi.InfoLink,
			CanonicalLink: vi.CanonicalVolumeLink,
			WebReaderLink: item.AccessInfo.WebReaderLink,
			Embeddable:    item.AccessInfo.Embeddable,
			PublicDomain:  item.AccessInfo.PublicDomain,
		})
	}

	return model.CatalogSearchResult{
		Books:      books,
		TotalItems: payload.TotalItems,
		HasMore:    startIndex+maxResults < payload.TotalItems,
	}, nil
}
