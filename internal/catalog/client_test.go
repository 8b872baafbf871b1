package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/versewell/library-service/internal/model"
)

const volumesPayload = `{
  "totalItems": 40,
  "items": [
    {
      "id": "zyTCAlFPjgYC",
      "volumeInfo": {
        "title": "The Go Programming Language",
        "authors": ["Alan A. A. Donovan", "Brian W. Kernighan"],
        "publishedDate": "2015-11-16",
        "description": "The authoritative resource.",
        "pageCount": 400,
        "categories": ["Computers"],
        "industryIdentifiers": [
          {"type": "ISBN_13", "identifier": "9780134190440"},
          {"type": "ISBN_10", "identifier": "0134190440"}
        ],
        "imageLinks": {"smallThumbnail": "http://img/small", "thumbnail": "http://img/thumb"},
        "previewLink": "http://preview",
        "infoLink": "http://info",
        "canonicalVolumeLink": "http://canonical"
      },
      "accessInfo": {"webReaderLink": "http://reader", "embeddable": true, "publicDomain": false}
    },
    {
      "id": "bare",
      "volumeInfo": {"publishedDate": "20"},
      "accessInfo": {}
    }
  ]
}`

func TestClient_Search(t *testing.T) {
	t.Parallel()
	var gotQuery map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{
			"q":          r.URL.Query().Get("q"),
			"startIndex": r.URL.Query().Get("startIndex"),
			"maxResults": r.URL.Query().Get("maxResults"),
			"printType":  r.URL.Query().Get("printType"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(volumesPayload))
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, zap.NewExample())
	res, err := c.Search(context.Background(), "", 0, 0)
	require.NoError(t, err)

	require.Equal(t, map[string]string{
		"q":          "programming",
		"startIndex": "0",
		"maxResults": "12",
		"printType":  "books",
	}, gotQuery)

	require.Equal(t, 40, res.TotalItems)
	require.True(t, res.HasMore)
	require.Len(t, res.Books, 2)

	require.Equal(t, model.CatalogEntry{
		ID:            "zyTCAlFPjgYC",
		Title:         "The Go Programming Language",
		Authors:       []string{"Alan A. A. Donovan", "Brian W. Kernighan"},
		Cover:         "http://img/thumb",
		Year:          "2015",
		Pages:         400,
		Description:   "The authoritative resource.",
		Categories:    []string{"Computers"},
		ISBN:          "9780134190440",
		PreviewLink:   "http://preview",
		InfoLink:      "http://info",
		CanonicalLink: "http://canonical",
		WebReaderLink: "http://reader",
		Embeddable:    true,
	}, res.Books[0])

	// sparse volumes fall back to placeholders
	require.Equal(t, model.CatalogEntry{
		ID:          "bare",
		Title:       "Title not available",
		Authors:     []string{"Unknown Author"},
		Year:        "N/A",
		Description: "No description available",
	}, res.Books[1])
}

func TestClient_Search_UpstreamError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL}, zap.NewExample())
	_, err := c.Search(context.Background(), "golang", 0, 5)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnavailable))
}
