// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/xml"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/paper-harvest/internal/httputil"
	"github.com/pdiddy/paper-harvest/pkg/types"
)

// ArxivSource pages through the arXiv export API (Atom feed).
type ArxivSource struct {
	client *http.Client
	cfg    types.FetchConfig
	log    *zap.Logger

	// pause waits between page requests. Tests replace it.
	pause func(ctx context.Context, d time.Duration) error
}

// NewArxivSource returns a source that sends requests through client using
// the endpoint, page size, page delay, and User-Agent from cfg.
func NewArxivSource(client *http.Client, cfg types.FetchConfig, log *zap.Logger) *ArxivSource {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}
	return &ArxivSource{client: client, cfg: cfg, log: log, pause: sleepCtx}
}

// Name returns the source identifier.
func (s *ArxivSource) Name() string { return "arxiv" }

// Search yields up to q.MaxResults entries. Pages are requested only as
// the consumer pulls past the end of the previous page, with the configured
// page delay in between. The sequence stops at MaxResults, at an empty
// page, or at the feed's reported total.
func (s *ArxivSource) Search(ctx context.Context, q Query) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		if q.Category == "" {
			yield(Entry{}, fmt.Errorf("empty category"))
			return
		}

		// start advances by the entries actually received; the API may
		// return fewer than requested.
		start, yielded := 0, 0
		for q.MaxResults <= 0 || yielded < q.MaxResults {
			if start > 0 {
				if err := s.pause(ctx, s.cfg.PageDelay); err != nil {
					yield(Entry{}, err)
					return
				}
			}

			size := s.cfg.PageSize
			if q.MaxResults > 0 && q.MaxResults-yielded < size {
				size = q.MaxResults - yielded
			}
			feed, err := s.page(ctx, q, start, size)
			if err != nil {
				yield(Entry{}, err)
				return
			}

			for _, e := range feed.Entries {
				entry, err := e.toEntry()
				if err != nil {
					yield(Entry{}, err)
					return
				}
				if !yield(entry, nil) {
					return
				}
				yielded++
			}

			start += len(feed.Entries)
			if len(feed.Entries) == 0 || (feed.TotalResults > 0 && start >= feed.TotalResults) {
				return
			}
		}
	}
}

// page requests one page of results starting at offset start.
func (s *ArxivSource) page(ctx context.Context, q Query, start, size int) (arxivFeed, error) {
	params := url.Values{}
	params.Set("search_query", q.SearchQuery())
	params.Set("start", strconv.Itoa(start))
	params.Set("max_results", strconv.Itoa(size))
	if q.SortBy != "" {
		params.Set("sortBy", q.SortBy)
	}
	if q.SortOrder != "" {
		params.Set("sortOrder", q.SortOrder)
	}
	reqURL := s.cfg.BaseURL + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return arxivFeed{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)

	s.log.Debug("requesting arXiv page",
		zap.String("category", q.Category),
		zap.Int("start", start),
		zap.Int("size", size),
	)

	resp, err := httputil.DoWithRetry(ctx, s.client, req, s.cfg.MaxRetries, s.log)
	if err != nil {
		return arxivFeed{}, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return arxivFeed{}, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return arxivFeed{}, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return feed, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	TotalResults int          `xml:"http://a9.com/-/spec/opensearch/1.1/ totalResults"`
	Entries      []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID         string          `xml:"id"`
	Title      string          `xml:"title"`
	Summary    string          `xml:"summary"`
	Published  string          `xml:"published"`
	Updated    string          `xml:"updated"`
	Authors    []arxivAuthor   `xml:"author"`
	Categories []arxivCategory `xml:"category"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}

type arxivCategory struct {
	Term string `xml:"term,attr"`
}

func (e arxivEntry) toEntry() (Entry, error) {
	id := strings.TrimSpace(e.ID)
	if id == "" {
		return Entry{}, fmt.Errorf("arXiv entry without id")
	}
	published, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Published))
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: parsing published date: %w", id, err)
	}
	updated, err := time.Parse(time.RFC3339, strings.TrimSpace(e.Updated))
	if err != nil {
		return Entry{}, fmt.Errorf("entry %s: parsing updated date: %w", id, err)
	}

	out := Entry{
		EntryID:   id,
		Title:     e.Title,
		Summary:   e.Summary,
		Published: published,
		Updated:   updated,
	}
	for _, a := range e.Authors {
		out.Authors = append(out.Authors, strings.TrimSpace(a.Name))
	}
	for _, c := range e.Categories {
		if c.Term != "" {
			out.Categories = append(out.Categories, c.Term)
		}
	}
	return out, nil
}
