// scraper/csv_source.go
package scraper

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"

	"github.com/jszwec/csvutil"

	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/metrics"
	"github.com/gewnthar/cragbook/models"
)

var feedHeader = mustHeader()

func mustHeader() []string {
	h, err := csvutil.Header(models.FeedRow{}, "csv")
	if err != nil {
		panic(err)
	}
	return h
}

// CSVSource downloads the CSV export of each published tab.
type CSVSource struct {
	client *http.Client
	urls   map[string]string // tab name -> export URL
}

func NewCSVSource(client *http.Client, urls map[string]string) *CSVSource {
	return &CSVSource{client: client, urls: urls}
}

func (s *CSVSource) FetchAll(ctx context.Context) (map[string][]models.FeedRow, error) {
	defer metrics.NewTimer().ObserveDurationVec(metrics.FeedFetchDuration, "csv")

	names := make([]string, 0, len(s.urls))
	for name := range s.urls {
		names = append(names, name)
	}
	sort.Strings(names)

	tabs := make(map[string][]models.FeedRow, len(names))
	for _, name := range names {
		rows, err := s.fetchTab(ctx, s.urls[name])
		if err != nil {
			return nil, fmt.Errorf("failed to fetch tab %q: %w", name, err)
		}
		tabs[name] = rows
	}

	log.WithComponent("scraper").Debug().Int("tabs", len(tabs)).Msg("Fetched CSV feed")
	return tabs, nil
}

func (s *CSVSource) fetchTab(ctx context.Context, url string) ([]models.FeedRow, error) {
	body, err := openURL(ctx, s.client, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return ParseFeedCSV(body)
}

// ParseFeedCSV decodes a tab export into feed rows. Every line becomes one
// row, header included, so row numbers line up with the spreadsheet.
func ParseFeedCSV(r io.Reader) ([]models.FeedRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	// The header is passed explicitly so the first line is decoded as data.
	dec, err := csvutil.NewDecoder(&paddedReader{r: cr, width: models.FeedRowWidth}, feedHeader...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CSV decoder for feed: %w", err)
	}

	rows := []models.FeedRow{}
	for {
		var row models.FeedRow
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode feed CSV line %d: %w", len(rows)+1, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// paddedReader pads short records and trims long ones to a fixed width.
// Sheets drops trailing empty cells from exported lines.
type paddedReader struct {
	r     *csv.Reader
	width int
}

func (p *paddedReader) Read() ([]string, error) {
	rec, err := p.r.Read()
	if err != nil {
		return nil, err
	}
	if len(rec) >= p.width {
		return rec[:p.width], nil
	}
	padded := make([]string, p.width)
	copy(padded, rec)
	return padded, nil
}
