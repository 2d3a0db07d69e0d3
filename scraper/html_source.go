// scraper/html_source.go
package scraper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/metrics"
	"github.com/gewnthar/cragbook/models"
)

// HTMLSource scrapes the "publish to web" page of the spreadsheet.
type HTMLSource struct {
	client *http.Client
	url    string
}

func NewHTMLSource(client *http.Client, pageURL string) *HTMLSource {
	return &HTMLSource{client: client, url: pageURL}
}

func (s *HTMLSource) FetchAll(ctx context.Context) (map[string][]models.FeedRow, error) {
	defer metrics.NewTimer().ObserveDurationVec(metrics.FeedFetchDuration, "html")

	body, err := openURL(ctx, s.client, s.url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	tabs, err := ParseFeedHTML(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", s.url, err)
	}
	log.WithComponent("scraper").Debug().Int("tabs", len(tabs)).Str("url", s.url).Msg("Fetched published feed page")
	return tabs, nil
}

// ParseFeedHTML reads a published spreadsheet page. Each grid table is one
// tab, named after the matching entry of the sheet menu. Row header cells
// and freeze bars are skipped.
func ParseFeedHTML(r io.Reader) (map[string][]models.FeedRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	var names []string
	doc.Find("#sheet-menu li").Each(func(_ int, li *goquery.Selection) {
		names = append(names, strings.TrimSpace(li.Text()))
	})

	tabs := make(map[string][]models.FeedRow)
	doc.Find("table").Each(func(i int, table *goquery.Selection) {
		name := fmt.Sprintf("Sheet%d", i+1)
		if i < len(names) && names[i] != "" {
			name = names[i]
		}

		rows := []models.FeedRow{}
		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			tds := tr.Find("td").Not(".freezebar-cell")
			if tds.Length() == 0 {
				return
			}
			cells := make([]string, 0, tds.Length())
			tds.Each(func(_ int, td *goquery.Selection) {
				cells = append(cells, td.Text())
			})
			rows = append(rows, models.FeedRowFromCells(cells))
		})
		tabs[name] = rows
	})

	if len(tabs) == 0 {
		return nil, fmt.Errorf("no sheet tables found on page")
	}
	return tabs, nil
}
