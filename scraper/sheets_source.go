// scraper/sheets_source.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/gewnthar/cragbook/log"
	"github.com/gewnthar/cragbook/metrics"
	"github.com/gewnthar/cragbook/models"
)

// SheetsSource reads the spreadsheet through the Sheets v4 API.
type SheetsSource struct {
	svc           *sheets.Service
	spreadsheetID string
}

// NewSheetsSource creates the API client. opts carry the credentials; an
// API key is enough for a sheet shared with "anyone with the link".
func NewSheetsSource(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*SheetsSource, error) {
	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets client: %w", err)
	}
	return &SheetsSource{svc: svc, spreadsheetID: spreadsheetID}, nil
}

func (s *SheetsSource) FetchAll(ctx context.Context) (map[string][]models.FeedRow, error) {
	defer metrics.NewTimer().ObserveDurationVec(metrics.FeedFetchDuration, "sheets")

	meta, err := s.svc.Spreadsheets.Get(s.spreadsheetID).
		Fields(googleapi.Field("sheets.properties.title")).
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapSheetsError("failed to list spreadsheet tabs", err)
	}

	titles := make([]string, 0, len(meta.Sheets))
	ranges := make([]string, 0, len(meta.Sheets))
	for _, sh := range meta.Sheets {
		if sh.Properties == nil {
			continue
		}
		titles = append(titles, sh.Properties.Title)
		ranges = append(ranges, quoteSheetTitle(sh.Properties.Title))
	}
	tabs := make(map[string][]models.FeedRow, len(titles))
	if len(titles) == 0 {
		return tabs, nil
	}

	resp, err := s.svc.Spreadsheets.Values.BatchGet(s.spreadsheetID).
		Ranges(ranges...).
		MajorDimension("ROWS").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, mapSheetsError("failed to read spreadsheet values", err)
	}
	if len(resp.ValueRanges) != len(titles) {
		return nil, fmt.Errorf("sheets returned %d ranges for %d tabs", len(resp.ValueRanges), len(titles))
	}

	for i, vr := range resp.ValueRanges {
		rows := make([]models.FeedRow, 0, len(vr.Values))
		for _, values := range vr.Values {
			cells := make([]string, len(values))
			for j, v := range values {
				cells[j] = fmt.Sprint(v)
			}
			rows = append(rows, models.FeedRowFromCells(cells))
		}
		tabs[titles[i]] = rows
	}

	log.WithComponent("scraper").Debug().
		Str("spreadsheet_id", s.spreadsheetID).
		Int("tabs", len(tabs)).
		Msg("Fetched spreadsheet")
	return tabs, nil
}

// A1 notation needs sheet titles quoted, with embedded quotes doubled.
func quoteSheetTitle(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func mapSheetsError(msg string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && (gerr.Code == http.StatusUnauthorized || gerr.Code == http.StatusForbidden) {
		return fmt.Errorf("%s: %w (%s)", msg, ErrFeedPermission, gerr.Message)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
