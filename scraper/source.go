// scraper/source.go
package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/api/option"

	"github.com/gewnthar/cragbook/config"
	"github.com/gewnthar/cragbook/models"
)

// ErrFeedPermission means the feed exists but the service account or API key
// may not read it. Staff fix this by sharing the sheet.
var ErrFeedPermission = errors.New("route feed is not shared with the sync service")

// Source reads every tab of the staff route spreadsheet. The result maps tab
// name to its rows in sheet order, header rows included. Cell text is raw;
// trimming and normalisation happen in the parser.
type Source interface {
	FetchAll(ctx context.Context) (map[string][]models.FeedRow, error)
}

const defaultFetchTimeout = 30 * time.Second

// NewSource builds the feed reader selected by cfg.Kind.
func NewSource(ctx context.Context, cfg config.FeedConfig) (Source, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	client := &http.Client{Timeout: timeout}

	switch cfg.Kind {
	case config.FeedKindSheets:
		var opts []option.ClientOption
		switch {
		case cfg.CredentialsFile != "":
			opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
		case cfg.APIKey != "":
			opts = append(opts, option.WithAPIKey(cfg.APIKey))
		}
		return NewSheetsSource(ctx, cfg.SpreadsheetID, opts...)
	case config.FeedKindCSV:
		return NewCSVSource(client, cfg.CSVURLs), nil
	case config.FeedKindHTML:
		return NewHTMLSource(client, cfg.HTMLURL), nil
	default:
		return nil, fmt.Errorf("unknown feed kind %q", cfg.Kind)
	}
}
