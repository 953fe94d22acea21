// Package export writes row data to billing-system import files.
package export

import (
	"fmt"
	"strings"
	"time"
)

// Sink writes a full table of rows, header included, to path.
type Sink interface {
	Write(path string, rows [][]string) error
	Ext() string
}

// ByFormat returns the sink for a configured format name.
func ByFormat(format string) (Sink, error) {
	switch strings.ToLower(format) {
	case "csv", "":
		return CSV{}, nil
	case "xlsx":
		return XLSX{}, nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Filename builds the conventional export file name:
// prefix_customertype_unixtime.ext, lowercased with spaces collapsed.
func Filename(prefix, customerType string, sink Sink, now time.Time) string {
	slug := strings.ToLower(strings.ReplaceAll(customerType, " ", "_"))
	return fmt.Sprintf("%s_%s_%d%s", prefix, slug, now.Unix(), sink.Ext())
}
