// Package pagination follows the cursor carried by the Link response header.
package pagination

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/lastseal/micro-shopify/internal/constants"
)

// Link relations used by cursor pagination.
const (
	RelNext     = "next"
	RelPrevious = "previous"
)

var linkPattern = regexp.MustCompile(`<([^>]*)>\s*;\s*rel="?([A-Za-z]+)"?`)

// ParseLinkHeader maps each relation of a Link header to its page_info
// cursor. Entries without a page_info query parameter are skipped.
func ParseLinkHeader(header string) map[string]string {
	cursors := make(map[string]string)

	for _, match := range linkPattern.FindAllStringSubmatch(header, -1) {
		cursor := pageInfo(match[1])
		if cursor == "" {
			continue
		}

		cursors[strings.ToLower(match[2])] = cursor
	}

	return cursors
}

// NextCursor returns the cursor of the next page, or "" on the last page.
func NextCursor(header string) string {
	return ParseLinkHeader(header)[RelNext]
}

func pageInfo(rawURL string) string {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}

	return parsed.Query().Get(constants.ParamPageInfo)
}
