package model

import (
	"fmt"
	"strings"
)

// Link is an anchor extracted from a page.
// Both fields are kept exactly as they appear in the document; resolution
// against a base URL happens only when the link is followed.
type Link struct {
	// URL is the raw href attribute, possibly relative.
	URL string `json:"url"`

	// Label is the anchor's inner markup.
	Label string `json:"label"`
}

// Row is one output record: a user and one of the titled links on their
// profile page.
type Row struct {
	ScreenName  string `json:"screen_name"`
	DisplayName string `json:"display_name"`
	Title       string `json:"title"`
	URL         string `json:"url"`
}

// Record returns the row's cells in CSV column order.
func (r Row) Record() []string {
	return []string{r.ScreenName, r.DisplayName, r.Title, r.URL}
}

// ScreenName derives a user's screen name from the raw href of their index
// link. Trailing slashes are ignored and the final path segment is used, so
// "/users/alice/" and "/users/alice" both yield "alice".
//
// A root-relative href must name a segment below a parent directory:
// "/users/" points at the listing itself and is rejected.
func ScreenName(rawHref string) (string, error) {
	trimmed := strings.TrimRight(rawHref, "/")
	segments := strings.Split(trimmed, "/")
	name := segments[len(segments)-1]

	if name == "" {
		return "", fmt.Errorf("%w: missing screen name in %q", ErrInvalidHTML, rawHref)
	}
	if strings.HasPrefix(trimmed, "/") && len(segments) < 3 {
		return "", fmt.Errorf("%w: missing screen name in %q", ErrInvalidHTML, rawHref)
	}
	return name, nil
}
