package model

// PageKind distinguishes the two levels of the walk.
type PageKind string

const (
	// PageIndex is the site's entry page listing user profile links.
	PageIndex PageKind = "index"

	// PageProfile is a per-user page listing titled links.
	PageProfile PageKind = "profile"
)

// String returns the kind as a string.
func (k PageKind) String() string {
	return string(k)
}

// PageVisit records what the walker learned about one fetched page.
// It is handed to recorders (run history, summary) and never affects the
// rows that are emitted.
type PageVisit struct {
	// Kind is the level of the walk the page belongs to.
	Kind PageKind `json:"kind"`

	// URL is the absolute URL that was fetched.
	URL string `json:"url"`

	// ScreenName and DisplayName identify the user; empty for the index page.
	ScreenName  string `json:"screen_name,omitempty"`
	DisplayName string `json:"display_name,omitempty"`

	// Heading is the trimmed main heading, if the page has one.
	Heading string `json:"heading,omitempty"`

	// HasHeading reports whether a main heading was found at all.
	HasHeading bool `json:"has_heading"`

	// SnapshotDir is the directory the page was mirrored into.
	// Empty when snapshotting is disabled.
	SnapshotDir string `json:"snapshot_dir,omitempty"`

	// Assets lists the assets written next to the page's index.html.
	Assets []AssetRef `json:"assets,omitempty"`

	// LinkCount is the number of links extracted from the page.
	LinkCount int `json:"link_count"`
}

// HeadingMatches reports whether the page heading agrees with the display
// name the index page used for this user. Pages without a heading, and the
// index page, always match.
func (p *PageVisit) HeadingMatches() bool {
	if p.Kind != PageProfile || !p.HasHeading {
		return true
	}
	return p.Heading == p.DisplayName
}

// IsSnapshotted reports whether the page was mirrored to disk.
func (p *PageVisit) IsSnapshotted() bool {
	return p.SnapshotDir != ""
}
