package model

import "net/url"

// AssetKind identifies which of the fixed page assets a reference points to.
type AssetKind string

// Asset kinds, in the order they are mirrored.
const (
	AssetStylesheet   AssetKind = "stylesheet"
	AssetBanner       AssetKind = "banner"
	AssetProfileImage AssetKind = "profile_image"
)

// String returns the kind as a string.
func (k AssetKind) String() string {
	return string(k)
}

// AssetRef is a stylesheet or image referenced by a page.
type AssetRef struct {
	// Kind says which fixed DOM position the reference came from.
	Kind AssetKind `json:"kind"`

	// SourceURL is the reference resolved against the URL of the page that
	// contains it (not the site base URL).
	SourceURL *url.URL `json:"-"`

	// Filename is the last "/" segment of the raw reference, unmodified.
	// Query strings are kept: "/img/banner.png?x=1" gives "banner.png?x=1".
	Filename string `json:"filename"`
}
