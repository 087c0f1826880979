package crawler

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/nao1215/frenscrape/internal/model"
)

// Selectors for the fixed page layout, grouped by the region they read.
const (
	// Index page: top-level anchors, one per user.
	selectorUserLinks = "body > a"

	// Profile page: anchors, portrait and heading inside <main>.
	selectorTitleLinks   = "body > main > a"
	selectorProfileImage = "body > main > img"
	selectorHeading      = "body > main > h1"

	// Shared chrome: stylesheet in <head>, banner in <header>.
	selectorStylesheet = "head > link[rel='stylesheet']"
	selectorBanner     = "body > header > img"
)

// assetQuery describes where an asset reference lives in the page.
type assetQuery struct {
	kind     model.AssetKind
	selector string
	attr     string
}

// assetQueries lists the mirrored assets in download order.
var assetQueries = [...]assetQuery{
	{kind: model.AssetStylesheet, selector: selectorStylesheet, attr: "href"},
	{kind: model.AssetBanner, selector: selectorBanner, attr: "src"},
	{kind: model.AssetProfileImage, selector: selectorProfileImage, attr: "src"},
}

// Document is a parsed HTML page.
type Document struct {
	doc *goquery.Document
}

// ParseDocument parses HTML text. The HTML5 parser recovers from malformed
// markup, so only a broken reader makes it fail.
func ParseDocument(text string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrInvalidHTML, err)
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// UserLinks returns the index page's user anchors in document order.
func (d *Document) UserLinks() ([]model.Link, error) {
	return d.links(selectorUserLinks)
}

// TitleLinks returns the profile page's titled anchors in document order.
func (d *Document) TitleLinks() ([]model.Link, error) {
	return d.links(selectorTitleLinks)
}

func (d *Document) links(selector string) ([]model.Link, error) {
	var (
		links []model.Link
		err   error
	)
	d.doc.Find(selector).EachWithBreak(func(i int, s *goquery.Selection) bool {
		href, ok := s.Attr("href")
		if !ok {
			err = fmt.Errorf("%w: anchor %d matching %q has no href", model.ErrInvalidHTML, i, selector)
			return false
		}
		label, htmlErr := s.Html()
		if htmlErr != nil {
			err = fmt.Errorf("%w: rendering anchor %d: %v", model.ErrInvalidHTML, i, htmlErr)
			return false
		}
		links = append(links, model.Link{URL: href, Label: label})
		return true
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// Heading returns the trimmed inner markup of the profile heading.
// The second result is false when the page has no heading.
func (d *Document) Heading() (string, bool, error) {
	sel := d.doc.Find(selectorHeading).First()
	if sel.Length() == 0 {
		return "", false, nil
	}
	inner, err := sel.Html()
	if err != nil {
		return "", false, fmt.Errorf("%w: rendering heading: %v", model.ErrInvalidHTML, err)
	}
	return strings.TrimSpace(inner), true, nil
}

// Asset looks up the first element for the given asset kind and resolves
// its reference against pageURL. It returns nil when the page has no such
// element.
func (d *Document) Asset(kind model.AssetKind, pageURL *url.URL) (*model.AssetRef, error) {
	for _, q := range assetQueries {
		if q.kind == kind {
			return d.asset(q, pageURL)
		}
	}
	return nil, fmt.Errorf("unknown asset kind %q", kind)
}

// Assets returns every asset the page references, in download order.
func (d *Document) Assets(pageURL *url.URL) ([]model.AssetRef, error) {
	var refs []model.AssetRef
	for _, q := range assetQueries {
		ref, err := d.asset(q, pageURL)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			refs = append(refs, *ref)
		}
	}
	return refs, nil
}

func (d *Document) asset(q assetQuery, pageURL *url.URL) (*model.AssetRef, error) {
	sel := d.doc.Find(q.selector).First()
	if sel.Length() == 0 {
		return nil, nil
	}

	raw, ok := sel.Attr(q.attr)
	if !ok {
		return nil, fmt.Errorf("%w: %s element %q has no %s", model.ErrInvalidHTML, q.kind, q.selector, q.attr)
	}

	filename := raw[strings.LastIndex(raw, "/")+1:]
	if filename == "" {
		return nil, fmt.Errorf("%w: %s reference %q has no file name", model.ErrInvalidHTML, q.kind, raw)
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s reference %q: %v", ErrURL, q.kind, raw, err)
	}

	return &model.AssetRef{
		Kind:      q.kind,
		SourceURL: pageURL.ResolveReference(ref),
		Filename:  filename,
	}, nil
}
