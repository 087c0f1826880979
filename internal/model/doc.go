// Package model defines the data structures shared by the frenscrape packages.
//
// This package contains the following main types:
//   - Link: a raw (url, label) pair extracted from an anchor element
//   - Row: one output record correlating a user with one of their links
//   - AssetRef: a stylesheet or image referenced by a page, ready to download
//   - PageVisit: what the walker learned about a single fetched page
//
// The types carry no behaviour beyond small derivations (screen names,
// CSV records) so that the crawler, report and database packages can share
// them without import cycles.
package model
