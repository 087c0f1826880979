// Package main provides the entry point for the frenscrape CLI.
//
// frenscrape walks a friends directory site: it reads the user list on the
// index page, visits every profile, prints one CSV row per link found on a
// profile and mirrors the pages it saw to a timestamped snapshot directory.
//
// Usage:
//
//	frenscrape [--base URL] [--disable-snapshot] [-v...]
//
// See --help for all available options.
package main

// main is the entry point for frenscrape.
func main() {
	Execute()
}
