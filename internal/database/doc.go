// Package database keeps the run history of frenscrape in SQLite.
//
// Each run gets a row in runs; the pages it fetched and the rows it
// emitted are stored alongside so a past run can be listed and its output
// replayed without touching the network. The database is a single file,
// frenscrape.db, in the history directory.
package database
