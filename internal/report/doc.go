// Package report turns walk results into output.
//
// Rows are streamed through RowWriter implementations:
//   - CSVWriter: the default headerless four-column CSV on stdout
//   - JSONLinesWriter: one JSON object per row
//   - MultiWriter: fans a row out to several writers
//
// Summary collects page visits and rows during a run, and MarkdownWriter
// renders it as a Markdown document once the run ends.
package report
