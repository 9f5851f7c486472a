// Package exporter serializes the finished panel and its quality report
// into the output artifacts: a wide CSV, an XLSX workbook, a Markdown
// summary, and a JSON quality report. The engine owns none of these
// formats; writers only ever read the panel.
package exporter
