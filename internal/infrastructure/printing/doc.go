// Package printing renders order invoices: an html/template document with
// locale-aware money formatting, converted to PDF by headless Chrome.
package printing
