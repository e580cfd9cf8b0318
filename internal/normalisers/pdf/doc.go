// Package pdf extracts text from label PDFs one physical page at a time.
//
// Extraction uses a pure Go PDF reader. When the reader cannot parse a
// file and pdftotext is installed, pdftotext output split on form feeds
// is used instead.
package pdf
