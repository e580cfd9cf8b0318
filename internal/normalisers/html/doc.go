// Package html resolves label PDFs linked from HTML landing pages.
// Search results often point at a product page rather than the label
// itself; the resolver fetches the page and collects anchors that lead
// to PDF files.
package html
