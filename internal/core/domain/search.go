package domain

import (
	"crypto/md5" //nolint:gosec // cache keys, not security
	"encoding/hex"
	"strings"
	"unicode"
)

// URLHashLength is the number of hex digits of MD5(url) kept in a URL hash.
const URLHashLength = 12

// labelArchivePath marks URLs served straight from a label archive,
// e.g. https://www.cdms.net/ldat/ld8CM013.pdf.
const labelArchivePath = "/ldat/"

// CandidateResult is one web search hit returned by a Source.
type CandidateResult struct {
	// Title is the page or document title.
	Title string `json:"title"`

	// URL is the result location.
	URL string `json:"url"`

	// Snippet is the preview text returned by the search service.
	Snippet string `json:"snippet"`

	// Score is the search service relevance score (0-1).
	Score float64 `json:"score"`
}

// IsDirectPDF returns true if the URL points straight at a PDF file or a
// known label-archive path rather than an HTML landing page.
func (c CandidateResult) IsDirectPDF() bool {
	return IsDirectPDFURL(c.URL)
}

// IsDirectPDFURL reports whether a URL ends in .pdf (ignoring query and
// fragment) or contains a label-archive path.
func IsDirectPDFURL(rawURL string) bool {
	u := strings.ToLower(rawURL)
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	return strings.HasSuffix(u, ".pdf") || strings.Contains(u, labelArchivePath)
}

// ChainResult is the outcome of walking the source chain for a product.
// An empty Results slice with a Message is "not found", not an error.
type ChainResult struct {
	// Results are the validated candidates from the satisfying source.
	Results []CandidateResult

	// SourceUsed is the name of the source that yielded results.
	// Empty when nothing was found.
	SourceUsed string

	// SourcesTried lists every source queried, in order.
	SourcesTried []string

	// Answer is the search service's summary answer, if any.
	Answer string

	// Query is the query string sent to the satisfying source.
	Query string

	// Message is a human-readable explanation when nothing was found.
	Message string
}

// Found returns true if the chain produced validated results.
func (r *ChainResult) Found() bool {
	return r != nil && len(r.Results) > 0
}

// CachedPDF is a label PDF stored once on disk, keyed by a hash of its URL.
type CachedPDF struct {
	// Path is the absolute file path.
	Path string `json:"path"`

	// Filename is the base name of Path.
	Filename string `json:"filename"`

	// URL is the original download location.
	URL string `json:"url"`

	// URLHash is the short hash of URL embedded in Filename.
	URLHash string `json:"url_hash"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// Cached is true if the file was already on disk and no network call
	// was made.
	Cached bool `json:"cached"`
}

// URLHash returns the first URLHashLength hex digits of MD5(url).
func URLHash(url string) string {
	sum := md5.Sum([]byte(url)) //nolint:gosec // cache keys, not security
	return hex.EncodeToString(sum[:])[:URLHashLength]
}

// SanitizeName turns a product name into a filename stem: spaces and
// slashes become underscores, commas are dropped, anything other than
// letters, digits, '_' and '-' is removed, and the result is lower-cased.
func SanitizeName(productName string) string {
	s := strings.NewReplacer(" ", "_", ",", "", "/", "_").Replace(productName)

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
			b.WriteRune(r)
		}
	}
	return strings.ToLower(b.String())
}
