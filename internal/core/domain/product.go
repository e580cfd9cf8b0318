package domain

import "strings"

// trademarkReplacer strips registration glyphs that labels and users
// attach to brand names inconsistently.
var trademarkReplacer = strings.NewReplacer("®", "", "™", "", "©", "")

// ProductQuery is a user-supplied product name plus an optional
// active-ingredient hint. It lives for one request.
type ProductQuery struct {
	// Name is the product name as typed, e.g. "Actagro 10% Boron".
	Name string

	// ActiveIngredient is an optional hint such as "glyphosate".
	ActiveIngredient string
}

// NewProductQuery trims the inputs and rejects an empty product name.
func NewProductQuery(name, ingredient string) (ProductQuery, error) {
	q := ProductQuery{
		Name:             strings.TrimSpace(name),
		ActiveIngredient: strings.TrimSpace(ingredient),
	}
	if q.CleanName() == "" {
		return ProductQuery{}, ErrInvalidInput
	}
	return q, nil
}

// CleanName returns the name without trademark glyphs and with
// whitespace collapsed. Case is preserved for query building.
func (q ProductQuery) CleanName() string {
	return strings.Join(strings.Fields(trademarkReplacer.Replace(q.Name)), " ")
}

// ScopeKey returns the lower-cased clean name. Every passage indexed for
// this product carries it, and scoped retrieval filters on it.
func (q ProductQuery) ScopeKey() string {
	return ScopeKeyFor(q.Name)
}

// SignificantWords returns the lower-cased tokens of the clean name that
// are longer than two characters.
func (q ProductQuery) SignificantWords() []string {
	var words []string
	for _, w := range strings.Fields(strings.ToLower(q.CleanName())) {
		if len([]rune(w)) > 2 {
			words = append(words, w)
		}
	}
	return words
}

// ScopeKeyFor normalises an arbitrary product name to its scope key.
func ScopeKeyFor(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(trademarkReplacer.Replace(name)), " "))
}
