package domain

// Default retrieval values.
const (
	// DefaultRetrievalLimit is the number of passages returned per question.
	DefaultRetrievalLimit = 5

	// DefaultScoreThreshold is the minimum similarity for scoped queries.
	DefaultScoreThreshold = 0.3

	// FallbackLimitFactor widens the unscoped fallback query.
	FallbackLimitFactor = 3

	// FallbackThresholdFactor lowers the threshold for the unscoped fallback query.
	FallbackThresholdFactor = 0.8

	// FallbackContentPrefix is how many leading characters of a passage are
	// checked for the product name during fallback re-filtering.
	FallbackContentPrefix = 500
)

// RetrievalOptions configures one retrieval.
type RetrievalOptions struct {
	// Limit is the maximum number of passages (default 5).
	Limit int

	// ScoreThreshold is the minimum similarity (default 0.3).
	ScoreThreshold float64

	// NoThreshold keeps every hit regardless of score. It wins over
	// ScoreThreshold.
	NoThreshold bool
}

// WithDefaults fills unset fields. A zero ScoreThreshold means unset
// unless NoThreshold is set.
func (o RetrievalOptions) WithDefaults() RetrievalOptions {
	if o.Limit <= 0 {
		o.Limit = DefaultRetrievalLimit
	}
	switch {
	case o.NoThreshold:
		o.ScoreThreshold = 0
	case o.ScoreThreshold <= 0:
		o.ScoreThreshold = DefaultScoreThreshold
	}
	return o
}

// TopicBoostGroup is a set of synonyms for a safety-critical label topic.
// When a question mentions one of the Triggers and no selected passage
// contains one of the Keywords, the retriever runs one extra scoped query
// using Augment and promotes passages that contain a keyword.
type TopicBoostGroup struct {
	// Name identifies the group in logs.
	Name string

	// Triggers are question terms that activate the group.
	Triggers []string

	// Keywords are passage terms that satisfy the group.
	Keywords []string

	// Augment is appended to the question for the boost query.
	Augment string
}

// DefaultTopicBoostGroups returns the built-in safety-critical topics.
func DefaultTopicBoostGroups() []TopicBoostGroup {
	return []TopicBoostGroup{
		{
			Name:     "reentry",
			Triggers: []string{"re-entry", "reentry", "rei", "restricted entry", "re-enter", "reenter"},
			Keywords: []string{"re-entry", "reentry", "restricted entry", "rei", "re-enter", "reenter"},
			Augment:  "restricted entry interval REI re-entry hours after application",
		},
		{
			Name:     "preharvest",
			Triggers: []string{"pre-harvest", "preharvest", "phi", "before harvest"},
			Keywords: []string{"pre-harvest", "preharvest", "phi", "before harvest", "days of harvest"},
			Augment:  "pre-harvest interval PHI days before harvest",
		},
		{
			Name:     "ppe",
			Triggers: []string{"ppe", "protective equipment", "protective clothing", "gloves"},
			Keywords: []string{"personal protective equipment", "ppe", "chemical-resistant", "coveralls"},
			Augment:  "personal protective equipment PPE applicators and other handlers must wear",
		},
	}
}
