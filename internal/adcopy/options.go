package adcopy

const (
	// DefaultHeadlineLimit is the platform character cap for one headline.
	DefaultHeadlineLimit = 30
	// DefaultDescriptionLimit is the platform character cap for one description.
	DefaultDescriptionLimit = 90
	// DefaultPathLimit is the platform character cap for one display-URL path segment.
	DefaultPathLimit = 15

	// maxKeywordRunes caps an individual keyword phrase; longer candidates are dropped.
	maxKeywordRunes = 80
	// maxPaths is the platform cap on display-URL path segments per ad.
	maxPaths = 2
)

// Options controls the normalization pass. Limits count runes, not bytes.
type Options struct {
	HeadlineLimit    int
	DescriptionLimit int
	PathLimit        int

	// Minimum compliant assets required; falling short is an error, never
	// padded with filler.
	MinHeadlines    int
	MinDescriptions int

	// Maximum assets kept; extras beyond the cap are discarded in order.
	MaxHeadlines    int
	MaxDescriptions int

	// DisableTruncation rejects over-length candidates instead of shortening
	// them at a word boundary.
	DisableTruncation bool

	// ExactMatchNavigational includes navigational-intent keywords in
	// exact-match expansion. Off by default so brand-navigation terms are
	// not bid on exact.
	ExactMatchNavigational bool
}

// DefaultOptions returns the platform limits for responsive search ads.
func DefaultOptions() Options {
	return Options{
		HeadlineLimit:    DefaultHeadlineLimit,
		DescriptionLimit: DefaultDescriptionLimit,
		PathLimit:        DefaultPathLimit,
		MinHeadlines:     3,
		MinDescriptions:  2,
		MaxHeadlines:     15,
		MaxDescriptions:  4,
	}
}

// withDefaults fills zero-valued fields so a partially populated Options
// behaves like DefaultOptions for the untouched knobs.
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.HeadlineLimit <= 0 {
		o.HeadlineLimit = d.HeadlineLimit
	}
	if o.DescriptionLimit <= 0 {
		o.DescriptionLimit = d.DescriptionLimit
	}
	if o.PathLimit <= 0 {
		o.PathLimit = d.PathLimit
	}
	if o.MinHeadlines <= 0 {
		o.MinHeadlines = d.MinHeadlines
	}
	if o.MinDescriptions <= 0 {
		o.MinDescriptions = d.MinDescriptions
	}
	if o.MaxHeadlines <= 0 {
		o.MaxHeadlines = d.MaxHeadlines
	}
	if o.MaxDescriptions <= 0 {
		o.MaxDescriptions = d.MaxDescriptions
	}
	return o
}
