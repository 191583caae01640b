package xmlstream

// Config is the immutable knob bundle of spec.md §4.G, consumed by the
// entity table, namespace stack, and pull parser. Grounded directly on
// teacher's config/Option/defaultConfig() shape (xml/xml.go) -- same
// functional-options construction, fields renamed/expanded to this
// spec's table.
type Config struct {
	TrimWhitespace              bool
	WhitespaceToCharacters      bool
	CDataToCharacters           bool
	CoalesceCharacters          bool
	IgnoreComments              bool
	IgnoreRootLevelWhitespace   bool
	ReplaceUnknownEntityRefs    bool
	MaxEntityExpansionDepth     int
	MaxEntityExpansionLength    int
	ExtraEntities               map[string]string
	AllowLegacyCharsets         bool
}

// Option configures a Config, following teacher's functional-options
// pattern (xml/xml.go's `type Option func(*config)`).
type Option func(*Config)

// DefaultConfig returns the defaults enumerated in spec.md §4.G's table.
func DefaultConfig() *Config {
	return &Config{
		TrimWhitespace:            false,
		WhitespaceToCharacters:    false,
		CDataToCharacters:         false,
		CoalesceCharacters:        true,
		IgnoreComments:            false,
		IgnoreRootLevelWhitespace: true,
		ReplaceUnknownEntityRefs:  false,
		MaxEntityExpansionDepth:   10,
		MaxEntityExpansionLength:  1 << 20, // 1,048,576
		ExtraEntities:             nil,
		AllowLegacyCharsets:       false,
	}
}

// NewConfig applies opts over DefaultConfig, the same way teacher's
// MapXML/NewStream apply ...Option over defaultConfig().
func NewConfig(opts ...Option) *Config {
	c := DefaultConfig()
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func WithTrimWhitespace() Option {
	return func(c *Config) { c.TrimWhitespace = true }
}

func WithWhitespaceToCharacters() Option {
	return func(c *Config) { c.WhitespaceToCharacters = true }
}

func WithCDataToCharacters() Option {
	return func(c *Config) { c.CDataToCharacters = true }
}

// WithoutCoalesceCharacters disables the coalesce_characters default.
func WithoutCoalesceCharacters() Option {
	return func(c *Config) { c.CoalesceCharacters = false }
}

func WithIgnoreComments() Option {
	return func(c *Config) { c.IgnoreComments = true }
}

// WithRootLevelWhitespace disables the ignore_root_level_whitespace default.
func WithRootLevelWhitespace() Option {
	return func(c *Config) { c.IgnoreRootLevelWhitespace = false }
}

func WithReplaceUnknownEntityReferences() Option {
	return func(c *Config) { c.ReplaceUnknownEntityRefs = true }
}

func WithMaxEntityExpansionDepth(n int) Option {
	return func(c *Config) { c.MaxEntityExpansionDepth = n }
}

func WithMaxEntityExpansionLength(n int) Option {
	return func(c *Config) { c.MaxEntityExpansionLength = n }
}

// WithExtraEntities pre-seeds general entities beyond the five builtins,
// per spec.md §4.G's extra_entities.
func WithExtraEntities(entities map[string]string) Option {
	return func(c *Config) {
		if c.ExtraEntities == nil {
			c.ExtraEntities = make(map[string]string, len(entities))
		}
		for k, v := range entities {
			c.ExtraEntities[k] = v
		}
	}
}

// WithLegacyCharsets allows a declared ISO-8859-1/Windows-1252 encoding to
// be transcoded rather than rejected (spec.md §4.B "optionally
// Latin-1/ASCII"), grounded on teacher's EnableLegacyCharsets
// (xml/xml.go).
func WithLegacyCharsets() Option {
	return func(c *Config) { c.AllowLegacyCharsets = true }
}
