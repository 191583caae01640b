package xmlemit

// WithPrettyPrint turns on newline + indentation before each markup event,
// grounded on teacher's prettyPrint option (xml/xml.go's WithPrettyPrint,
// consumed by encodeNode in xml/streaming_encoder.go: `indent := "\n" +
// strings.Repeat("  ", depth)`). Text content is never indented by itself,
// only the markup surrounding it. An end tag that follows text still gets
// its newline and indentation, so that whitespace becomes part of the
// element's text when the output is parsed again ("<root>value\n</root>").
func WithPrettyPrint() Option {
	return func(c *Config) { c.PrettyPrint = true }
}

// WithIndent overrides the two-space default unit WithPrettyPrint uses.
func WithIndent(unit string) Option {
	return func(c *Config) { c.IndentString = unit }
}
