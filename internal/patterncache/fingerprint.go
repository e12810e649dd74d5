package patterncache

// Fingerprint is the composite cache key: pattern text plus
// case-sensitivity. Equality and hashing are on the pair; pattern text is
// compared verbatim, with no normalization (spec.md §3).
type Fingerprint struct {
	Text          string
	CaseSensitive bool
}

// key renders the fingerprint into a string suitable for use as a sync.Map
// key and a singleflight.Group key. A one-byte sensitivity tag prefixes the
// text so "abc"/true and "abc"/false never collide, and so that fingerprints
// whose text happens to contain the tag byte still discriminate correctly
// (the tag is fixed-position, not a separator the text could forge).
func (f Fingerprint) key() string {
	if f.CaseSensitive {
		return "S" + f.Text
	}
	return "I" + f.Text
}
