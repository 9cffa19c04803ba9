package canvas

// Direction bitmask for line glyphs. A glyph's mask records which of the
// four neighboring cells it connects to.
const (
	dirUp = 1 << iota
	dirDown
	dirLeft
	dirRight
)

// glyphMask maps every line-capable glyph to its connection mask. Rounded
// corners share masks with their square counterparts so merging a line
// into a rounded box border produces the right junction.
var glyphMask = map[rune]int{
	'─': dirLeft | dirRight,
	'│': dirUp | dirDown,
	'┌': dirDown | dirRight,
	'┐': dirDown | dirLeft,
	'└': dirUp | dirRight,
	'┘': dirUp | dirLeft,
	'├': dirUp | dirDown | dirRight,
	'┤': dirUp | dirDown | dirLeft,
	'┬': dirDown | dirLeft | dirRight,
	'┴': dirUp | dirLeft | dirRight,
	'┼': dirUp | dirDown | dirLeft | dirRight,
	'╭': dirDown | dirRight,
	'╮': dirDown | dirLeft,
	'╰': dirUp | dirRight,
	'╯': dirUp | dirLeft,
}

// maskGlyph is the canonical glyph for each connection mask. Unions always
// resolve to square junctions, even when one input was a rounded corner.
var maskGlyph = map[int]rune{
	dirLeft | dirRight:                   '─',
	dirUp | dirDown:                      '│',
	dirDown | dirRight:                   '┌',
	dirDown | dirLeft:                    '┐',
	dirUp | dirRight:                     '└',
	dirUp | dirLeft:                      '┘',
	dirUp | dirDown | dirRight:           '├',
	dirUp | dirDown | dirLeft:            '┤',
	dirDown | dirLeft | dirRight:         '┬',
	dirUp | dirLeft | dirRight:           '┴',
	dirUp | dirDown | dirLeft | dirRight: '┼',
}

// IsLineGlyph reports whether ch participates in line merging.
func IsLineGlyph(ch rune) bool {
	_, ok := glyphMask[ch]
	return ok
}

// Merge resolves two overlapping line glyphs into the junction that
// connects in every direction either of them does. The operation is the
// union of the direction masks, so it is commutative and idempotent:
// Merge(a, b) == Merge(b, a) and Merge(a, a) == canonical(a).
//
// If either glyph is not line-capable, the existing glyph is returned
// unchanged.
func Merge(existing, incoming rune) rune {
	em, ok := glyphMask[existing]
	if !ok {
		return existing
	}
	im, ok := glyphMask[incoming]
	if !ok {
		return existing
	}
	return maskGlyph[em|im]
}
