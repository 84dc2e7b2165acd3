package jliff

// PlaceholderStyle selects the textual shape of placeholder tokens emitted
// for inline codes. Only one style exists today but the type keeps the door
// open the way opts.placeholder_style does on the legacy side of this
// conversion.
type PlaceholderStyle int

const (
	// PlaceholderStyleDoubleCurly renders tokens as {{elem:id}} /
	// {{elem:id:suffix}}.
	PlaceholderStyleDoubleCurly PlaceholderStyle = iota
)

func (s PlaceholderStyle) String() string {
	switch s {
	case PlaceholderStyleDoubleCurly:
		return "double_curly"
	default:
		return "double_curly"
	}
}

// ConversionOptions configures one XLIFF→JLIFF conversion run.
type ConversionOptions struct {
	// ProjectName and ProjectID are stamped onto every emitted JLIFF document.
	ProjectName string
	ProjectID   string
	// User identifies the operator the conversion is attributed to.
	User string
	// PlaceholderStyle controls inline-code token rendering.
	PlaceholderStyle PlaceholderStyle
	// KeepInlineInSource suppresses placeholder emission into the text for
	// inline codes whose original markup should remain; the placeholder is
	// still recorded in the tag map. With the flag set, cp renders its literal
	// character when the code point is printable (or newline/tab); without
	// it, cp emits its {{cp:hex}} token like any other inline code.
	KeepInlineInSource bool
}

// DefaultOptions returns the zero-value-safe baseline: double-curly
// placeholders, inline codes replaced rather than kept.
func DefaultOptions() ConversionOptions {
	return ConversionOptions{PlaceholderStyle: PlaceholderStyleDoubleCurly}
}
