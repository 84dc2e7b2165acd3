package jliff

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/wegentic/translator-core/internal/model"
)

// pcEntry is a stack frame tracking one open <pc> paired code, so its
// closing tag can be matched to the id its opening tag generated.
type pcEntry struct {
	placeholderID string
	tagID         *string
}

// SegmentBuilder accumulates translatable text for one <source> or <target>
// container, converting inline codes (ph, pc, sc, ec, cp) into placeholder
// tokens and recording a TagInstance per occurrence so the original markup
// can later be reconstructed from the tag map.
type SegmentBuilder struct {
	text         strings.Builder
	Placeholders []model.TagInstance

	originalData map[string]string
	style        PlaceholderStyle
	keepInline   bool
	generated    int
	pcStack      []pcEntry
}

// NewSegmentBuilder seeds a builder with the parent unit's original-data
// bucket, used to resolve dataRef/id lookups on inline codes.
func NewSegmentBuilder(originalData map[string]string, style PlaceholderStyle, keepInline bool) *SegmentBuilder {
	return &SegmentBuilder{originalData: originalData, style: style, keepInline: keepInline}
}

// PushText appends a run of character data (text or CDATA) verbatim.
func (b *SegmentBuilder) PushText(s string) {
	b.text.WriteString(s)
}

// Text returns the accumulated text with placeholders substituted.
func (b *SegmentBuilder) Text() string {
	return b.text.String()
}

// HandleStart processes the opening tag of a recognized inline code. For a
// self-closing element (e.g. <ph id="1"/>) encoding/xml delivers a
// StartElement immediately followed by an EndElement with nothing between
// them, so HandleStart alone is sufficient for every element except pc,
// whose matching end is handled separately by HandleEnd.
func (b *SegmentBuilder) HandleStart(name string, attrs []xml.Attr) {
	m := attrMap(attrs)
	switch name {
	case "pc":
		id := m["id"]
		startPH, effectiveID := b.composePlaceholder(name, id, strPtr("start"))
		b.recordPlaceholder(startPH, name, id, m)
		if !b.keepInline {
			b.text.WriteString(startPH)
		}
		b.pcStack = append(b.pcStack, pcEntry{placeholderID: effectiveID, tagID: id})
	case "ec":
		id := m["startRef"]
		if id == nil {
			id = m["id"]
		}
		ph, _ := b.composePlaceholder(name, id, nil)
		b.recordPlaceholder(ph, name, id, m)
		if !b.keepInline {
			b.text.WriteString(ph)
		}
	case "cp":
		token, ch, canRenderChar := b.composeCPToken(m)
		b.recordPlaceholder(token, name, nil, m)
		if b.keepInline && canRenderChar {
			b.text.WriteRune(ch)
		} else {
			b.text.WriteString(token)
		}
	default:
		// ph, sc, and any other element recognized as inline code.
		id := m["id"]
		ph, _ := b.composePlaceholder(name, id, nil)
		b.recordPlaceholder(ph, name, id, m)
		if !b.keepInline {
			b.text.WriteString(ph)
		}
	}
}

// HandleEnd matches a </pc> closing tag to its stack entry and emits the end
// placeholder. Every other inline code is fully handled by HandleStart, so
// this is a no-op for them.
func (b *SegmentBuilder) HandleEnd(name string) {
	if name != "pc" || len(b.pcStack) == 0 {
		return
	}
	entry := b.pcStack[len(b.pcStack)-1]
	b.pcStack = b.pcStack[:len(b.pcStack)-1]

	ph, _ := b.composePlaceholder(name, &entry.placeholderID, strPtr("end"))
	attrs := map[string]*string{}
	if entry.tagID != nil {
		attrs["id"] = entry.tagID
	}
	b.recordPlaceholder(ph, name, entry.tagID, attrs)
	if !b.keepInline {
		b.text.WriteString(ph)
	}
}

// composePlaceholder builds the token for one inline occurrence, generating
// an id when the element carried none. Returns the token and the id that was
// actually used, so pc's opening tag can hand it down to its closing tag.
func (b *SegmentBuilder) composePlaceholder(elem string, id *string, suffix *string) (string, string) {
	effectiveID := ""
	if id != nil {
		effectiveID = *id
	} else {
		effectiveID = b.generateID(elem)
	}
	switch b.style {
	case PlaceholderStyleDoubleCurly:
		fallthrough
	default:
		if suffix != nil {
			return fmt.Sprintf("{{%s:%s:%s}}", elem, effectiveID, *suffix), effectiveID
		}
		return fmt.Sprintf("{{%s:%s}}", elem, effectiveID), effectiveID
	}
}

// composeCPToken decodes a cp element's hex code point and always returns
// the {{cp:id}} token used as its TagInstance.Placeholder identifier, plus
// whether the decoded rune is printable (or newline/tab) and so can be
// rendered literally by the caller when keepInline is set.
func (b *SegmentBuilder) composeCPToken(attrs map[string]*string) (string, rune, bool) {
	hex := attrs["hex"]
	id := ""
	if hex != nil {
		id = *hex
	} else {
		id = b.generateID("cp")
	}
	token := fmt.Sprintf("{{cp:%s}}", id)

	if hex == nil {
		return token, 0, false
	}
	code, err := strconv.ParseUint(*hex, 16, 32)
	if err != nil {
		return token, 0, false
	}
	ch := rune(code)
	if !utf8.ValidRune(ch) {
		return token, 0, false
	}
	if unicode.IsControl(ch) && ch != '\n' && ch != '\t' {
		return token, 0, false
	}
	return token, ch, true
}

// recordPlaceholder appends a TagInstance capturing everything needed to
// reconstruct the original inline element from its placeholder.
func (b *SegmentBuilder) recordPlaceholder(placeholder, elem string, id *string, attrs map[string]*string) {
	ordered := make(map[string]*string, len(attrs))
	for k, v := range attrs {
		ordered[k] = v
	}
	b.Placeholders = append(b.Placeholders, model.TagInstance{
		Placeholder:  placeholder,
		Elem:         elem,
		ID:           id,
		Attrs:        ordered,
		OriginalData: resolveOriginalData(b.originalData, attrs, id),
	})
}

// generateID assigns the next deterministic auto id for an unnamed element,
// scoped to this builder.
func (b *SegmentBuilder) generateID(elem string) string {
	b.generated++
	return fmt.Sprintf("%s_auto%d", elem, b.generated)
}

// resolveOriginalData looks up an inline code's original content: first via
// its dataRef attribute, falling back to its own id.
func resolveOriginalData(store map[string]string, attrs map[string]*string, id *string) *string {
	if ref := attrs["dataRef"]; ref != nil {
		if v, ok := store[*ref]; ok {
			return &v
		}
	}
	if id != nil {
		if v, ok := store[*id]; ok {
			return &v
		}
	}
	return nil
}

func attrMap(attrs []xml.Attr) map[string]*string {
	m := make(map[string]*string, len(attrs))
	for _, a := range attrs {
		v := a.Value
		m[a.Name.Local] = &v
	}
	return m
}

func strPtr(s string) *string { return &s }

func isInlineCode(name string) bool {
	switch name {
	case "ph", "pc", "sc", "ec", "cp":
		return true
	default:
		return false
	}
}
