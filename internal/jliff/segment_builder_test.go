package jliff

import (
	"encoding/json"
	"encoding/xml"
	"testing"
)

func TestSegmentBuilderAutoIDsAreSequential(t *testing.T) {
	b := NewSegmentBuilder(map[string]string{}, PlaceholderStyleDoubleCurly, false)
	b.HandleStart("ph", nil)
	b.HandleStart("ph", nil)
	if got, want := b.Text(), "{{ph:ph_auto1}}{{ph:ph_auto2}}"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestSegmentBuilderEcUsesStartRef(t *testing.T) {
	b := NewSegmentBuilder(map[string]string{}, PlaceholderStyleDoubleCurly, false)
	b.HandleStart("ec", []xml.Attr{{Name: xml.Name{Local: "startRef"}, Value: "b1"}})
	if got, want := b.Text(), "{{ec:b1}}"; got != want {
		t.Errorf("Text() = %q, want %q", got, want)
	}
}

func TestSegmentBuilderUnmatchedPcEndIsIgnored(t *testing.T) {
	b := NewSegmentBuilder(map[string]string{}, PlaceholderStyleDoubleCurly, false)
	b.HandleEnd("pc")
	if b.Text() != "" {
		t.Errorf("Text() = %q, want empty", b.Text())
	}
	if len(b.Placeholders) != 0 {
		t.Errorf("expected no placeholders recorded, got %d", len(b.Placeholders))
	}
}

func TestSegmentBuilderAttrsSortedOnMarshal(t *testing.T) {
	b := NewSegmentBuilder(map[string]string{}, PlaceholderStyleDoubleCurly, false)
	b.HandleStart("ph", []xml.Attr{
		{Name: xml.Name{Local: "id"}, Value: "p1"},
		{Name: xml.Name{Local: "zeta"}, Value: "z"},
		{Name: xml.Name{Local: "alpha"}, Value: "a"},
	})
	if len(b.Placeholders) != 1 {
		t.Fatalf("expected 1 placeholder, got %d", len(b.Placeholders))
	}
	attrs := b.Placeholders[0].Attrs
	if len(attrs) != 3 {
		t.Fatalf("expected 3 attrs, got %d", len(attrs))
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if got, want := string(data), `{"alpha":"a","id":"p1","zeta":"z"}`; got != want {
		t.Errorf("marshalled attrs = %s, want %s", got, want)
	}
}
