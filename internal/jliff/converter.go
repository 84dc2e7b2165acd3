// Package jliff is a streaming XLIFF 2.0 to JLIFF converter: a
// namespace-aware pull parser over encoding/xml that turns one XLIFF
// document into a JLIFFDocument plus a TagMapDocument per <file> element,
// inlining placeholder tokens for inline codes while recording enough
// metadata in the tag map to reconstruct the original markup.
package jliff

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/model"
)

// xliffNamespace is the OASIS XLIFF 2.0 namespace URI; the root element
// must declare it for the document to be accepted.
const xliffNamespace = "urn:oasis:names:tc:xliff:document:2.0"

// FileConversion bundles the JLIFF document and tag map produced from a
// single XLIFF <file> element.
type FileConversion struct {
	JLIFF  model.JLIFFDocument
	TagMap model.TagMapDocument
	FileID string
}

// Convert parses r as an XLIFF 2.0 document and returns one FileConversion
// per <file> element it contains. The root element's namespace and
// version="2.0" are validated before any output is produced; srcLang and
// trgLang are required on the root.
func Convert(r io.Reader, opts ConversionOptions) ([]FileConversion, error) {
	dec := xml.NewDecoder(r)

	rootStart, err := locateRoot(dec)
	if err != nil {
		return nil, err
	}
	if rootStart.Name.Space != xliffNamespace {
		return nil, apperr.Validation("unsupported XLIFF namespace %q, expected %q", rootStart.Name.Space, xliffNamespace)
	}

	attrs := attrMap(rootStart.Attr)
	version := attrs["version"]
	if version == nil || *version != "2.0" {
		got := ""
		if version != nil {
			got = *version
		}
		return nil, apperr.Validation("unsupported XLIFF version %q, expected 2.0", got)
	}
	srcLang := attrs["srcLang"]
	trgLang := attrs["trgLang"]
	if srcLang == nil {
		return nil, apperr.Validation("missing srcLang attribute on <xliff>")
	}
	if trgLang == nil {
		return nil, apperr.Validation("missing trgLang attribute on <xliff>")
	}

	var results []FileConversion
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, apperr.Validation("malformed XLIFF document: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "file" {
				fc, err := parseFile(dec, t, opts, *srcLang, *trgLang)
				if err != nil {
					return nil, err
				}
				results = append(results, fc)
			} else if err := skipElement(dec); err != nil {
				return nil, apperr.Validation("malformed XLIFF document: %v", err)
			}
		case xml.EndElement:
			if t.Name.Local == "xliff" {
				return results, nil
			}
		}
	}
	return results, nil
}

func locateRoot(dec *xml.Decoder) (xml.StartElement, error) {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return xml.StartElement{}, apperr.Validation("reached EOF before locating <xliff> root")
		}
		if err != nil {
			return xml.StartElement{}, apperr.Validation("malformed XML: %v", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "xliff" {
				return xml.StartElement{}, apperr.Validation("unexpected root element %q", se.Name.Local)
			}
			return se, nil
		}
	}
}

// fileContext is the <file id=… original=…> attribute pair.
type fileContext struct {
	id       string
	original string
}

func parseFileContext(start xml.StartElement) (fileContext, error) {
	attrs := attrMap(start.Attr)
	id := attrs["id"]
	if id == nil {
		return fileContext{}, apperr.Validation("<file> missing required id attribute")
	}
	original := ""
	if o := attrs["original"]; o != nil {
		original = *o
	}
	return fileContext{id: *id, original: original}, nil
}

func parseFile(dec *xml.Decoder, start xml.StartElement, opts ConversionOptions, srcLang, trgLang string) (FileConversion, error) {
	fileCtx, err := parseFileContext(start)
	if err != nil {
		return FileConversion{}, err
	}

	var units []unitOutput
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return FileConversion{}, apperr.Validation("unexpected EOF inside <file>")
		}
		if err != nil {
			return FileConversion{}, apperr.Validation("malformed <file> content: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "unit" {
				unit, err := parseUnit(dec, t, opts)
				if err != nil {
					return FileConversion{}, err
				}
				units = append(units, unit)
			} else if err := skipElement(dec); err != nil {
				return FileConversion{}, apperr.Validation("malformed <file> content: %v", err)
			}
		case xml.EndElement:
			if t.Name.Local == "file" {
				goto done
			}
		}
	}
done:
	if len(units) == 0 {
		return FileConversion{}, apperr.Validation("<file id=%q> contains no units", fileCtx.id)
	}

	var transUnits []model.TransUnit
	tagUnits := make([]model.TagMapUnit, 0, len(units))
	for _, u := range units {
		transUnits = append(transUnits, u.transUnits...)
		tagUnits = append(tagUnits, u.tagUnit)
	}

	return FileConversion{
		JLIFF: model.JLIFFDocument{
			ProjectName:    opts.ProjectName,
			ProjectID:      opts.ProjectID,
			File:           fileCtx.original,
			User:           opts.User,
			SourceLanguage: srcLang,
			TargetLanguage: trgLang,
			TransUnits:     transUnits,
		},
		TagMap: model.TagMapDocument{
			FileID:           fileCtx.id,
			OriginalPath:     fileCtx.original,
			SourceLanguage:   srcLang,
			TargetLanguage:   trgLang,
			PlaceholderStyle: opts.PlaceholderStyle.String(),
			Units:            tagUnits,
		},
		FileID: fileCtx.id,
	}, nil
}

type unitOutput struct {
	transUnits []model.TransUnit
	tagUnit    model.TagMapUnit
}

func parseUnit(dec *xml.Decoder, start xml.StartElement, opts ConversionOptions) (unitOutput, error) {
	attrs := attrMap(start.Attr)
	unitIDPtr := attrs["id"]
	if unitIDPtr == nil {
		return unitOutput{}, apperr.Validation("<unit> missing id attribute")
	}
	unitID := *unitIDPtr

	originalData := map[string]string{}
	var segments []segmentOutput

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return unitOutput{}, apperr.Validation("unexpected EOF inside <unit id=%q>", unitID)
		}
		if err != nil {
			return unitOutput{}, apperr.Validation("malformed <unit id=%q> content: %v", unitID, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "originalData":
				if err := parseOriginalData(dec, originalData); err != nil {
					return unitOutput{}, err
				}
			case "segment":
				seg, err := parseSegment(dec, t, unitID, originalData, opts)
				if err != nil {
					return unitOutput{}, err
				}
				segments = append(segments, seg)
			default:
				if err := skipElement(dec); err != nil {
					return unitOutput{}, apperr.Validation("malformed <unit id=%q> content: %v", unitID, err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "unit" {
				goto done
			}
		}
	}
done:
	if len(segments) == 0 {
		return unitOutput{}, apperr.Validation("<unit id=%q> contains no segments", unitID)
	}

	transUnits := make([]model.TransUnit, 0, len(segments))
	tagSegments := make([]model.TagMapSegment, 0, len(segments))
	for _, s := range segments {
		transUnits = append(transUnits, s.transUnit)
		tagSegments = append(tagSegments, s.tagSegment)
	}
	return unitOutput{
		transUnits: transUnits,
		tagUnit:    model.TagMapUnit{UnitID: unitID, Segments: tagSegments},
	}, nil
}

func parseOriginalData(dec *xml.Decoder, store map[string]string) error {
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return apperr.Validation("unexpected EOF inside <originalData>")
		}
		if err != nil {
			return apperr.Validation("malformed <originalData> content: %v", err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "data" {
				attrs := attrMap(t.Attr)
				id := attrs["id"]
				if id == nil {
					return apperr.Validation("<data> missing id attribute")
				}
				content, err := readTextualContent(dec)
				if err != nil {
					return err
				}
				store[*id] = content
			} else if err := skipElement(dec); err != nil {
				return apperr.Validation("malformed <originalData> content: %v", err)
			}
		case xml.EndElement:
			if t.Name.Local == "originalData" {
				return nil
			}
		}
	}
}

type segmentOutput struct {
	transUnit  model.TransUnit
	tagSegment model.TagMapSegment
}

func parseSegment(dec *xml.Decoder, start xml.StartElement, unitID string, originalData map[string]string, opts ConversionOptions) (segmentOutput, error) {
	attrs := attrMap(start.Attr)
	segmentID := "0"
	if id := attrs["id"]; id != nil {
		segmentID = *id
	}

	srcBuilder := NewSegmentBuilder(originalData, opts.PlaceholderStyle, opts.KeepInlineInSource)
	trgBuilder := NewSegmentBuilder(originalData, opts.PlaceholderStyle, opts.KeepInlineInSource)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return segmentOutput{}, apperr.Validation("unexpected EOF inside <segment id=%q>", segmentID)
		}
		if err != nil {
			return segmentOutput{}, apperr.Validation("malformed <segment id=%q> content: %v", segmentID, err)
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "source":
				if err := parseTextContainer(dec, t, srcBuilder); err != nil {
					return segmentOutput{}, err
				}
			case "target":
				if err := parseTextContainer(dec, t, trgBuilder); err != nil {
					return segmentOutput{}, err
				}
			default:
				if err := skipElement(dec); err != nil {
					return segmentOutput{}, apperr.Validation("malformed <segment id=%q> content: %v", segmentID, err)
				}
			}
		case xml.EndElement:
			if t.Name.Local == "segment" {
				goto done
			}
		}
	}
done:
	bucket := make(map[string]string, len(originalData))
	for k, v := range originalData {
		bucket[k] = v
	}

	return segmentOutput{
		transUnit: model.TransUnit{
			UnitID:            unitID,
			TransUnitID:       fmt.Sprintf("u%s-s%s", unitID, segmentID),
			Source:            srcBuilder.Text(),
			TargetTranslation: trgBuilder.Text(),
		},
		tagSegment: model.TagMapSegment{
			SegmentID:          segmentID,
			Placeholders:       srcBuilder.Placeholders,
			OriginalDataBucket: bucket,
		},
	}, nil
}

func parseTextContainer(dec *xml.Decoder, start xml.StartElement, builder *SegmentBuilder) error {
	containerName := start.Name.Local
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return apperr.Validation("unexpected EOF inside <%s>", containerName)
		}
		if err != nil {
			return apperr.Validation("malformed <%s> content: %v", containerName, err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			builder.PushText(string(t))
		case xml.StartElement:
			if isInlineCode(t.Name.Local) {
				builder.HandleStart(t.Name.Local, t.Attr)
			} else if err := skipElement(dec); err != nil {
				return apperr.Validation("malformed <%s> content: %v", containerName, err)
			}
		case xml.EndElement:
			if t.Name.Local == containerName {
				return nil
			}
			if isInlineCode(t.Name.Local) {
				builder.HandleEnd(t.Name.Local)
			}
		}
	}
}

// readTextualContent reads everything up to (and consuming) the matching
// end tag of the element whose start has already been consumed by the
// caller, re-serializing any nested elements as literal markup. Used for
// <data> elements, whose content may itself contain arbitrary markup that
// must survive round-trip verbatim.
func readTextualContent(dec *xml.Decoder) (string, error) {
	var out bytes.Buffer
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", apperr.Validation("unexpected EOF while reading text content")
		}
		if err != nil {
			return "", apperr.Validation("malformed text content: %v", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			out.Write(t)
		case xml.EndElement:
			return out.String(), nil
		case xml.StartElement:
			out.WriteByte('<')
			out.WriteString(t.Name.Local)
			for _, a := range t.Attr {
				out.WriteByte(' ')
				out.WriteString(a.Name.Local)
				out.WriteString(`="`)
				_ = xml.EscapeText(&out, []byte(a.Value))
				out.WriteByte('"')
			}
			out.WriteByte('>')
			inner, err := readTextualContent(dec)
			if err != nil {
				return "", err
			}
			out.WriteString(inner)
			out.WriteString("</")
			out.WriteString(t.Name.Local)
			out.WriteByte('>')
		}
	}
}

func skipElement(dec *xml.Decoder) error {
	depth := 0
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				return nil
			}
			depth--
		}
	}
}
