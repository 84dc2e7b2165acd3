package model

import "strings"

// AllowedExtensions is the case-insensitive import allowlist from spec.md §6.
// The first len(ConvertibleExtensions) entries are convertible (they need
// XLIFF extraction before translation); the rest are already XLIFF-like and
// skip conversion.
var AllowedExtensions = []string{
	"doc", "docx", "ppt", "pptx", "xls", "xlsx", "odt", "odp", "ods",
	"html", "xml", "dita", "md",
	"xlf", "xliff", "mqxliff", "sdlxliff",
}

// ConvertibleExtensions is the subset of AllowedExtensions that triggers
// XLIFF extraction (spec.md §6).
var ConvertibleExtensions = map[string]bool{
	"doc": true, "docx": true, "ppt": true, "pptx": true, "xls": true,
	"xlsx": true, "odt": true, "odp": true, "ods": true, "html": true,
	"xml": true, "dita": true, "md": true,
}

// IsAllowedExtension reports whether ext (with or without a leading dot) is
// in the project import allowlist.
func IsAllowedExtension(ext string) bool {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	for _, a := range AllowedExtensions {
		if a == ext {
			return true
		}
	}
	return false
}

// IsConvertibleExtension reports whether ext needs XLIFF extraction rather
// than being already XLIFF-like.
func IsConvertibleExtension(ext string) bool {
	return ConvertibleExtensions[strings.ToLower(strings.TrimPrefix(ext, "."))]
}
