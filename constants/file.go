package constants

import "strings"

// Document formats stored in documents.file_type.
const (
	PDF   = "PDF"
	IMAGE = "IMAGE"
	DOC   = "DOC"
	OTHER = "OTHER"
)

// FileTypes holds the allowed values for the file_type column.
var FileTypes = []string{PDF, IMAGE, DOC, OTHER}

// MediaTypePDF is the only media type the feature extractor understands.
const MediaTypePDF = "application/pdf"

// AllowedExtensions holds the default allowed file extensions for uploads and ingestion.
var AllowedExtensions = map[string]struct{}{
	"pdf":  {},
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"dwg":  {},
	"doc":  {},
	"docx": {},
	"xls":  {},
	"xlsx": {},
	"xml":  {},
}

var mediaTypes = map[string]string{
	"pdf":  MediaTypePDF,
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"dwg":  "image/vnd.dwg",
	"doc":  "application/msword",
	"docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xml":  "application/xml",
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// IsAllowedExt checks ext against AllowedExtensions.
func IsAllowedExt(ext string) bool {
	_, ok := AllowedExtensions[NormalizeExt(ext)]
	return ok
}

// MapExtToFormat maps a file extension to one of FileTypes.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "pdf":
		return PDF
	case "jpg", "jpeg", "png", "dwg":
		return IMAGE
	case "doc", "docx", "xls", "xlsx", "xml":
		return DOC
	default:
		return OTHER
	}
}

// MediaTypeForExt returns the media type for ext, or application/octet-stream.
func MediaTypeForExt(ext string) string {
	if mt, ok := mediaTypes[NormalizeExt(ext)]; ok {
		return mt
	}
	return "application/octet-stream"
}

// IsPDFMediaType ignores case and media type parameters.
func IsPDFMediaType(mediaType string) bool {
	mt := strings.ToLower(strings.TrimSpace(mediaType))
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = strings.TrimSpace(mt[:i])
	}
	return mt == MediaTypePDF || mt == "application/x-pdf"
}
