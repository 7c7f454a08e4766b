package extractor

import (
	"mime"
	"strings"

	"github.com/rs/zerolog"
)

var htmlMediaTypes = map[string]bool{
	"text/html":             true,
	"application/xhtml+xml": true,
}

// ContentTypeAnalyzer determines if content should be parsed as HTML
type ContentTypeAnalyzer struct {
	logger zerolog.Logger
}

// NewContentTypeAnalyzer creates a new content type analyzer
func NewContentTypeAnalyzer(logger zerolog.Logger) *ContentTypeAnalyzer {
	return &ContentTypeAnalyzer{
		logger: logger.With().Str("component", "ContentTypeAnalyzer").Logger(),
	}
}

// IsHTML reports whether a response with this Content-Type carries an HTML document.
// A missing Content-Type is treated as HTML.
func (cta *ContentTypeAnalyzer) IsHTML(contentType string) bool {
	contentType = strings.TrimSpace(contentType)
	if contentType == "" {
		return true
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		isHTML := strings.Contains(strings.ToLower(contentType), "html")
		cta.logger.Debug().
			Err(err).
			Str("content_type", contentType).
			Bool("is_html", isHTML).
			Msg("Malformed content type, guessing from its text")
		return isHTML
	}

	return htmlMediaTypes[mediaType]
}
