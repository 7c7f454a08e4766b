// Package extractor pulls script source references out of HTML documents.
package extractor

import (
	"bytes"
	"iter"
	"sync/atomic"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/scriptscan/internal/common"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

// ScriptExtractor yields the src attribute of every <script> element of a document.
type ScriptExtractor struct {
	logger   zerolog.Logger
	analyzer *ContentTypeAnalyzer
}

// NewScriptExtractor creates a new ScriptExtractor
func NewScriptExtractor(logger zerolog.Logger) *ScriptExtractor {
	return &ScriptExtractor{
		logger:   logger.With().Str("component", "ScriptExtractor").Logger(),
		analyzer: NewContentTypeAnalyzer(logger),
	}
}

// Extract returns a lazy sequence of raw src values in document order. Scripts without
// a src attribute are skipped. The document is parsed on first iteration and the
// sequence can be ranged over only once; later ranges yield nothing. The body is parsed
// as HTML whatever its declared type; contentType only supplies the charset.
func (e *ScriptExtractor) Extract(document []byte, contentType string) iter.Seq[string] {
	var consumed atomic.Bool

	return func(yield func(string) bool) {
		if consumed.Swap(true) {
			return
		}

		if !e.analyzer.IsHTML(contentType) {
			e.logger.Debug().Str("content_type", contentType).Msg("Parsing non-HTML content type as HTML")
		}

		doc, err := e.parseHTML(document, contentType)
		if err != nil {
			e.logger.Warn().Err(err).Str("content_type", contentType).Msg("Failed to parse document")
			return
		}

		doc.Find("script").EachWithBreak(func(i int, s *goquery.Selection) bool {
			src, exists := s.Attr("src")
			if !exists {
				return true
			}
			return yield(src)
		})
	}
}

// parseHTML decodes the body to UTF-8 using the declared or sniffed charset and builds
// the document tree.
func (e *ScriptExtractor) parseHTML(document []byte, contentType string) (*goquery.Document, error) {
	reader, err := charset.NewReader(bytes.NewReader(document), contentType)
	if err != nil {
		e.logger.Debug().Err(err).Msg("Charset detection failed, parsing raw bytes")
		reader = bytes.NewReader(document)
	}

	doc, err := goquery.NewDocumentFromReader(reader)
	if err != nil {
		return nil, common.WrapError(err, "failed to parse HTML")
	}
	return doc, nil
}
