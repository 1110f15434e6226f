package quote

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type Selectors struct {
	Frame     string
	Permalink string
	Body      string
}

var DefaultSelectors = Selectors{
	Frame:     "div.quote__frame",
	Permalink: "a.quote__header_permalink",
	Body:      "div.quote__body",
}

type Parser struct {
	selectors Selectors
}

func NewParser() *Parser {
	return &Parser{selectors: DefaultSelectors}
}

func NewParserWithSelectors(selectors Selectors) *Parser {
	return &Parser{selectors: selectors}
}

// Run extracts every quote block in document order. A single malformed block
// fails the whole batch.
func (p *Parser) Run(data []byte) (Batch, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{Index: -1, Reason: "invalid document", Err: err}
	}

	frames := doc.Find(p.selectors.Frame)
	batch := make(Batch, 0, frames.Length())

	var parseErr error
	frames.EachWithBreak(func(i int, s *goquery.Selection) bool {
		q, err := p.parseBlock(i, s)
		if err != nil {
			parseErr = err
			return false
		}
		batch = append(batch, q)
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}

	slog.Debug("Quotes parsed", "count", len(batch))

	return batch, nil
}

func (p *Parser) parseBlock(index int, s *goquery.Selection) (Quote, error) {
	permalink := s.Find(p.selectors.Permalink).First()
	if permalink.Length() == 0 {
		return Quote{}, &ParseError{Index: index, Reason: "missing permalink anchor"}
	}

	number, err := parseNumber(permalink.Text())
	if err != nil {
		return Quote{}, &ParseError{Index: index, Reason: "invalid quote number", Err: err}
	}

	body := s.Find(p.selectors.Body).First()
	if body.Length() == 0 {
		return Quote{}, &ParseError{Index: index, Reason: "missing quote body"}
	}

	body.Find("br").ReplaceWithHtml("\n")

	return Quote{
		Number: number,
		Text:   strings.TrimSpace(body.Text()),
	}, nil
}

func parseNumber(raw string) (int, error) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(raw, "#", ""))

	number, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, err
	}
	if number <= 0 {
		return 0, fmt.Errorf("quote number must be positive, got %d", number)
	}

	return number, nil
}
