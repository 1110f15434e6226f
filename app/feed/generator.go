package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/lysyi3m/quote-relay/app/database"
)

// Channel describes the RSS channel wrapping the delivered quotes.
type Channel struct {
	Title       string
	SiteURL     string
	SelfURL     string
	Description string
	Version     string
}

type Generator struct {
	channel Channel
}

func NewGenerator(channel Channel) *Generator {
	return &Generator{channel: channel}
}

// Run renders deliveries, newest first, as an RSS 2.0 document.
func (g *Generator) Run(deliveries []database.Delivery) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", g.channel.Title, 4)
	g.writeElement(&buf, "link", g.channel.SiteURL, 4)

	description := g.channel.Description
	if description == "" {
		description = fmt.Sprintf("New quotes from %s", g.channel.SiteURL)
	}
	g.writeElement(&buf, "description", description, 4)

	if g.channel.SelfURL != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(g.channel.SelfURL)))
	}

	lastBuildDate := time.Now().In(time.Local)
	if len(deliveries) > 0 {
		lastBuildDate = deliveries[0].DeliveredAt
	}

	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Quote-Relay/%s", g.channel.Version), 4)
	g.writeElement(&buf, "language", "ru", 4)

	for _, d := range deliveries {
		g.writeItem(&buf, d)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, d database.Delivery) {
	buf.WriteString("    <item>\n")

	link := g.QuoteURL(d.QuoteNumber)
	buf.WriteString("      <guid isPermaLink=\"true\">")
	xml.EscapeText(buf, []byte(link))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", fmt.Sprintf("Цитата #%d", d.QuoteNumber), 6)
	g.writeElement(buf, "link", link, 6)
	g.writeElement(buf, "description", d.Text, 6)
	g.writeElement(buf, "pubDate", d.DeliveredAt.Format(time.RFC1123Z), 6)

	buf.WriteString("    </item>\n")
}

// QuoteURL is the permalink of quote n on the source site.
func (g *Generator) QuoteURL(n int) string {
	return fmt.Sprintf("%s/quote/%d", strings.TrimRight(g.channel.SiteURL, "/"), n)
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
