package epubgen

import (
	"html"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/ryan-gang/smtp-to-kindle/internal/util"
)

// Document is HTML content ready to become a chapter
type Document struct {
	Title   string
	Author  string
	Content string
}

func isFullDocument(markup string) bool {
	lower := strings.ToLower(markup)
	return strings.Contains(lower, "<html") || strings.Contains(lower, "<body")
}

// wellFormed re-renders markup as XHTML body content: void elements are
// closed, open tags are balanced and named entities become characters.
// Nothing is removed.
func wellFormed(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}
	return doc.Find("body").First().Html()
}

// ExtractDocument returns the <title> and the inner HTML of <body> when markup
// is a complete document. Fragments come back unchanged with an empty title.
func ExtractDocument(markup string) (Document, error) {
	if !isFullDocument(markup) {
		return Document{Content: markup}, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return Document{}, util.Wrap(util.EpubError, "parsing html document", err)
	}

	body, err := doc.Find("body").First().Html()
	if err != nil {
		return Document{}, util.Wrap(util.EpubError, "rendering html body", err)
	}

	author, _ := doc.Find(`meta[name="author"]`).First().Attr("content")

	return Document{
		Title:   strings.TrimSpace(doc.Find("title").First().Text()),
		Author:  strings.TrimSpace(author),
		Content: strings.TrimSpace(body),
	}, nil
}

// FromURL fetches a web page and reduces it to its readable article
func FromURL(pageURL string, timeout time.Duration) (Document, error) {
	article, err := readability.FromURL(pageURL, timeout)
	if err != nil {
		return Document{}, util.Wrap(util.NetworkError, "fetching "+pageURL, err)
	}
	return Document{
		Title:   article.Title,
		Author:  article.Byline,
		Content: "<h1>" + html.EscapeString(article.Title) + "</h1>" + article.Content,
	}, nil
}
