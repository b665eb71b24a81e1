// Package wiki fetches a Wikipedia article and extracts the parts the quiz
// generator needs: title, plain text, a one-paragraph summary, and section
// headings.
package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	// MaxTextRunes bounds the article text handed to the LLM.
	MaxTextRunes = 15000

	minSummaryRunes = 50
	maxBodyBytes    = 10 << 20
)

var (
	// ErrNotWikipedia is returned for URLs that are not Wikipedia articles.
	ErrNotWikipedia = errors.New("not a Wikipedia article URL")
	// ErrNoContent is returned when the page has no article body.
	ErrNoContent = errors.New("could not find article content")
)

// Article is the scraped content of one page.
type Article struct {
	URL      string
	Title    string
	Summary  string
	Text     string
	Sections []string
}

// ValidateURL checks that raw points at a Wikipedia article and returns it
// trimmed of surrounding whitespace.
func ValidateURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotWikipedia, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", ErrNotWikipedia
	}
	host := strings.ToLower(u.Hostname())
	if host != "wikipedia.org" && !strings.HasSuffix(host, ".wikipedia.org") {
		return "", ErrNotWikipedia
	}
	if !strings.HasPrefix(u.Path, "/wiki/") || len(u.Path) == len("/wiki/") {
		return "", ErrNotWikipedia
	}
	return raw, nil
}

// Fetcher downloads and parses articles.
type Fetcher struct {
	client *http.Client
}

// NewFetcher returns a Fetcher using client, or a client with a 30 second
// timeout when client is nil.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{client: client}
}

// Fetch downloads the page at rawURL and extracts the article.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch URL: unexpected status %s", resp.Status)
	}

	art, err := Parse(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	art.URL = rawURL
	return art, nil
}

// Parse extracts an article from an HTML document.
func Parse(r io.Reader) (*Article, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	art := &Article{Title: "Unknown Title"}
	if h1 := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.H1 && attr(n, "id") == "firstHeading"
	}); h1 != nil {
		if t := strings.TrimSpace(textOf(h1)); t != "" {
			art.Title = t
		}
	}

	content := findFirst(doc, func(n *html.Node) bool {
		return n.DataAtom == atom.Div && attr(n, "id") == "mw-content-text"
	})
	if content == nil {
		return nil, ErrNoContent
	}

	var paragraphs []string
	walk(content, func(n *html.Node) bool {
		switch n.DataAtom {
		case atom.P:
			text := textOf(n)
			paragraphs = append(paragraphs, text)
			if art.Summary == "" {
				if trimmed := strings.TrimSpace(text); utf8.RuneCountInString(trimmed) > minSummaryRunes {
					art.Summary = trimmed
				}
			}
			return false
		case atom.H2:
			if heading := sectionTitle(n); heading != "" {
				art.Sections = append(art.Sections, heading)
			}
			return false
		}
		return true
	})

	art.Text = truncateRunes(strings.Join(paragraphs, "\n"), MaxTextRunes)
	return art, nil
}

// sectionTitle prefers the legacy span.mw-headline and falls back to the
// whole heading text used by current skins.
func sectionTitle(h2 *html.Node) string {
	if span := findFirst(h2, func(n *html.Node) bool {
		return n.DataAtom == atom.Span && hasClass(n, "mw-headline")
	}); span != nil {
		return strings.TrimSpace(textOf(span))
	}
	return strings.TrimSpace(textOf(h2))
}

// walk visits n and its descendants in document order. Returning false from
// visit skips the node's children.
func walk(n *html.Node, visit func(*html.Node) bool) {
	if n.Type == html.ElementNode && !visit(n) {
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, visit)
	}
}

func findFirst(n *html.Node, match func(*html.Node) bool) *html.Node {
	var found *html.Node
	walk(n, func(c *html.Node) bool {
		if found != nil {
			return false
		}
		if match(c) {
			found = c
			return false
		}
		return true
	})
	return found
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	var collect func(*html.Node)
	collect = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
			return
		}
		if c.Type == html.ElementNode && (c.DataAtom == atom.Style || c.DataAtom == atom.Script) {
			return
		}
		for cc := c.FirstChild; cc != nil; cc = cc.NextSibling {
			collect(cc)
		}
	}
	collect(n)
	return sb.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
