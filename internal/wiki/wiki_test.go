package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"
)

const articleHTML = `<!doctype html>
<html><body>
<h1 id="firstHeading">Alan <i>Turing</i></h1>
<div id="mw-content-text">
  <p>Short.</p>
  <p>Alan Mathison Turing was an English mathematician, computer scientist, logician and cryptanalyst.</p>
  <div class="mw-heading"><h2 id="Early_life">Early life</h2></div>
  <p>Turing was born in Maida Vale, London.<style>.x{}</style></p>
  <h2><span class="mw-headline">Career</span><span class="mw-editsection">edit</span></h2>
  <p>He worked at Bletchley Park.</p>
</div>
</body></html>`

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"english article", "https://en.wikipedia.org/wiki/Alan_Turing", false},
		{"surrounding spaces", "  https://de.wikipedia.org/wiki/Berlin ", false},
		{"bare domain", "https://wikipedia.org/wiki/Go", false},
		{"http scheme", "http://en.wikipedia.org/wiki/Go", false},
		{"other host", "https://example.com/wiki/Go", true},
		{"lookalike host", "https://en.wikipedia.org.evil.com/wiki/Go", true},
		{"no article", "https://en.wikipedia.org/wiki/", true},
		{"not wiki path", "https://en.wikipedia.org/w/index.php?title=Go", true},
		{"ftp scheme", "ftp://en.wikipedia.org/wiki/Go", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateURL(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrNotWikipedia) {
					t.Errorf("expected ErrNotWikipedia, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != strings.TrimSpace(tt.raw) {
				t.Errorf("got %q", got)
			}
		})
	}
}

func TestParse(t *testing.T) {
	art, err := Parse(strings.NewReader(articleHTML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if art.Title != "Alan Turing" {
		t.Errorf("title = %q", art.Title)
	}
	if !strings.HasPrefix(art.Summary, "Alan Mathison Turing") {
		t.Errorf("summary should skip short paragraphs, got %q", art.Summary)
	}
	if len(art.Sections) != 2 || art.Sections[0] != "Early life" || art.Sections[1] != "Career" {
		t.Errorf("sections = %v", art.Sections)
	}
	if !strings.Contains(art.Text, "Bletchley Park") || strings.Contains(art.Text, ".x{}") {
		t.Errorf("unexpected text: %q", art.Text)
	}
}

func TestParseMissingContent(t *testing.T) {
	_, err := Parse(strings.NewReader(`<html><body><h1 id="firstHeading">X</h1></body></html>`))
	if !errors.Is(err, ErrNoContent) {
		t.Errorf("expected ErrNoContent, got %v", err)
	}
}

func TestParseDefaultsTitle(t *testing.T) {
	art, err := Parse(strings.NewReader(`<div id="mw-content-text"><p>hi</p></div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if art.Title != "Unknown Title" {
		t.Errorf("title = %q", art.Title)
	}
	if art.Summary != "" {
		t.Errorf("summary = %q, want empty", art.Summary)
	}
}

func TestParseTruncatesText(t *testing.T) {
	long := strings.Repeat("é", MaxTextRunes+100)
	art, err := Parse(strings.NewReader(`<div id="mw-content-text"><p>` + long + `</p></div>`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if n := utf8.RuneCountInString(art.Text); n != MaxTextRunes {
		t.Errorf("text has %d runes, want %d", n, MaxTextRunes)
	}
}

func TestFetch(t *testing.T) {
	var gotUA, gotLang string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		if r.URL.Path == "/missing" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := NewFetcher(srv.Client())
	art, err := f.Fetch(context.Background(), srv.URL+"/wiki/Alan_Turing")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if art.URL != srv.URL+"/wiki/Alan_Turing" || art.Title != "Alan Turing" {
		t.Errorf("unexpected article: %+v", art)
	}
	if !strings.HasPrefix(gotUA, "Mozilla/5.0") || gotLang == "" {
		t.Errorf("headers not sent: ua=%q lang=%q", gotUA, gotLang)
	}

	if _, err := f.Fetch(context.Background(), srv.URL+"/missing"); err == nil {
		t.Error("expected error for 404")
	}
}
