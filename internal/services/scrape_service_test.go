package services

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const searchPageHTML = `
<html><body>
<ul class="mw-search-results">
  <li><div class="mw-search-result-heading"><a href="/wiki/Cervantes" title="Cervantes">Miguel de Cervantes</a></div></li>
  <li><div class="mw-search-result-heading"><a href="/wiki/Don_Quijote" title="Don Quijote">Don Quijote de la Mancha</a></div></li>
  <li><div class="mw-search-result-heading"><span>sin enlace</span></div></li>
</ul>
</body></html>`

func TestParseSearchResults(t *testing.T) {
	results, err := parseSearchResults(strings.NewReader(searchPageHTML), "https://es.wikipedia.org")
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "Miguel de Cervantes", results[0].Titulo)
	assert.Equal(t, "https://es.wikipedia.org/wiki/Cervantes", results[0].Link)
	assert.Equal(t, "Don Quijote de la Mancha", results[1].Titulo)
}

func TestParseSearchResultsCapsAtTen(t *testing.T) {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < 15; i++ {
		b.WriteString(`<div class="mw-search-result-heading"><a href="/wiki/P">P</a></div>`)
	}
	b.WriteString("</body></html>")

	results, err := parseSearchResults(strings.NewReader(b.String()), "https://es.wikipedia.org")
	require.NoError(t, err)
	assert.Len(t, results, 10)
}

func TestSearchUsesQueryAndParsesResponse(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("search")
		w.Write([]byte(searchPageHTML))
	}))
	defer server.Close()

	svc := &ScrapeService{client: server.Client(), baseURL: server.URL}
	results, err := svc.Search("don quijote")
	require.NoError(t, err)

	assert.Equal(t, "don quijote", gotQuery)
	require.Len(t, results, 2)
	assert.Equal(t, server.URL+"/wiki/Cervantes", results[0].Link)
}

func TestSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := &ScrapeService{client: server.Client(), baseURL: server.URL}
	_, err := svc.Search("x")
	assert.Error(t, err)
}

func TestResultsEmailHTML(t *testing.T) {
	html := ResultsEmailHTML("cervantes", []ScrapeResult{
		{Titulo: "Miguel de Cervantes", Link: "https://es.wikipedia.org/wiki/Cervantes"},
	})
	assert.Contains(t, html, "cervantes")
	assert.Contains(t, html, `<a href="https://es.wikipedia.org/wiki/Cervantes">Miguel de Cervantes</a>`)
}
