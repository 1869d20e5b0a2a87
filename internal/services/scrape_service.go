package services

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// maxScrapeResults caps how many search hits are returned
const maxScrapeResults = 10

// ScrapeResult is one encyclopedia search hit
type ScrapeResult struct {
	Titulo string `json:"titulo"`
	Link   string `json:"link"`
}

// ScrapeService runs keyword searches against the Spanish Wikipedia
type ScrapeService struct {
	client  *http.Client
	baseURL string
}

func NewScrapeService() *ScrapeService {
	return &ScrapeService{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: "https://es.wikipedia.org",
	}
}

// Search fetches the search page for the query and returns up to ten
// result headings with absolute links
func (s *ScrapeService) Search(query string) ([]ScrapeResult, error) {
	searchURL := fmt.Sprintf("%s/w/index.php?search=%s", s.baseURL, url.QueryEscape(query))

	resp, err := s.client.Get(searchURL)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	return parseSearchResults(resp.Body, s.baseURL)
}

// parseSearchResults extracts result headings from the search page HTML
func parseSearchResults(body io.Reader, baseURL string) ([]ScrapeResult, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search page: %w", err)
	}

	results := []ScrapeResult{}
	doc.Find(".mw-search-result-heading").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if len(results) >= maxScrapeResults {
			return false
		}
		a := sel.Find("a").First()
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		results = append(results, ScrapeResult{
			Titulo: strings.TrimSpace(a.Text()),
			Link:   baseURL + href,
		})
		return true
	})

	return results, nil
}

// ResultsEmailHTML renders the search-results email body
func ResultsEmailHTML(query string, results []ScrapeResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<p>Resultados de la búsqueda <strong>%s</strong>:</p><ul>", query)
	for _, r := range results {
		fmt.Fprintf(&b, `<li><a href="%s">%s</a></li>`, r.Link, r.Titulo)
	}
	b.WriteString("</ul>")
	return b.String()
}
