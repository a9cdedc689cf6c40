// Package extract turns rendered search-result markup into product listings
// using the per-site selector candidates. It is a pure function of its
// inputs, which keeps it testable against canned markup.
package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/shopcrawl/shopcrawl/internal/sites"
)

// Listing is one extracted product row. Fields are kept as raw strings;
// price and rating formats vary by site and are not normalized. An empty
// string means the field was absent on the page.
type Listing struct {
	Name   string `json:"product_name"`
	Price  string `json:"price"`
	Rating string `json:"rating"`
	URL    string `json:"product_url"`
}

// Products extracts all listings from the given markup. A container that
// yields neither a name nor a price is treated as an ad or placeholder and
// dropped.
func Products(markup string, site *sites.Site) []Listing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	containers := collectContainers(doc, site.Selectors.ProductContainer)
	base := site.BaseOrigin()

	var listings []Listing
	for _, c := range containers {
		l := Listing{
			Name:   nameOf(firstMatch(c, site.Selectors.Name)),
			Price:  textOf(firstMatch(c, site.Selectors.Price)),
			Rating: textOf(firstMatch(c, site.Selectors.Rating)),
			URL:    productURL(c, base),
		}
		if l.Name == "" && l.Price == "" {
			continue
		}
		listings = append(listings, l)
	}
	return listings
}

// collectContainers unions the matches of all container candidates in
// first-seen order, de-duplicating nodes matched by more than one candidate.
func collectContainers(doc *goquery.Document, candidates []string) []*goquery.Selection {
	seen := map[*html.Node]bool{}
	var containers []*goquery.Selection
	for _, sel := range candidates {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			node := s.Get(0)
			if seen[node] {
				return
			}
			seen[node] = true
			containers = append(containers, s)
		})
	}
	return containers
}

// firstMatch tries the candidates in declared order and returns the first
// element any of them matches, or nil.
func firstMatch(container *goquery.Selection, candidates []string) *goquery.Selection {
	for _, sel := range candidates {
		if found := container.Find(sel); found.Length() > 0 {
			return found.First()
		}
	}
	return nil
}

// nameOf prefers an explicit title attribute over visible text.
func nameOf(s *goquery.Selection) string {
	if s == nil {
		return ""
	}
	if title, ok := s.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return textOf(s)
}

func textOf(s *goquery.Selection) string {
	if s == nil {
		return ""
	}
	return strings.Join(strings.Fields(s.Text()), " ")
}

func productURL(container *goquery.Selection, baseOrigin string) string {
	a := container.Find("a").First()
	href, ok := a.Attr("href")
	if !ok || href == "" {
		return ""
	}
	return ResolveURL(href, baseOrigin)
}

// ResolveURL normalizes an href to absolute form: protocol-relative links
// get https, root-relative links are joined with the site's base origin and
// anything else is assumed to be absolute already.
func ResolveURL(href, baseOrigin string) string {
	switch {
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return baseOrigin + href
	default:
		return href
	}
}
