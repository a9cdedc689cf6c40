// Package sites holds the declarative per-site scrape descriptors: a search
// URL template plus ordered selector candidates for every extractable field.
package sites

import (
	"fmt"
	"net/url"
	"strings"
)

// Selectors maps each extractable field to an ordered list of CSS selector
// candidates. Order encodes preference: the first candidate that matches
// wins. ProductContainer and NextPage may match zero or more elements;
// DismissModal candidates are best-effort only.
type Selectors struct {
	ProductContainer []string `yaml:"product_container"`
	Name             []string `yaml:"name"`
	Price            []string `yaml:"price"`
	Rating           []string `yaml:"rating"`
	NextPage         []string `yaml:"next_page"`
	DismissModal     []string `yaml:"dismiss_modal,omitempty"`
}

// Site describes one supported shop. Descriptors are built once at startup
// and are read-only afterwards.
type Site struct {
	ID          string    `yaml:"id"`
	DisplayName string    `yaml:"display_name"`
	SearchURL   string    `yaml:"search_url"` // must contain exactly one %s for the escaped query
	Selectors   Selectors `yaml:"selectors"`
}

// SearchFor renders the search URL for the given keyword.
func (s *Site) SearchFor(query string) string {
	return fmt.Sprintf(s.SearchURL, url.QueryEscape(query))
}

// BaseOrigin returns scheme://host of the search URL, used to resolve
// root-relative product links.
func (s *Site) BaseOrigin() string {
	u, err := url.Parse(fmt.Sprintf(s.SearchURL, ""))
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%s://%s", u.Scheme, u.Host)
}

// Validate rejects malformed descriptors before a session starts.
func (s *Site) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("site descriptor without id")
	}
	if strings.Count(s.SearchURL, "%s") != 1 {
		return fmt.Errorf("site %s: search_url must contain exactly one %%s placeholder", s.ID)
	}
	required := map[string][]string{
		"product_container": s.Selectors.ProductContainer,
		"name":              s.Selectors.Name,
		"price":             s.Selectors.Price,
		"rating":            s.Selectors.Rating,
		"next_page":         s.Selectors.NextPage,
	}
	for field, candidates := range required {
		if len(candidates) == 0 {
			return fmt.Errorf("site %s: no selector candidates for %s", s.ID, field)
		}
		for _, c := range candidates {
			if strings.TrimSpace(c) == "" {
				return fmt.Errorf("site %s: empty selector candidate for %s", s.ID, field)
			}
		}
	}
	return nil
}

// Registry is the read-only set of supported sites, in menu order.
type Registry struct {
	sites []*Site
}

// All returns the sites in declaration order.
func (r *Registry) All() []*Site {
	return r.sites
}

// ByID looks a site up by its identifier.
func (r *Registry) ByID(id string) (*Site, bool) {
	for _, s := range r.sites {
		if s.ID == id {
			return s, true
		}
	}
	return nil, false
}

// ByIndex returns the nth site (zero-based), matching the menu numbering.
func (r *Registry) ByIndex(i int) (*Site, bool) {
	if i < 0 || i >= len(r.sites) {
		return nil, false
	}
	return r.sites[i], true
}

func (r *Registry) Len() int {
	return len(r.sites)
}

func newRegistry(sites []*Site) (*Registry, error) {
	if len(sites) == 0 {
		return nil, fmt.Errorf("no site descriptors configured")
	}
	seen := map[string]bool{}
	for _, s := range sites {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if seen[s.ID] {
			return nil, fmt.Errorf("duplicate site id %s", s.ID)
		}
		seen[s.ID] = true
	}
	return &Registry{sites: sites}, nil
}
