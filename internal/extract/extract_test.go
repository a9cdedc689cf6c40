package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shopcrawl/shopcrawl/internal/sites"
)

func testSite() *sites.Site {
	return &sites.Site{
		ID:        "shop",
		SearchURL: "https://shop.example/search?q=%s",
		Selectors: sites.Selectors{
			ProductContainer: []string{".item"},
			Name:             []string{".title"},
			Price:            []string{".price"},
			Rating:           []string{".stars"},
			NextPage:         []string{"a.next"},
		},
	}
}

func TestProductsBasicScenario(t *testing.T) {
	markup := `<html><body>
		<div class="item">
			<a href="/p/shoe-a"><span class="title">Shoe A</span></a>
			<span class="price">₹999</span>
			<span class="stars">4.3</span>
		</div>
		<div class="item">
			<a href="/p/shoe-b"><span class="title">Shoe B</span></a>
		</div>
	</body></html>`

	listings := Products(markup, testSite())
	require.Len(t, listings, 2)

	assert.Equal(t, Listing{
		Name:   "Shoe A",
		Price:  "₹999",
		Rating: "4.3",
		URL:    "https://shop.example/p/shoe-a",
	}, listings[0])

	assert.Equal(t, "Shoe B", listings[1].Name)
	assert.Empty(t, listings[1].Price)
	assert.Empty(t, listings[1].Rating)
}

func TestProductsDropsContainersWithoutNameOrPrice(t *testing.T) {
	markup := `<html><body>
		<div class="item"><span class="stars">4.0</span><a href="/ad">sponsored</a></div>
		<div class="item"><span class="price">₹50</span></div>
	</body></html>`

	listings := Products(markup, testSite())
	require.Len(t, listings, 1)
	assert.Equal(t, "₹50", listings[0].Price)
}

func TestProductsInclusionInvariant(t *testing.T) {
	markup := `<html><body>
		<div class="item"><span class="title">A</span></div>
		<div class="item"><span class="price">1</span></div>
		<div class="item"></div>
		<div class="item"><span class="title">B</span><span class="price">2</span></div>
	</body></html>`

	for _, l := range Products(markup, testSite()) {
		assert.True(t, l.Name != "" || l.Price != "")
	}
}

func TestProductsIsDeterministic(t *testing.T) {
	markup := `<html><body>
		<div class="item"><span class="title">A</span><span class="price">1</span></div>
		<div class="item"><span class="title">B</span><span class="price">2</span></div>
	</body></html>`

	first := Products(markup, testSite())
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Products(markup, testSite()))
	}
}

func TestSelectorPrecedence(t *testing.T) {
	site := testSite()
	site.Selectors.Name = []string{".primary-title", ".fallback-title"}

	markup := `<html><body><div class="item">
		<span class="fallback-title">Fallback</span>
		<span class="primary-title">Primary</span>
		<span class="price">10</span>
	</div></body></html>`

	listings := Products(markup, site)
	require.Len(t, listings, 1)
	assert.Equal(t, "Primary", listings[0].Name)
}

func TestFallbackCandidateUsedWhenFirstMisses(t *testing.T) {
	site := testSite()
	site.Selectors.Name = []string{".primary-title", ".fallback-title"}

	markup := `<html><body><div class="item">
		<span class="fallback-title">Fallback</span>
		<span class="price">10</span>
	</div></body></html>`

	listings := Products(markup, site)
	require.Len(t, listings, 1)
	assert.Equal(t, "Fallback", listings[0].Name)
}

func TestNamePrefersTitleAttribute(t *testing.T) {
	markup := `<html><body><div class="item">
		<span class="title" title="Full Product Name With Specs">Truncated…</span>
		<span class="price">10</span>
	</div></body></html>`

	listings := Products(markup, testSite())
	require.Len(t, listings, 1)
	assert.Equal(t, "Full Product Name With Specs", listings[0].Name)
}

func TestNameFallsBackToTextOnEmptyTitleAttribute(t *testing.T) {
	markup := `<html><body><div class="item">
		<span class="title" title="  ">Visible Name</span>
		<span class="price">10</span>
	</div></body></html>`

	listings := Products(markup, testSite())
	require.Len(t, listings, 1)
	assert.Equal(t, "Visible Name", listings[0].Name)
}

func TestContainerUnionDeduplicates(t *testing.T) {
	site := testSite()
	site.Selectors.ProductContainer = []string{".item", "div.item"}

	markup := `<html><body>
		<div class="item"><span class="title">Once</span><span class="price">1</span></div>
	</body></html>`

	listings := Products(markup, site)
	assert.Len(t, listings, 1)
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		name string
		href string
		want string
	}{
		{"protocol relative", "//x/y", "https://x/y"},
		{"root relative", "/x/y", "https://site.example/x/y"},
		{"already absolute", "https://other.example/p/1", "https://other.example/p/1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveURL(tt.href, "https://site.example"))
		})
	}
}

func TestProductURLUsesFirstAnchor(t *testing.T) {
	markup := `<html><body><div class="item">
		<a href="//cdn.shop.example/p/1"><span class="title">X</span></a>
		<a href="/other">other</a>
		<span class="price">10</span>
	</div></body></html>`

	listings := Products(markup, testSite())
	require.Len(t, listings, 1)
	assert.Equal(t, "https://cdn.shop.example/p/1", listings[0].URL)
}

func TestProductsEmptyMarkup(t *testing.T) {
	assert.Empty(t, Products("", testSite()))
	assert.Empty(t, Products("<html><body><p>nothing here</p></body></html>", testSite()))
}

func TestTextIsWhitespaceNormalized(t *testing.T) {
	markup := `<html><body><div class="item">
		<span class="title">
			Spread
			Out    Name
		</span>
		<span class="price"> ₹ 1,299 </span>
	</div></body></html>`

	listings := Products(markup, testSite())
	require.Len(t, listings, 1)
	assert.Equal(t, "Spread Out Name", listings[0].Name)
	assert.Equal(t, "₹ 1,299", listings[0].Price)
}
