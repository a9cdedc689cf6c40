package sites

// Built-in descriptors for the three supported shops. Selectors are ordered
// by preference; older class names are kept as fallback candidates because
// these shops rotate their markup.
func builtin() []*Site {
	return []*Site{
		{
			ID:          "flipkart",
			DisplayName: "Flipkart",
			SearchURL:   "https://www.flipkart.com/search?q=%s",
			Selectors: Selectors{
				ProductContainer: []string{"div._2kHMtA", "div._1AtVbE._13oc-S"},
				Name:             []string{"div._4rR01T", "a.s1Q9rs"},
				Price:            []string{"div._30jeq3", "div._25b18c"},
				Rating:           []string{"div._3LWZlK"},
				NextPage:         []string{"a._1LKTO3", "a._1GTrmS"},
				DismissModal:     []string{"button._2KpZ6l._2doB4z"},
			},
		},
		{
			ID:          "amazon_in",
			DisplayName: "Amazon India",
			SearchURL:   "https://www.amazon.in/s?k=%s",
			Selectors: Selectors{
				ProductContainer: []string{"div.s-result-item[data-component-type='s-search-result']"},
				Name:             []string{"h2 a span"},
				Price:            []string{"span.a-price > span.a-offscreen"},
				Rating:           []string{"span.a-icon-alt"},
				NextPage:         []string{"a.s-pagination-next"},
			},
		},
		{
			ID:          "snapdeal",
			DisplayName: "Snapdeal",
			SearchURL:   "https://www.snapdeal.com/search?keyword=%s",
			Selectors: Selectors{
				ProductContainer: []string{"div.product-tuple-listing"},
				Name:             []string{"p.product-title", "a.dp-widget-link"},
				Price:            []string{"span.product-price"},
				Rating:           []string{"div.hotnessStars"},
				NextPage:         []string{"a[data-page]"},
			},
		},
	}
}

// Default returns the built-in registry.
func Default() *Registry {
	r, err := newRegistry(builtin())
	if err != nil {
		// built-ins are validated by tests; an error here is a programming bug
		panic(err)
	}
	return r
}
