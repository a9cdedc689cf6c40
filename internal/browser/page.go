package browser

import (
	"log/slog"

	"github.com/playwright-community/playwright-go"
)

// Page adapts a playwright page to the session.Page interface. Interaction
// failures come back as values so the session can try its next selector
// candidate.
type Page struct {
	page   playwright.Page
	logger *slog.Logger
}

func (p *Page) Navigate(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(60000),
	})
	return err
}

func (p *Page) Content() (string, error) {
	return p.page.Content()
}

// ClickFirstVisible clicks the first visible element matching the selector.
// It reports (false, nil) when nothing matched or nothing was visible.
func (p *Page) ClickFirstVisible(selector string) (bool, error) {
	loc := p.page.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return false, err
	}
	for i := 0; i < count; i++ {
		el := loc.Nth(i)
		visible, err := el.IsVisible()
		if err != nil || !visible {
			continue
		}
		if err := el.Click(playwright.LocatorClickOptions{
			Timeout: playwright.Float(5000),
		}); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// FirstAttr returns the named attribute of the first element matching the
// selector. Lookup failures surface as a missing attribute.
func (p *Page) FirstAttr(selector, attr string) (string, bool) {
	loc := p.page.Locator(selector)
	count, err := loc.Count()
	if err != nil || count == 0 {
		return "", false
	}
	val, err := loc.First().GetAttribute(attr)
	if err != nil || val == "" {
		return "", false
	}
	return val, true
}

// ScrollStep scrolls one viewport height further down to trigger
// lazy-loaded content.
func (p *Page) ScrollStep() error {
	_, err := p.page.Evaluate(`window.scrollBy(0, window.innerHeight)`)
	return err
}

func (p *Page) PressKey(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *Page) Screenshot() ([]byte, error) {
	return p.page.Screenshot(playwright.PageScreenshotOptions{
		FullPage: playwright.Bool(true),
	})
}

func (p *Page) Close() error {
	return p.page.Close()
}
