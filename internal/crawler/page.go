package crawler

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._-]+@[a-zA-Z0-9._-]+\.[a-zA-Z0-9._-]+`)

// PageInfo is what the scraper reads off a fetched document.
// Email is the raw address and must be hashed before it leaves the crawler package.
type PageInfo struct {
	Title string
	Email string
}

// ParsePage parses body as HTML and returns the text of the first <title>
// element and the first email address in the document's text nodes.
func ParsePage(body []byte) (PageInfo, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return PageInfo{}, fmt.Errorf("%w: %w", ErrParse, err)
	}
	info := PageInfo{
		Title: doc.Find("title").First().Text(),
	}
	info.Email = firstEmail(doc.Selection)
	return info, nil
}

// firstEmail returns the first address found in the text nodes under sel,
// in document order. Each text node is matched on its own so text from a
// neighbouring element never runs into the address.
func firstEmail(sel *goquery.Selection) string {
	var found string
	sel.Contents().EachWithBreak(func(_ int, child *goquery.Selection) bool {
		if goquery.NodeName(child) == "#text" {
			found = emailPattern.FindString(child.Text())
		} else {
			found = firstEmail(child)
		}
		return found == ""
	})
	return found
}
