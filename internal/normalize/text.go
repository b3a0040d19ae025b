// Text cleanup helpers shared by the processing pipeline.

package normalize

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var controlRegex = regexp.MustCompile(`[\x00-\x1f\x7f-\x9f]`)

// CleanText strips markup, control characters and redundant whitespace.
// Returns "" when nothing readable remains.
func CleanText(text string) string {
	if text == "" {
		return ""
	}

	if strings.ContainsAny(text, "<>") {
		text = stripMarkup(text)
	}
	text = controlRegex.ReplaceAllString(text, "")

	//collapse whitespace
	return strings.Join(strings.Fields(text), " ")
}

// stripMarkup drops tags by parsing the fragment and walking text nodes.
func stripMarkup(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	var sb strings.Builder
	extractText(doc, &sb)
	return sb.String()
}

func extractText(n *html.Node, sb *strings.Builder) {
	if n.Type == html.TextNode {
		sb.WriteString(n.Data)
		sb.WriteString(" ")
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == "script" || c.Data == "style") {
			continue
		}
		extractText(c, sb)
	}
}

// Fold lower-cases and removes diacritics so keyword matching treats
// "Développeur" and "developpeur" the same.
func Fold(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		return strings.ToLower(str)
	}
	return strings.ToLower(result)
}

// AbsoluteURL resolves ref against base. Already-absolute refs pass through.
func AbsoluteURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}
