package validation

import (
	"bytes"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"
	"sync"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/microcosm-cc/bluemonday"
	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var blockBoundary = regexp.MustCompile(`(?i)<br\s*/?>|</(p|div|li|h[1-6]|tr|blockquote|pre)>`)

var (
	strictPolicyInstance *bluemonday.Policy
	richPolicyInstance   *bluemonday.Policy
	policiesOnce         sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policiesOnce.Do(func() {
		strictPolicyInstance = bluemonday.StrictPolicy()

		rich := bluemonday.NewPolicy()
		rich.AllowElements(
			"p", "br", "hr", "strong", "b", "em", "i", "u", "s",
			"ul", "ol", "li", "blockquote", "pre", "code",
			"h1", "h2", "h3", "h4", "h5", "h6",
		)
		rich.AllowAttrs("href", "title").OnElements("a")
		rich.AllowAttrs("src", "alt", "title").OnElements("img")
		rich.AllowStandardURLs()
		rich.AllowRelativeURLs(true)
		rich.RequireParseableURLs(true)
		richPolicyInstance = rich
	})

	return strictPolicyInstance, richPolicyInstance
}

// PlainText removes every tag, decodes entities, and collapses whitespace so
// the result fits on one line.
func PlainText(input string) string {
	if input == "" {
		return ""
	}

	strict, _ := policies()

	withBreaks := blockBoundary.ReplaceAllStringFunc(input, func(match string) string {
		return match + " "
	})

	return CollapseSpaces(html.UnescapeString(strict.Sanitize(withBreaks)))
}

// RichText sanitizes input against an allow-list of tags and attributes,
// resolves link and image targets against baseURL, drops targets that are not
// http, https or mailto, and converts the surviving HTML to markdown.
func RichText(input, baseURL string) (string, error) {
	if strings.TrimSpace(input) == "" {
		return "", nil
	}

	_, rich := policies()

	sanitized := rich.Sanitize(input)

	resolved, err := resolveTargets(sanitized, baseURL)
	if err != nil {
		return "", err
	}

	converter := md.NewConverter("", true, nil)

	markdown, err := converter.ConvertString(resolved)
	if err != nil {
		return "", fmt.Errorf("converting html to markdown: %w", err)
	}

	return strings.TrimSpace(markdown), nil
}

func resolveTargets(fragment, baseURL string) (string, error) {
	var base *url.URL

	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil {
			return "", fmt.Errorf("parsing base url: %w", err)
		}

		base = parsed
	}

	container := &nethtml.Node{Type: nethtml.ElementNode, Data: "body", DataAtom: atom.Body}

	nodes, err := nethtml.ParseFragment(strings.NewReader(fragment), container)
	if err != nil {
		return "", fmt.Errorf("parsing sanitized html: %w", err)
	}

	var buf bytes.Buffer

	for _, node := range nodes {
		rewriteTargets(node, base)

		err = nethtml.Render(&buf, node)
		if err != nil {
			return "", fmt.Errorf("rendering sanitized html: %w", err)
		}
	}

	return buf.String(), nil
}

func rewriteTargets(node *nethtml.Node, base *url.URL) {
	if node.Type == nethtml.ElementNode {
		kept := node.Attr[:0]

		for _, attr := range node.Attr {
			if attr.Key != "href" && attr.Key != "src" {
				kept = append(kept, attr)

				continue
			}

			target, ok := resolveTarget(attr.Val, base)
			if !ok {
				continue
			}

			attr.Val = target
			kept = append(kept, attr)
		}

		node.Attr = kept
	}

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		rewriteTargets(child, base)
	}
}

func resolveTarget(raw string, base *url.URL) (string, bool) {
	target, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	if !target.IsAbs() {
		if base == nil {
			return "", false
		}

		target = base.ResolveReference(target)
	}

	switch target.Scheme {
	case "http", "https", "mailto":
		return target.String(), true
	default:
		return "", false
	}
}
