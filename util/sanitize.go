package util

import (
	"bytes"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// tags which survive sanitizing, everything else is unwrapped or dropped
var allowedTags = map[string]interface{}{
	"a": struct{}{}, "blockquote": struct{}{}, "br": struct{}{}, "code": struct{}{},
	"em": struct{}{}, "h1": struct{}{}, "h2": struct{}{}, "h3": struct{}{}, "h4": struct{}{},
	"li": struct{}{}, "ol": struct{}{}, "p": struct{}{}, "pre": struct{}{},
	"strong": struct{}{}, "sub": struct{}{}, "sup": struct{}{}, "ul": struct{}{},
}

// tags whose content is dropped along with the tag
var droppedTags = map[string]interface{}{
	"script": struct{}{}, "style": struct{}{}, "iframe": struct{}{}, "object": struct{}{},
}

// SanitizeHTML keeps basic formatting tags and strips everything else,
// including all attributes except safe href values. Markdown renderer output
// goes through here before it is embedded into a page.
func SanitizeHTML(input io.Reader) (string, error) {

	parsed, err := html.ParseFragment(
		io.MultiReader(
			strings.NewReader("<body>"),
			input,
			strings.NewReader("</body>"),
		),
		&html.Node{
			Type:     html.ElementNode,
			DataAtom: atom.Html,
			Data:     "html",
		},
	)
	if err != nil {
		return "", err
	}

	body := parsed[1] // [0] is head, [1] is body

	sanitizeNode(body)

	var buf = &bytes.Buffer{}
	for node := body.FirstChild; node != nil; node = node.NextSibling {
		if err := html.Render(buf, node); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func sanitizeNode(node *html.Node) {

	for child := node.FirstChild; child != nil; {

		next := child.NextSibling // sanitizeNode might detach child

		switch child.Type {
		case html.ElementNode:
			if _, ok := droppedTags[child.Data]; ok {
				node.RemoveChild(child)
			} else if _, ok := allowedTags[child.Data]; ok {
				sanitizeAttrs(child)
				sanitizeNode(child)
			} else {
				// unwrap: keep the children, drop the tag
				sanitizeNode(child)
				for grandchild := child.FirstChild; grandchild != nil; grandchild = child.FirstChild {
					child.RemoveChild(grandchild)
					node.InsertBefore(grandchild, child)
				}
				node.RemoveChild(child)
			}
		case html.TextNode:
			// keep
		default:
			node.RemoveChild(child)
		}

		child = next
	}
}

func sanitizeAttrs(node *html.Node) {
	var kept = node.Attr[:0]
	for _, attr := range node.Attr {
		if node.Data == "a" && attr.Key == "href" {
			if strings.HasPrefix(attr.Val, "http://") || strings.HasPrefix(attr.Val, "https://") || strings.HasPrefix(attr.Val, "mailto:") {
				kept = append(kept, attr)
			}
		}
	}
	node.Attr = kept
}
