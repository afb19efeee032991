package clientcli

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

type uploadPage struct {
	ok     bool
	path   string
	etag   string
	reason string
}

// parseUploadPage reads the outcome out of the HTML page the server answers
// an upload with.
func parseUploadPage(r io.Reader) (uploadPage, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return uploadPage{}, fmt.Errorf("parse page: %w", err)
	}

	var page uploadPage
	found := false

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch attr(n, "class") {
			case "success":
				page.ok, found = true, true
			case "failure":
				found = true
			case "path":
				page.path = textContent(n)
			case "etag":
				page.etag = textContent(n)
			case "reason":
				page.reason = textContent(n)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if !found {
		return uploadPage{}, fmt.Errorf("parse page: no upload outcome")
	}
	return page, nil
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
