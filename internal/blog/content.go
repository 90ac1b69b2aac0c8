package blog

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/jamesprial/cms-blog/internal/safety"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

// ContentRenderer prepares CMS posts for display: it sanitises the HTML body,
// fills in Markdown and plain text the CMS left empty, and drops cover images
// hosted outside the allowed asset domains.
type ContentRenderer struct {
	policy *bluemonday.Policy
	images *safety.Filter
}

// NewContentRenderer returns a renderer using the UGC sanitising policy.
// A nil images filter keeps every cover image.
func NewContentRenderer(images *safety.Filter) *ContentRenderer {
	return &ContentRenderer{
		policy: bluemonday.UGCPolicy(),
		images: images,
	}
}

// Render returns a display-ready copy of post. The input is not modified.
func (r *ContentRenderer) Render(post Post) (Post, error) {
	out := post

	if post.Content != nil {
		c := *post.Content
		c.HTML = r.policy.Sanitize(c.HTML)

		if strings.TrimSpace(c.Markdown) == "" && strings.TrimSpace(c.HTML) != "" {
			md, err := htmltomarkdown.ConvertString(c.HTML)
			if err != nil {
				return Post{}, fmt.Errorf("blog: render %q: convert to markdown: %w", post.Slug, err)
			}
			c.Markdown = md
		}
		if strings.TrimSpace(c.Text) == "" && strings.TrimSpace(c.HTML) != "" {
			text, err := plainText(c.HTML)
			if err != nil {
				return Post{}, fmt.Errorf("blog: render %q: extract text: %w", post.Slug, err)
			}
			c.Text = text
		}
		out.Content = &c
	}

	if post.CoverImage != nil && r.images != nil && !r.images.AllowsURL(post.CoverImage.URL) {
		out.CoverImage = nil
	}

	return out, nil
}

// plainText returns the visible text of an HTML fragment with whitespace
// collapsed to single spaces.
func plainText(fragment string) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.Join(strings.Fields(b.String()), " "), nil
}
