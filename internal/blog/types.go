// Package blog maps CMS query results to blog posts and navigation links and
// exposes them as MCP tools.
package blog

import (
	"context"
	"encoding/json"
	"strings"
)

// PostSummary is the list-view projection of a post.
type PostSummary struct {
	ID      string `json:"id"`
	Slug    string `json:"slug"`
	Title   string `json:"title"`
	Excerpt string `json:"excerpt"`
	Date    string `json:"date"`
}

// Content holds the rich-text body in every representation the CMS offers.
type Content struct {
	Raw      json.RawMessage `json:"raw,omitempty"`
	HTML     string          `json:"html"`
	Markdown string          `json:"markdown"`
	Text     string          `json:"text"`
}

// Image is a remote asset reference.
type Image struct {
	URL    string `json:"url"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Post is a full post snapshot.
type Post struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Excerpt     string   `json:"excerpt"`
	Date        string   `json:"date"`
	CreatedAt   string   `json:"createdAt,omitempty"`
	UpdatedAt   string   `json:"updatedAt,omitempty"`
	PublishedAt string   `json:"publishedAt,omitempty"`
	Content     *Content `json:"content,omitempty"`
	CoverImage  *Image   `json:"coverImage,omitempty"`
}

// PageRef is the local page a navigation link points at.
type PageRef struct {
	Slug string `json:"slug"`
}

// NavigationLink is one entry of a navigation menu.
type NavigationLink struct {
	ID          string   `json:"id"`
	DisplayText string   `json:"displayText"`
	ExternalURL *string  `json:"externalUrl"`
	Page        *PageRef `json:"page"`
}

// Href returns the link target: the external URL verbatim when set,
// otherwise "/<page slug>". It returns "" when the link has neither.
func (l NavigationLink) Href() string {
	if l.ExternalURL != nil && strings.TrimSpace(*l.ExternalURL) != "" {
		return *l.ExternalURL
	}
	if l.Page != nil && l.Page.Slug != "" {
		return "/" + strings.TrimPrefix(l.Page.Slug, "/")
	}
	return ""
}

// External reports whether Href leaves the site.
func (l NavigationLink) External() bool {
	return l.ExternalURL != nil && strings.TrimSpace(*l.ExternalURL) != ""
}

// BlogManager defines the read operations the blog needs from the CMS.
type BlogManager interface {
	ListPosts(ctx context.Context) ([]PostSummary, error)
	// GetPost reports found == false, with a nil error, when no post has slug.
	GetPost(ctx context.Context, slug string) (post Post, found bool, err error)
	Navigation(ctx context.Context, navID string) ([]NavigationLink, error)
}
