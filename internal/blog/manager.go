package blog

import (
	"context"
	"fmt"

	"github.com/jamesprial/cms-blog/internal/graphql"
	"github.com/jamesprial/cms-blog/internal/query"
)

// Compile-time interface check.
var _ BlogManager = (*GraphQLBlogManager)(nil)

// GraphQLBlogManager implements BlogManager with catalog queries sent through
// a graphql.Client.
type GraphQLBlogManager struct {
	client graphql.Client
}

// NewGraphQLBlogManager returns a GraphQLBlogManager backed by client.
func NewGraphQLBlogManager(client graphql.Client) *GraphQLBlogManager {
	if client == nil {
		panic("graphql client must not be nil")
	}
	return &GraphQLBlogManager{client: client}
}

// navigationResponse is the "navigation" root of GetNavigation.
type navigationResponse struct {
	Link []NavigationLink `json:"link"`
}

// ListPosts returns post summaries in the order the CMS sent them. An empty
// list is returned as a non-nil empty slice.
func (m *GraphQLBlogManager) ListPosts(ctx context.Context) ([]PostSummary, error) {
	posts, _, err := graphql.Decode[[]PostSummary](ctx, m.client, query.ListPosts())
	if err != nil {
		return nil, fmt.Errorf("blog: list posts: %w", err)
	}
	if posts == nil {
		posts = []PostSummary{}
	}
	return posts, nil
}

// GetPost fetches a single post by slug.
func (m *GraphQLBlogManager) GetPost(ctx context.Context, slug string) (Post, bool, error) {
	post, found, err := graphql.Decode[Post](ctx, m.client, query.PostBySlug(slug))
	if err != nil {
		return Post{}, false, fmt.Errorf("blog: get post %q: %w", slug, err)
	}
	return post, found, nil
}

// Navigation returns the links of navID in CMS order.
func (m *GraphQLBlogManager) Navigation(ctx context.Context, navID string) ([]NavigationLink, error) {
	nav, _, err := graphql.Decode[navigationResponse](ctx, m.client, query.NavigationByID(navID))
	if err != nil {
		return nil, fmt.Errorf("blog: navigation %q: %w", navID, err)
	}
	links := nav.Link
	if links == nil {
		links = []NavigationLink{}
	}
	return links, nil
}
