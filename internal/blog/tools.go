package blog

import (
	"context"
	"errors"
	"time"

	"github.com/jamesprial/cms-blog/internal/graphql"
	"github.com/jamesprial/cms-blog/internal/safety"
	"github.com/jamesprial/cms-blog/internal/tools"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	toolNameListPosts  = "blog_list_posts"
	toolNameGetPost    = "blog_get_post"
	toolNameNavigation = "blog_get_navigation"
	toolNameHome       = "blog_home"
)

var (
	errPreviewUnavailable = errors.New("preview mode is not configured (set CMS_PREVIEW_TOKEN)")
	errNavIDRequired      = errors.New("nav_id is required (no default navigation configured)")
)

// Managers holds the published-content manager and, when a preview token is
// configured, the draft-content one.
type Managers struct {
	Published BlogManager
	Preview   BlogManager
}

func (m Managers) pick(preview bool) (BlogManager, error) {
	if !preview {
		return m.Published, nil
	}
	if m.Preview == nil {
		return nil, errPreviewUnavailable
	}
	return m.Preview, nil
}

// Tools bundles the dependencies shared by every blog tool handler.
type Tools struct {
	Managers     Managers
	Renderer     *ContentRenderer
	DefaultNavID string
	Audit        *safety.AuditLogger
}

// linkView is a navigation link with its route resolved.
type linkView struct {
	ID          string `json:"id"`
	DisplayText string `json:"displayText"`
	Href        string `json:"href"`
	External    bool   `json:"external"`
}

func linkViews(links []NavigationLink) []linkView {
	views := make([]linkView, len(links))
	for i, l := range links {
		views[i] = linkView{ID: l.ID, DisplayText: l.DisplayText, Href: l.Href(), External: l.External()}
	}
	return views
}

// BlogTools returns the MCP tool registrations for the blog package. All blog
// tools are read-only.
func BlogTools(deps Tools) []tools.Registration {
	return []tools.Registration{
		listPostsTool(deps),
		getPostTool(deps),
		navigationTool(deps),
		homeTool(deps),
	}
}

func withPreview() mcp.ToolOption {
	return mcp.WithBoolean("preview",
		mcp.Description("Read draft content using the preview token. Defaults to false."),
	)
}

// failure logs and returns an error result. Client errors keep their kind.
func failure(audit *safety.AuditLogger, tool string, params map[string]any, err error, start time.Time) *mcp.CallToolResult {
	tools.LogAudit(audit, tool, params, "error: "+err.Error(), start)
	if graphql.KindOf(err) == graphql.KindUnknown {
		return tools.ErrorResult(err.Error())
	}
	return tools.ErrorResult(graphql.Describe(err))
}

// listPostsTool registers the blog_list_posts MCP tool.
func listPostsTool(deps Tools) tools.Registration {
	tool := mcp.NewTool(toolNameListPosts,
		mcp.WithDescription("List blog posts, newest first, with id, slug, title, excerpt and date."),
		withPreview(),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		preview := req.GetBool("preview", false)
		params := map[string]any{"preview": preview}

		mgr, err := deps.Managers.pick(preview)
		if err != nil {
			return failure(deps.Audit, toolNameListPosts, params, err, start), nil
		}

		posts, err := mgr.ListPosts(ctx)
		if err != nil {
			return failure(deps.Audit, toolNameListPosts, params, err, start), nil
		}

		tools.LogAudit(deps.Audit, toolNameListPosts, params, "ok", start)
		return tools.JSONResult(posts), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

// getPostTool registers the blog_get_post MCP tool.
func getPostTool(deps Tools) tools.Registration {
	tool := mcp.NewTool(toolNameGetPost,
		mcp.WithDescription("Get one blog post by slug, including sanitised HTML, Markdown and plain-text bodies. Returns found=false when no post has the slug."),
		mcp.WithString("slug",
			mcp.Required(),
			mcp.Description("The post slug."),
		),
		withPreview(),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		slug := req.GetString("slug", "")
		preview := req.GetBool("preview", false)
		params := map[string]any{"slug": slug, "preview": preview}

		mgr, err := deps.Managers.pick(preview)
		if err != nil {
			return failure(deps.Audit, toolNameGetPost, params, err, start), nil
		}

		post, found, err := mgr.GetPost(ctx, slug)
		if err != nil {
			return failure(deps.Audit, toolNameGetPost, params, err, start), nil
		}
		if !found {
			tools.LogAudit(deps.Audit, toolNameGetPost, params, "not found", start)
			return tools.LookupResult(nil, false), nil
		}

		if deps.Renderer != nil {
			post, err = deps.Renderer.Render(post)
			if err != nil {
				return failure(deps.Audit, toolNameGetPost, params, err, start), nil
			}
		}

		tools.LogAudit(deps.Audit, toolNameGetPost, params, "ok", start)
		return tools.LookupResult(post, true), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

// navigationTool registers the blog_get_navigation MCP tool.
func navigationTool(deps Tools) tools.Registration {
	tool := mcp.NewTool(toolNameNavigation,
		mcp.WithDescription("Get the ordered links of a navigation menu with resolved hrefs. External URLs are returned verbatim; other links route to /<page slug>."),
		mcp.WithString("nav_id",
			mcp.Description("The navigation ID. Defaults to the configured default navigation."),
		),
		withPreview(),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		navID := req.GetString("nav_id", deps.DefaultNavID)
		preview := req.GetBool("preview", false)
		params := map[string]any{"nav_id": navID, "preview": preview}

		if navID == "" {
			return failure(deps.Audit, toolNameNavigation, params, errNavIDRequired, start), nil
		}
		mgr, err := deps.Managers.pick(preview)
		if err != nil {
			return failure(deps.Audit, toolNameNavigation, params, err, start), nil
		}

		links, err := mgr.Navigation(ctx, navID)
		if err != nil {
			return failure(deps.Audit, toolNameNavigation, params, err, start), nil
		}

		tools.LogAudit(deps.Audit, toolNameNavigation, params, "ok", start)
		return tools.JSONResult(linkViews(links)), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}

// homeView is the blog_home result.
type homeView struct {
	Posts []PostSummary `json:"posts"`
	Links []linkView    `json:"links"`
}

// homeTool registers the blog_home MCP tool.
func homeTool(deps Tools) tools.Registration {
	tool := mcp.NewTool(toolNameHome,
		mcp.WithDescription("Fetch the front page: the post list and the navigation links, loaded in parallel."),
		mcp.WithString("nav_id",
			mcp.Description("The navigation ID. Defaults to the configured default navigation; when neither is set no links are loaded."),
		),
		withPreview(),
	)

	handler := func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		start := time.Now()
		navID := req.GetString("nav_id", deps.DefaultNavID)
		preview := req.GetBool("preview", false)
		params := map[string]any{"nav_id": navID, "preview": preview}

		mgr, err := deps.Managers.pick(preview)
		if err != nil {
			return failure(deps.Audit, toolNameHome, params, err, start), nil
		}

		home, err := LoadHome(ctx, mgr, navID)
		if err != nil {
			return failure(deps.Audit, toolNameHome, params, err, start), nil
		}

		tools.LogAudit(deps.Audit, toolNameHome, params, "ok", start)
		return tools.JSONResult(homeView{Posts: home.Posts, Links: linkViews(home.Links)}), nil
	}

	return tools.Registration{Tool: tool, Handler: server.ToolHandlerFunc(handler)}
}
