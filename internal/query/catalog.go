// Package query holds the catalog of GraphQL documents the blog sends to the
// headless CMS, together with the variables each one requires. It performs no
// I/O; transports consume Definitions and decide how to send them.
package query

import (
	"errors"
	"fmt"
	"maps"
	"strings"
)

var (
	// ErrEmptyDocument is returned by Validate when a Definition has no
	// GraphQL document.
	ErrEmptyDocument = errors.New("query: document is empty")

	// ErrMissingVariable is returned by Validate when a required variable is
	// absent, nil, or a blank string.
	ErrMissingVariable = errors.New("query: missing required variable")
)

// Catalog operation names.
const (
	NameAllPosts      = "AllPosts"
	NameSinglePost    = "SinglePost"
	NameGetNavigation = "GetNavigation"
	NameSchemaFields  = "SchemaFields"
	NameAdhoc         = "Adhoc"
)

// Definition describes one GraphQL operation and the shape of its answer.
type Definition struct {
	Name      string
	Document  string
	Variables map[string]any
	// Required lists the variable names that must be bound before sending.
	Required []string
	// Root is the top-level field expected under "data". Empty disables the
	// check and the whole data object is returned.
	Root string
	// Nullable reports whether a null Root is a valid "absent" answer.
	Nullable bool
}

const allPostsDocument = `query AllPosts {
  posts(orderBy: publishedAt_DESC) {
    id
    excerpt
    slug
    title
    date
  }
}`

const singlePostDocument = `query SinglePost($slug: String!) {
  post(where: { slug: $slug }) {
    id
    createdAt
    updatedAt
    publishedAt
    title
    slug
    date
    excerpt
    content {
      raw
      html
      markdown
      text
    }
    coverImage {
      url
      width
      height
    }
  }
}`

const getNavigationDocument = `query GetNavigation($id: ID!) {
  navigation(where: { id: $id }) {
    link {
      id
      displayText
      externalUrl
      page {
        slug
      }
    }
  }
}`

// ListPosts returns the query for every published post summary, newest
// first. Ordering is requested from the CMS, not enforced locally.
func ListPosts() Definition {
	return Definition{
		Name:     NameAllPosts,
		Document: allPostsDocument,
		Root:     "posts",
	}
}

// PostBySlug returns the query for a single post. A null "post" field means
// no post has that slug.
func PostBySlug(slug string) Definition {
	return Definition{
		Name:      NameSinglePost,
		Document:  singlePostDocument,
		Variables: map[string]any{"slug": slug},
		Required:  []string{"slug"},
		Root:      "post",
		Nullable:  true,
	}
}

// NavigationByID returns the query for the ordered links of one navigation.
func NavigationByID(navID string) Definition {
	return Definition{
		Name:      NameGetNavigation,
		Document:  getNavigationDocument,
		Variables: map[string]any{"id": navID},
		Required:  []string{"id"},
		Root:      "navigation",
	}
}

const schemaFieldsDocument = `query SchemaFields {
  __schema {
    queryType {
      fields {
        name
      }
    }
  }
}`

// SchemaFields returns the introspection query listing the root query fields
// the CMS exposes. Useful when a catalog query starts failing with
// "Cannot query field" errors after a schema change.
func SchemaFields() Definition {
	return Definition{
		Name:     NameSchemaFields,
		Document: schemaFieldsDocument,
		Root:     "__schema",
	}
}

// Adhoc wraps a caller-supplied document. No root field is expected.
func Adhoc(document string, variables map[string]any) Definition {
	return Definition{
		Name:      NameAdhoc,
		Document:  document,
		Variables: variables,
	}
}

// Validate checks the definition locally so a malformed request never reaches
// the network.
func (d Definition) Validate() error {
	if strings.TrimSpace(d.Document) == "" {
		return ErrEmptyDocument
	}
	for _, name := range d.Required {
		v, ok := d.Variables[name]
		if !ok || v == nil {
			return fmt.Errorf("%w %q", ErrMissingVariable, name)
		}
		if s, isString := v.(string); isString && strings.TrimSpace(s) == "" {
			return fmt.Errorf("%w %q: empty string", ErrMissingVariable, name)
		}
	}
	return nil
}

// Bind returns a copy of the variables suitable for encoding. The result is
// never nil so it always encodes as a JSON object.
func (d Definition) Bind() map[string]any {
	vars := make(map[string]any, len(d.Variables))
	maps.Copy(vars, d.Variables)
	return vars
}
