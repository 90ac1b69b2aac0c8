package blog

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Home is everything the front page needs.
type Home struct {
	Posts []PostSummary    `json:"posts"`
	Links []NavigationLink `json:"links"`
}

// LoadHome fetches the post list and the navigation links concurrently and
// waits for both. The first failure cancels the other request and is
// returned. An empty navID skips the navigation request.
func LoadHome(ctx context.Context, mgr BlogManager, navID string) (Home, error) {
	var home Home
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		posts, err := mgr.ListPosts(gctx)
		if err != nil {
			return err
		}
		home.Posts = posts
		return nil
	})

	if navID != "" {
		g.Go(func() error {
			links, err := mgr.Navigation(gctx, navID)
			if err != nil {
				return err
			}
			home.Links = links
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Home{}, err
	}
	if home.Links == nil {
		home.Links = []NavigationLink{}
	}
	return home, nil
}
