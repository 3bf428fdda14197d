package storage

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// SignAll signs every non-empty key concurrently and returns key to URL.
// Empty keys are skipped. The first signing failure aborts the batch.
func SignAll(ctx context.Context, store Store, keys []string) (map[string]string, error) {
	urls := make([]string, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(8)

	for i, key := range keys {
		if key == "" {
			continue
		}
		g.Go(func() error {
			u, err := store.SignedURL(gctx, key)
			if err != nil {
				return err
			}
			urls[i] = u
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(keys))
	for i, key := range keys {
		if key != "" {
			out[key] = urls[i]
		}
	}
	return out, nil
}
