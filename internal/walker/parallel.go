package walker

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/xuanyiying/filemover-cli/internal/types"
)

// ParallelWalk walks every root concurrently, one goroutine per root,
// and merges their entries into a single unordered channel. The first
// root to fail cancels the remaining walks via errgroup's derived
// context.
func ParallelWalk(ctx context.Context, roots []string, opts types.ScanOptions) (<-chan DirEntry, <-chan error) {
	out := make(chan DirEntry)
	errc := make(chan error, 1)
	g, gctx := errgroup.WithContext(ctx)

	for _, root := range roots {
		root := root
		g.Go(func() error {
			entries, rootErrc := Walk(gctx, root, opts)
			for e := range entries {
				select {
				case out <- e:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return <-rootErrc
		})
	}

	go func() {
		err := g.Wait()
		close(out)
		if err != nil {
			errc <- err
		}
		close(errc)
	}()

	return out, errc
}
