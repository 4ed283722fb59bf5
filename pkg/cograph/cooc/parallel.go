package cooc

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// CountParallel counts a corpus using up to workers goroutines. Documents are
// dealt round-robin to workers, each of which owns a private Counter; the
// shards are summed once all workers finish. The result equals Count.
//
// The context is checked between documents.
func CountParallel(ctx context.Context, corpus Corpus, width, workers int) (*Counter, error) {
	if workers > len(corpus) {
		workers = len(corpus)
	}
	if workers <= 1 {
		c := NewCounter()
		for _, doc := range corpus {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			c.AddDocument(doc, width)
		}
		return c, nil
	}

	shards := make([]*Counter, workers)
	g, gCtx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		shard := NewCounter()
		shards[w] = shard
		g.Go(func() error {
			for i := w; i < len(corpus); i += workers {
				if err := gCtx.Err(); err != nil {
					return err
				}
				shard.AddDocument(corpus[i], width)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := NewCounter()
	for _, s := range shards {
		merged.Merge(s)
	}
	return merged, nil
}
