package chat

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/railtel/railgpt/internal/api"
)

// UploadAll sends every staged file to the server concurrently and returns
// their server-side references in staging order. The relay is all-or-nothing:
// any failure cancels the remaining uploads and aborts the turn before the
// question is sent. Staged files are untouched either way, so a failed turn
// can be retried without re-selecting them.
func UploadAll(ctx context.Context, client *api.Client, files []StagedFile) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	refs := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for idx, file := range files {
		g.Go(func() error {
			f, err := os.Open(file.Path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", file.Name, err)
			}
			defer f.Close()

			ref, err := client.Upload(ctx, file.Name, f)
			if err != nil {
				return err
			}
			refs[idx] = ref
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}
