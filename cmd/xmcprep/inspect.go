package main

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/hupe1980/xmcdata"
	"github.com/hupe1980/xmcdata/blobstore"
	"github.com/hupe1980/xmcdata/manifest"
	"github.com/hupe1980/xmcdata/persistence"
	"github.com/hupe1980/xmcdata/trim"
	"github.com/spf13/cobra"
)

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [blob...]",
		Short: "Describe cached matrices without loading them",
		Long: `Print the layout of cached matrices: shape, nonzeros, compression and
stored section sizes. Without arguments the X and Y caches of --split are
shown together with their masks and manifest.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runInspect(cmd, args)
		},
	}
}

func (a *app) runInspect(cmd *cobra.Command, names []string) error {
	ctx := cmd.Context()
	store, err := a.cfg.openStore(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		store = blobstore.NewLocalStore(a.cfg.Dir)
	}

	out := cmd.OutOrStdout()
	defaults := len(names) == 0
	if defaults {
		x, y, _ := xmcdata.CacheNames(a.cfg.Split)
		names = []string{x, y}
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BLOB\tROWS\tCOLS\tNNZ\tCOMPRESSION\tSTORED")
	for _, name := range names {
		info, err := persistence.StatBlob(ctx, store, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n",
			name, info.Rows, info.Cols, info.NNZ, info.Compression, formatStored(info.Stored))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if !defaults {
		return nil
	}
	if err := inspectMasks(cmd, store, a.cfg.Split, out); err != nil {
		return err
	}
	return inspectManifest(cmd, store, a.cfg.Split, out)
}

func inspectMasks(cmd *cobra.Command, store blobstore.BlobStore, split string, out io.Writer) error {
	_, _, name := xmcdata.CacheNames(split)
	raw, err := blobstore.ReadAll(cmd.Context(), store, name)
	if errors.Is(err, blobstore.ErrNotFound) {
		fmt.Fprintln(out, "masks: none")
		return nil
	}
	if err != nil {
		return err
	}
	features, labels, err := trim.UnmarshalMasks(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	fmt.Fprintf(out, "feature mask: %s\nlabel mask: %s\n", describeMask(features), describeMask(labels))
	return nil
}

func inspectManifest(cmd *cobra.Command, store blobstore.BlobStore, split string, out io.Writer) error {
	m, err := manifest.NewStore(store, nil).Load(cmd.Context(), split)
	if errors.Is(err, blobstore.ErrNotFound) {
		fmt.Fprintln(out, "manifest: none")
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "manifest: %d of %d source rows kept, min_words=%d min_labels=%d, created %s\n",
		m.Rows, m.SourceRows, m.MinWords, m.MinLabels, m.CreatedAt.Format("2006-01-02 15:04:05"))
	return nil
}

func formatStored(stored map[string]int64) string {
	keys := make([]string, 0, len(stored))
	for k := range stored {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%d", k, stored[k])
	}
	return strings.Join(parts, " ")
}
