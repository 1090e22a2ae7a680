package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/kk-code-lab/rtree/internal/config"
	"github.com/kk-code-lab/rtree/internal/fs"
	"github.com/kk-code-lab/rtree/internal/logging"
	statepkg "github.com/kk-code-lab/rtree/internal/state"
	"github.com/spf13/cobra"
)

type listOptions struct {
	expand []string
	demo   bool
	all    bool
}

func newListCmd(root *rootOptions) *cobra.Command {
	opts := &listOptions{}
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "Print the visible tree and exit",
		Long: `Prints the tree the panel would show, one row per line. Directories
are marked "v" when expanded and ">" when collapsed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			defer func() { _ = logging.Sync() }()

			src, err := listSource(cmd.Context(), cfg, opts.demo, args)
			if err != nil {
				return err
			}
			lines, err := listRows(cmd.Context(), src, cfg, opts)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVarP(&opts.expand, "expand", "e", nil, "expand these directories")
	cmd.Flags().BoolVar(&opts.demo, "demo", false, "list a built-in sample tree mounted at /root1 and /root2")
	cmd.Flags().BoolVarP(&opts.all, "all", "a", false, "include ignored entries")
	return cmd
}

func listSource(ctx context.Context, cfg config.Config, demo bool, paths []string) (fs.Source, error) {
	if demo {
		return demoSource(), nil
	}
	if len(paths) == 0 {
		paths = []string{"."}
	}
	disk := fs.NewDiskSource(fs.WithLogger(logging.L()), fs.WithGitStatus(cfg.Panel.GitStatus))
	for _, p := range paths {
		if _, err := disk.AddRoot(ctx, p); err != nil {
			return nil, err
		}
	}
	return disk, nil
}

func demoSource() *fs.MemorySource {
	src := fs.NewMemorySource()
	src.AddRoot("root1", ".git/", "a/one.txt", "a/sub/", "b/", "C/", ".dockerignore")
	src.AddRoot("root2", "d/", "e/")
	return src
}

// listRows drives a panel without a terminal and formats its rows.
func listRows(ctx context.Context, src fs.Source, cfg config.Config, opts *listOptions) ([]string, error) {
	reducer := statepkg.NewPanelReducer(src,
		statepkg.WithLogger(logging.L()),
		statepkg.WithShowIgnored(opts.all),
	)
	defer reducer.Tasks().Close()

	state := statepkg.NewPanelState(cfg.Panel.DefaultWidth)
	reduce := func(action statepkg.Action) error {
		next, err := reducer.Reduce(state, action)
		if err != nil {
			return err
		}
		state = next
		return nil
	}

	if err := reduce(statepkg.SnapshotChangedAction{}); err != nil {
		return nil, err
	}
	if err := reduce(statepkg.SelectFirstAction{}); err != nil {
		return nil, err
	}
	for _, p := range opts.expand {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		root, entry, ok := fs.Lookup(src, abs)
		if !ok {
			return nil, fmt.Errorf("%s is not in the tree", p)
		}
		if err := reduce(statepkg.RevealEntryAction{ID: entry.ID}); err != nil {
			return nil, err
		}
		if entry.IsDir() && !state.Expansion.Expanded(root, entry.ID) {
			if err := reduce(statepkg.ExpandSelectedAction{}); err != nil {
				return nil, err
			}
		}
		// Expanding may load children on a task; pick them up before the next path.
		reducer.Tasks().Wait()
		if err := reduce(statepkg.SnapshotChangedAction{Root: root}); err != nil {
			return nil, err
		}
	}

	rows := statepkg.VisibleRows(state, src, 0, state.Projection.Len(), cfg.Display(), nil)
	return statepkg.FormatRows(rows), nil
}
