package main

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
	ierrors "github.com/vango-dev/inertia/internal/errors"
	"github.com/vango-dev/inertia/pkg/config"
	"github.com/vango-dev/inertia/pkg/shared"
)

func configCmd() *cobra.Command {
	var (
		file   string
		dev    bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Resolve and print the configuration",
		Long: `Load the configuration file, apply defaults and validate it.

The file is inertia.json, inertia.toml, inertia.yaml or inertia.yml in
the working directory unless --file is given.

Examples:
  inertia config
  inertia config --file deploy/inertia.toml --dev
  inertia config --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolved, path, err := loadConfig(file, dev)
			if err != nil {
				coded := ierrors.ClassifyFile(err, path)
				if asJSON {
					fmt.Fprintln(cmd.OutOrStdout(), coded.FormatJSON())
					return errReported
				}
				return coded
			}
			return printConfig(cmd.OutOrStdout(), resolved, path)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Configuration file (default: search the working directory)")
	cmd.Flags().BoolVar(&dev, "dev", false, "Resolve in development mode")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print errors as JSON")

	return cmd
}

// loadConfig reads file, or the working directory's configuration file,
// and resolves it. The returned path is empty when no file was found.
func loadConfig(file string, dev bool) (*config.Resolved, string, error) {
	var (
		cfg config.Config
		err error
	)
	if file != "" {
		cfg, err = config.Load(file)
	} else {
		cfg, file, err = config.LoadFromWorkingDir()
	}
	if err != nil {
		return nil, file, err
	}
	if dev {
		cfg.Dev = true
	}
	resolved, err := config.Resolve(cfg)
	return resolved, file, err
}

type configView struct {
	Source               string         `json:"source"`
	RootElementID        string         `json:"rootElementId"`
	AssetVersion         string         `json:"assetVersion"`
	EncryptHistory       bool           `json:"encryptHistory"`
	Shared               []string       `json:"shared"`
	IndexEntrypoint      string         `json:"indexEntrypoint"`
	IndexBuildEntrypoint string         `json:"indexBuildEntrypoint"`
	Index                string         `json:"index"`
	Dev                  bool           `json:"dev"`
	BuildTool            map[string]any `json:"buildTool"`
	SSR                  map[string]any `json:"ssr"`
}

func printConfig(w io.Writer, r *config.Resolved, path string) error {
	if path == "" {
		path = "(defaults)"
	}
	view := configView{
		Source:               path,
		RootElementID:        r.RootElementID,
		AssetVersion:         r.AssetVersion,
		EncryptHistory:       r.EncryptHistory,
		Shared:               sharedKeys(r.SharedData),
		IndexEntrypoint:      r.IndexEntrypoint,
		IndexBuildEntrypoint: r.IndexBuildEntrypoint,
		Index:                r.IndexPath(),
		Dev:                  r.Dev,
		BuildTool: map[string]any{
			"middlewareMode": r.BuildTool.MiddlewareMode,
			"url":            r.BuildTool.URL,
			"appType":        r.BuildTool.AppType,
		},
		SSR: map[string]any{"enabled": false},
	}
	if s, ok := r.SSREnabled(); ok {
		view.SSR = map[string]any{
			"enabled":    true,
			"entrypoint": s.EntrypointFor(r.Dev),
			"endpoint":   s.Endpoint,
			"policy":     s.Policy,
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

func sharedKeys(d shared.Data) []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
