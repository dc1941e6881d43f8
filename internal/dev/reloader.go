package dev

import (
	"context"
	"log/slog"

	"github.com/vango-dev/inertia/pkg/assets"
)

// Reloader applies watcher changes: manifest changes refresh the asset
// manifest and announce the new version, other changes reload browsers.
type Reloader struct {
	hub      *ReloadServer
	manifest *assets.Manifest
	source   assets.Source
	logger   *slog.Logger
}

// NewReloader creates a Reloader. manifest and source may be nil when no
// build manifest is used.
func NewReloader(hub *ReloadServer, manifest *assets.Manifest, source assets.Source) *Reloader {
	if manifest != nil {
		hub.SetVersion(manifest.Version)
	}
	return &Reloader{
		hub:      hub,
		manifest: manifest,
		source:   source,
		logger:   slog.Default().With("component", "dev"),
	}
}

// Handle applies one change.
func (r *Reloader) Handle(ctx context.Context, c Change) {
	switch c.Type {
	case ChangeManifest:
		if r.manifest == nil || r.source == nil {
			r.hub.NotifyReload()
			return
		}
		changed, err := assets.Refresh(ctx, r.manifest, r.source)
		if err != nil {
			r.logger.Warn("manifest refresh failed", "source", r.source.String(), "error", err)
			r.hub.NotifyError(err.Error())
			return
		}
		r.hub.ClearError()
		if changed {
			r.logger.Info("asset version changed", "version", r.manifest.Version())
			r.hub.NotifyVersion(r.manifest.Version())
		}
	case ChangeCSS:
		r.hub.NotifyCSS(c.Path)
	default:
		r.logger.Debug("file changed", "path", c.Path, "type", c.Type.String())
		r.hub.NotifyReload()
	}
}
