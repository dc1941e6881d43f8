// Package dev provides development-mode live reload.
//
// This package implements:
//   - File watching for the index template, build manifest and assets
//   - WebSocket-based browser refresh
//   - Asset version bumps when the manifest changes
//   - Error overlay in the browser for broken builds
//
// # Architecture
//
//   - Watcher: polls watched paths for modifications
//   - ReloadServer: notifies browsers of changes via WebSocket
//   - Reloader: turns watcher changes into manifest refreshes and
//     browser notifications
//
// # Usage
//
//	hub := dev.NewReloadServer()
//	reloader := dev.NewReloader(hub, manifest, assets.FileSource{Path: manifestPath})
//
//	w := dev.NewWatcher(dev.WatcherConfig{Paths: dev.WatchPaths(cfg, manifestPath)})
//	w.OnChange(func(c dev.Change) { reloader.Handle(ctx, c) })
//	go w.Start(ctx)
//
//	r.Get(dev.ReloadPath, hub.HandleWebSocket)
//
// # Reload Protocol
//
// The browser connects to /__inertia/reload via WebSocket.
// Messages are JSON-encoded:
//
//	{"type": "version", "version": "..."} // Sent on connect and on manifest change
//	{"type": "reload"}                    // Triggers full page reload
//	{"type": "css"}                       // Triggers CSS-only reload
//	{"type": "error", "error": "..."}     // Shows error overlay
//	{"type": "clear"}                     // Clears error overlay
//
// A version message whose version differs from the one the page was
// rendered with reloads the page.
package dev
