// Package config resolves user-supplied adapter settings into a fully
// populated, immutable configuration.
//
// Defaults are substituted field by field, and only for absent values:
// an explicitly configured false for EncryptHistory survives resolution.
//
//	cfg, err := config.Resolve(config.Config{
//	    AssetVersion: "2024-06-01",
//	    SSR: config.SSRConfig{
//	        Enabled:         true,
//	        Entrypoint:      "src/ssr.tsx",
//	        BuildEntrypoint: "build/ssr/ssr.js",
//	    },
//	})
//	if err != nil {
//	    log.Fatal(err) // *config.Error: refuse to start
//	}
//
// The SSR settings resolve to one of two variants, SSRDisabled or
// SSREnabled; entrypoint paths only exist on the enabled variant.
//
// # Configuration Files
//
// Load reads the same settings from JSON, TOML or YAML, chosen by file
// extension:
//
//	# inertia.toml
//	root_element_id = "app"
//	asset_version = "v2"
//	encrypt_history = false
//
//	[ssr]
//	enabled = true
//	entrypoint = "src/ssr.tsx"
//	build_entrypoint = "build/ssr/ssr.js"
//
// Shared data factories cannot be expressed in files; literal shared
// values can, under the "shared" key.
package config
