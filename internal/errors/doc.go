// Package errors turns adapter errors into coded, actionable CLI messages.
//
// Every failure the CLI can surface has a code (e.g. "E102") mapping to a
// short message, a detailed explanation, a fix suggestion and a
// documentation link. Classify recognizes the typed errors and sentinels
// of the adapter packages:
//
//	res, err := config.Resolve(cfg)
//	if err != nil {
//	    errors.PrintError(os.Stderr, errors.Classify(err))
//	}
//
// Configuration parse errors carry the file location, and Format prints
// the surrounding lines:
//
//	ERROR E100: Configuration file could not be parsed
//
//	  inertia.toml:4
//
//	       3 │ [ssr]
//	  →    4 │ enabled = yes
//	       5 │ entrypoint = "src/ssr.tsx"
//
//	  Hint: Check the syntax near the reported line.
package errors
