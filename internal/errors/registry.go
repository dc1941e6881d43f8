package errors

import "sort"

// Template defines a registered error type.
type Template struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
	DocURL     string
}

const docBase = "https://inertia.vango.dev/docs/errors/"

var registry = map[string]Template{
	// ============================================
	// Configuration (E100-E119)
	// ============================================

	"E100": {
		Category:   CategoryConfig,
		Message:    "Configuration file could not be parsed",
		Detail:     "The configuration file is not valid for its format. JSON, TOML and YAML are supported, chosen by file extension.",
		Suggestion: "Check the syntax near the reported line.",
		DocURL:     docBase + "E100",
	},
	"E101": {
		Category:   CategoryConfig,
		Message:    "Unknown configuration file format",
		Detail:     "Configuration files must end in .json, .toml, .yaml or .yml.",
		Suggestion: "Rename the file to inertia.json, inertia.toml or inertia.yaml.",
		DocURL:     docBase + "E101",
	},
	"E102": {
		Category:   CategoryConfig,
		Message:    "SSR enabled without entrypoints",
		Detail:     "Server-side rendering needs both the development entrypoint and the built entrypoint of the SSR bundle.",
		Suggestion: "Set ssr.entrypoint and ssr.buildEntrypoint, or disable ssr.",
		DocURL:     docBase + "E102",
	},
	"E103": {
		Category:   CategoryConfig,
		Message:    "Invalid SSR failure policy",
		Detail:     "The SSR policy decides what a failed render does: strict fails the request, degrade serves the page client-rendered.",
		Suggestion: `Set ssr.policy to "strict" or "degrade".`,
		DocURL:     docBase + "E103",
	},
	"E104": {
		Category:   CategoryConfig,
		Message:    "Invalid SSR endpoint",
		Detail:     "The SSR endpoint must be an absolute http or https URL of the render server.",
		Suggestion: "Use the default http://127.0.0.1:13714/render or the URL your render server listens on.",
		DocURL:     docBase + "E104",
	},

	// ============================================
	// Assets (E120-E139)
	// ============================================

	"E120": {
		Category:   CategoryAssets,
		Message:    "Asset manifest is invalid",
		Detail:     "The build manifest could not be decoded. It should map source entries to objects with a file field.",
		Suggestion: "Rebuild the client bundle with manifest output enabled.",
		DocURL:     docBase + "E120",
	},
	"E121": {
		Category:   CategoryAssets,
		Message:    "Asset manifest too large",
		Detail:     "The manifest exceeds the size accepted from remote sources.",
		Suggestion: "Check the manifest location points at the build manifest.",
		DocURL:     docBase + "E121",
	},

	// ============================================
	// Server-side rendering (E140-E159)
	// ============================================

	"E140": {
		Category:   CategorySSR,
		Message:    "Server-side render failed",
		Detail:     "The render server returned an error or could not be reached.",
		Suggestion: `Start the render server, or set ssr.policy = "degrade" to serve client-rendered pages when it is down.`,
		DocURL:     docBase + "E140",
	},
	"E141": {
		Category:   CategorySSR,
		Message:    "Server-side render returned no output",
		Detail:     "The renderer succeeded without producing a body.",
		Suggestion: "Check that the SSR entrypoint resolves the page component.",
		DocURL:     docBase + "E141",
	},
	"E142": {
		Category:   CategorySSR,
		Message:    "No SSR renderer configured",
		DocURL:     docBase + "E142",
		Suggestion: "Pass a render function to the dispatcher.",
	},

	// ============================================
	// Requests (E160-E179)
	// ============================================

	"E160": {
		Category:   CategoryRequest,
		Message:    "Page has no component",
		Detail:     "Every rendered page needs the name of the client-side component to mount.",
		Suggestion: `Pass a component name to Render, e.g. Render(w, r, "Users/Index", props).`,
		DocURL:     docBase + "E160",
	},
	"E161": {
		Category: CategoryRequest,
		Message:  "Shared data factory failed",
		Detail:   "A shared data factory returned an error, so no page could be built for the request.",
		DocURL:   docBase + "E161",
	},
	"E162": {
		Category: CategoryRequest,
		Message:  "Prop evaluation failed",
		Detail:   "A lazy prop returned an error while the page was built.",
		DocURL:   docBase + "E162",
	},

	// ============================================
	// CLI (E180-E199)
	// ============================================

	"E180": {
		Category:   CategoryCLI,
		Message:    "File not found",
		Suggestion: "Check the path, relative paths are resolved against the working directory.",
		DocURL:     docBase + "E180",
	},
	"E181": {
		Category:   CategoryCLI,
		Message:    "Address already in use",
		Detail:     "Another process is listening on the requested port.",
		Suggestion: "Stop the other process or pass a different --addr.",
		DocURL:     docBase + "E181",
	},
	"E182": {
		Category: CategoryCLI,
		Message:  "Index template is invalid",
		Detail:   "The index template must contain the @inertia placeholder where the page is mounted.",
		DocURL:   docBase + "E182",
	},
}

// AllCodes returns all registered error codes, sorted.
func AllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (Template, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template Template) {
	registry[code] = template
}
