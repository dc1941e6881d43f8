package inertia

import (
	"github.com/vango-dev/inertia/pkg/config"
	"github.com/vango-dev/inertia/pkg/negotiator"
	"github.com/vango-dev/inertia/pkg/shared"
	"github.com/vango-dev/inertia/pkg/ssr"
)

// Error types returned by the adapter. Use errors.As to inspect them.
type (
	// ConfigError reports an invalid configuration.
	ConfigError = config.Error

	// ComponentResolutionError reports a page without a component name.
	ComponentResolutionError = negotiator.ComponentError

	// SharedDataError reports a failed shared-data factory.
	SharedDataError = shared.Error

	// PropError reports a lazy prop that failed to evaluate.
	PropError = negotiator.PropError

	// RenderError reports a failed server-side render.
	RenderError = ssr.Error
)

// Sentinels wrapped by the error types above.
var (
	ErrSSREntrypoint = config.ErrSSREntrypoint
	ErrNoComponent   = negotiator.ErrNoComponent
)
