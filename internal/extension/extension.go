// Package extension runs compiled-in tool extensions against the current clip.
//
// An extension always has metadata and an applicability predicate. The three
// run phases are optional capabilities, detected by type assertion:
//
//	Injector       runs in the page before anything else
//	PostProcessor  transforms the clip with a RunContext
//	Destroyer      cleans the page up afterwards
package extension

import (
	"context"

	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/notify"
	"github.com/MrSnakeDoc/webclipper/internal/rehost"
)

// Meta is the identity of an extension; Name must be unique in a registry.
type Meta = domain.ExtensionMeta

// InitContext is what applicability predicates look at.
type InitContext struct {
	Pathname    string
	AccountType string
}

// Extension is the minimum every registered extension implements.
type Extension interface {
	Meta() Meta
	Applicable(ic InitContext) bool
}

// Injector runs in the active page; its return value seeds RunContext.Result.
type Injector interface {
	Inject(ctx context.Context, tab browser.Tab) (any, error)
}

// PostProcessor receives the page result and the current clip; its return value
// becomes the run result.
type PostProcessor interface {
	PostProcess(ctx context.Context, rc *RunContext) (any, error)
}

// Destroyer undoes page-side effects once the run is over.
type Destroyer interface {
	Teardown(ctx context.Context, tab browser.Tab) error
}

// RunContext is built fresh for each post-process phase.
type RunContext struct {
	// Result is what the inject phase returned (nil without one).
	Result any
	// Data is the clip of Pathname, read after the inject phase.
	Data     domain.Clip
	Pathname string

	Message notify.Sink
	// ImageService is nil when the current account has no image hosting.
	ImageService      rehost.ImageUploader
	LoadImage         func(dataURL string) (domain.ImageClip, error)
	CaptureVisibleTab func(ctx context.Context) (string, error)
	Logger            logger.Logger
}
