// Package builtin holds the extensions compiled into the clipper.
package builtin

import "github.com/MrSnakeDoc/webclipper/internal/extension"

// RootPath is the clipper's landing route; most extensions do nothing there.
const RootPath = "/"

// All returns the built-in extensions in their default order.
func All(trustedImageOrigin string) []extension.Extension {
	return []extension.Extension{
		NewUploadImage(trustedImageOrigin),
		PageLink{},
		Screenshot{},
	}
}
