package builtin

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
)

const (
	ScreenshotName = "screenshot"
	ScreenshotPath = "/plugins/screenshot"
)

// Screenshot replaces the clip with a capture of the visible tab.
// The clipper overlay is hidden while capturing and shown again afterwards.
type Screenshot struct{}

func (Screenshot) Meta() extension.Meta {
	return extension.Meta{
		Name:        ScreenshotName,
		Icon:        "camera",
		Version:     "0.0.1",
		Description: "Capture the visible part of the page",
	}
}

func (Screenshot) Applicable(ic extension.InitContext) bool {
	return ic.Pathname == ScreenshotPath
}

func (Screenshot) Inject(ctx context.Context, tab browser.Tab) (any, error) {
	return tab.SendAction(ctx, browser.HideTool())
}

func (Screenshot) PostProcess(ctx context.Context, rc *extension.RunContext) (any, error) {
	dataURL, err := rc.CaptureVisibleTab(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to capture tab: %w", err)
	}
	img, err := rc.LoadImage(dataURL)
	if err != nil {
		return nil, err
	}
	return domain.Clip{Image: &img}, nil
}

func (Screenshot) Teardown(ctx context.Context, tab browser.Tab) error {
	_, err := tab.SendAction(ctx, browser.ShowTool())
	return err
}
