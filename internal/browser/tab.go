// Package browser defines how the clipper talks to the page being clipped.
package browser

import (
	"context"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
)

var errNoTab = domain.ErrNoActiveTab

// ActionType names a message sent to the current tab.
type ActionType string

const (
	ActionRunScript  ActionType = "RUN_SCRIPT"
	ActionHideTool   ActionType = "HIDE_TOOL"
	ActionShowTool   ActionType = "SHOW_TOOL"
	ActionRemoveTool ActionType = "REMOVE_TOOL"
)

// Action is a message for the page context.
type Action struct {
	Type   ActionType `json:"type"`
	Script string     `json:"script,omitempty"`
}

// RunScript builds an action that evaluates script in the page and returns its value.
func RunScript(script string) Action {
	return Action{Type: ActionRunScript, Script: script}
}

// HideTool hides the clipper overlay in the page.
func HideTool() Action { return Action{Type: ActionHideTool} }

// ShowTool makes a hidden clipper overlay visible again.
func ShowTool() Action { return Action{Type: ActionShowTool} }

// RemoveTool removes the clipper overlay from the page.
func RemoveTool() Action { return Action{Type: ActionRemoveTool} }

// Tab is the active page.
type Tab interface {
	// SendAction delivers action to the page and returns the page's response.
	SendAction(ctx context.Context, action Action) (any, error)
	// CaptureVisibleTab returns a PNG data URL of the visible viewport.
	CaptureVisibleTab(ctx context.Context) (string, error)
}

// Detached is a Tab with no page behind it; every call fails with domain.ErrNoActiveTab.
type Detached struct{}

func (Detached) SendAction(context.Context, Action) (any, error) { return nil, errNoTab }

func (Detached) CaptureVisibleTab(context.Context) (string, error) { return "", errNoTab }
