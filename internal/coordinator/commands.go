package coordinator

// Kind names a command family. Each kind has its own watcher.
type Kind string

const (
	KindVerifyAccount            Kind = "verify_account"
	KindAddAccount               Kind = "add_account"
	KindDeleteAccount            Kind = "delete_account"
	KindSetCurrentAccount        Kind = "set_current_account"
	KindSetShowLineNumber        Kind = "set_show_line_number"
	KindSetLiveRendering         Kind = "set_live_rendering"
	KindSetShowQuickResponseCode Kind = "set_show_quick_response_code"
	KindSetDefaultPlugin         Kind = "set_default_plugin"
	KindHideTool                 Kind = "hide_tool"
	KindRemoveTool               Kind = "remove_tool"
	KindRunExtension             Kind = "run_extension"
)

// Kinds lists every command kind in watcher start order.
var Kinds = []Kind{
	KindVerifyAccount,
	KindAddAccount,
	KindDeleteAccount,
	KindSetCurrentAccount,
	KindSetShowLineNumber,
	KindSetLiveRendering,
	KindSetShowQuickResponseCode,
	KindSetDefaultPlugin,
	KindHideTool,
	KindRemoveTool,
	KindRunExtension,
}

// Command is an intent handled by exactly one watcher.
type Command interface {
	Kind() Kind
}

// VerifyAccount checks credentials against the document service.
type VerifyAccount struct {
	Type string            `json:"type"`
	Info map[string]string `json:"info"`
}

// AddAccount persists the verified form. An empty DefaultRepositoryID keeps
// the one chosen on the form.
type AddAccount struct {
	DefaultRepositoryID string `json:"defaultRepositoryId,omitempty"`
}

type DeleteAccount struct {
	ID string `json:"id"`
}

type SetCurrentAccount struct {
	ID string `json:"id"`
}

// The toggle commands carry the value currently shown; the stored value is
// its complement.
type SetShowLineNumber struct {
	Value bool `json:"value"`
}

type SetLiveRendering struct {
	Value bool `json:"value"`
}

type SetShowQuickResponseCode struct {
	Value bool `json:"value"`
}

type SetDefaultPlugin struct {
	PluginID string `json:"pluginId"`
}

type HideTool struct{}

type RemoveTool struct{}

type RunExtension struct {
	Name string `json:"name"`
}

func (VerifyAccount) Kind() Kind            { return KindVerifyAccount }
func (AddAccount) Kind() Kind               { return KindAddAccount }
func (DeleteAccount) Kind() Kind            { return KindDeleteAccount }
func (SetCurrentAccount) Kind() Kind        { return KindSetCurrentAccount }
func (SetShowLineNumber) Kind() Kind        { return KindSetShowLineNumber }
func (SetLiveRendering) Kind() Kind         { return KindSetLiveRendering }
func (SetShowQuickResponseCode) Kind() Kind { return KindSetShowQuickResponseCode }
func (SetDefaultPlugin) Kind() Kind         { return KindSetDefaultPlugin }
func (HideTool) Kind() Kind                 { return KindHideTool }
func (RemoveTool) Kind() Kind               { return KindRemoveTool }
func (RunExtension) Kind() Kind             { return KindRunExtension }
