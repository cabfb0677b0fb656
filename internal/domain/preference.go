package domain

// Preferences is the durable part of the user preference state.
type Preferences struct {
	Accounts              []Account `json:"accounts"`
	DefaultPluginID       string    `json:"defaultPluginId,omitempty"`
	DefaultAccountID      string    `json:"defaultAccountId,omitempty"`
	ShowQuickResponseCode bool      `json:"showQuickResponseCode"`
	ShowLineNumber        bool      `json:"showLineNumber"`
	LiveRendering         bool      `json:"liveRendering"`
}

// InitializeForm is the pending "add account" form.
type InitializeForm struct {
	Type                string            `json:"type"`
	Info                map[string]string `json:"info,omitempty"`
	Repositories        []Repository      `json:"repositories"`
	DefaultRepositoryID string            `json:"defaultRepositoryId,omitempty"`
	Visible             bool              `json:"visible"`
	Verifying           bool              `json:"verifying"`
	Verified            bool              `json:"verified"`
	UserInfo            *UserInfo         `json:"userInfo,omitempty"`
}
