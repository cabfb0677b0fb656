package domain

// ExtensionMeta is the identity and display data of a tool extension.
type ExtensionMeta struct {
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Version     string `json:"version"`
	Description string `json:"description"`
}
