package domain

// Repository is a destination (knowledge base / notebook) on a document service.
type Repository struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Private   bool   `json:"private"`
	CreatedAt string `json:"createdAt"`
	Owner     string `json:"owner"`

	// Namespace is owner/name.
	Namespace string `json:"namespace"`
}

// ImageClip is a captured image payload.
type ImageClip struct {
	DataURL string `json:"dataUrl"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
}

// Clip is the captured content of one route: either text or an image.
type Clip struct {
	Text  string     `json:"text,omitempty"`
	Image *ImageClip `json:"image,omitempty"`
}

// IsImage reports whether the clip carries an image payload.
func (c Clip) IsImage() bool { return c.Image != nil }

// TextClip wraps plain text.
func TextClip(text string) Clip { return Clip{Text: text} }

// CompleteStatus is set once a document has been created from a clip.
type CompleteStatus struct {
	DocumentHref string `json:"documentHref"`
	DocumentID   string `json:"documentId"`
	RepositoryID string `json:"repositoryId"`
}

// ServiceMeta describes how an account type is displayed.
type ServiceMeta struct {
	Name     string `json:"name" yaml:"name"`
	Icon     string `json:"icon" yaml:"icon"`
	HomePage string `json:"homePage" yaml:"homePage"`
}
