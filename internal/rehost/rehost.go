// Package rehost moves images embedded in clipped markdown onto the trusted image host.
package rehost

import (
	"context"
	"regexp"
	"strings"

	"github.com/MrSnakeDoc/webclipper/internal/logger"
)

// DefaultTrustedOrigin is the CDN that already hosts uploaded images.
const DefaultTrustedOrigin = "https://cdn-pri.nlark.com"

// imagePattern matches markdown image embeds whose URL starts with http.
var imagePattern = regexp.MustCompile(`!\[.*?\]\((http.*?)\)`)

// ImageUploader copies a remote image to the trusted host.
type ImageUploader interface {
	UploadImageURL(ctx context.Context, url string) (string, error)
}

// Rehoster rewrites foreign image URLs in markdown text.
type Rehoster struct {
	uploader      ImageUploader
	trustedOrigin string
	logger        logger.Logger
}

// New creates a Rehoster. An empty trustedOrigin uses DefaultTrustedOrigin.
func New(uploader ImageUploader, trustedOrigin string, log logger.Logger) *Rehoster {
	if trustedOrigin == "" {
		trustedOrigin = DefaultTrustedOrigin
	}
	return &Rehoster{
		uploader:      uploader,
		trustedOrigin: trustedOrigin,
		logger:        log,
	}
}

// ForeignImages returns the embedded image URLs not on the trusted origin,
// deduplicated, in order of first appearance.
func ForeignImages(text, trustedOrigin string) []string {
	matches := imagePattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		u := m[1]
		if u == "" || strings.HasPrefix(u, trustedOrigin) || seen[u] {
			continue
		}
		seen[u] = true
		urls = append(urls, u)
	}
	return urls
}

// Rehost uploads every foreign image and swaps in the hosted URL.
// A failed upload leaves that URL untouched; the others still get replaced.
func (r *Rehoster) Rehost(ctx context.Context, text string) string {
	images := ForeignImages(text, r.trustedOrigin)
	if len(images) == 0 {
		return text
	}

	hosted := make(map[string]string, len(images))
	for _, image := range images {
		url, err := r.uploader.UploadImageURL(ctx, image)
		if err != nil {
			r.logger.Warn("image upload failed, keeping original url",
				logger.String("url", image),
				logger.Error(err))
			continue
		}
		hosted[image] = url
	}

	// Rewrite inside the embeds only, so a URL that prefixes another is left alone.
	out := imagePattern.ReplaceAllStringFunc(text, func(embed string) string {
		loc := imagePattern.FindStringSubmatchIndex(embed)
		url, ok := hosted[embed[loc[2]:loc[3]]]
		if !ok {
			return embed
		}
		return embed[:loc[2]] + url + embed[loc[3]:]
	})

	r.logger.Debug("rehosted images",
		logger.Int("found", len(images)),
		logger.Int("replaced", len(hosted)))
	return out
}
