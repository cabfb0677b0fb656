package builtin

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
	"github.com/MrSnakeDoc/webclipper/internal/rehost"
)

const UploadImageName = "uploadimage"

var errNoImageService = errors.New("current account has no image hosting service")

// UploadImage moves every foreign image in the clip onto the Yuque image host.
type UploadImage struct {
	trustedOrigin string
}

func NewUploadImage(trustedOrigin string) *UploadImage {
	return &UploadImage{trustedOrigin: trustedOrigin}
}

func (u *UploadImage) Meta() extension.Meta {
	return extension.Meta{
		Name:        UploadImageName,
		Icon:        "sync",
		Version:     "0.0.1",
		Description: "Sync images to the Yuque image host",
	}
}

func (u *UploadImage) Applicable(ic extension.InitContext) bool {
	if ic.Pathname == RootPath {
		return false
	}
	return ic.AccountType == "yuque"
}

func (u *UploadImage) PostProcess(ctx context.Context, rc *extension.RunContext) (any, error) {
	if rc.Data.IsImage() {
		return rc.Data, nil
	}
	if rc.ImageService == nil {
		return nil, errNoImageService
	}

	text := rehost.New(rc.ImageService, u.trustedOrigin, rc.Logger).Rehost(ctx, rc.Data.Text)
	rc.Message.Info("Images uploaded")
	return domain.TextClip(text), nil
}
