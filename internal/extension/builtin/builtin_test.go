package builtin

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/webclipper/internal/blob"
	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
	"github.com/MrSnakeDoc/webclipper/internal/logger"
	"github.com/MrSnakeDoc/webclipper/internal/notify"
	"github.com/MrSnakeDoc/webclipper/internal/rehost"
	"github.com/MrSnakeDoc/webclipper/internal/state"
)

type mapUploader map[string]string

func (m mapUploader) UploadImageURL(_ context.Context, url string) (string, error) {
	if h, ok := m[url]; ok {
		return h, nil
	}
	return "", errors.New("upload failed")
}

type images struct{ up rehost.ImageUploader }

func (i images) ImageService(domain.Account) (rehost.ImageUploader, error) { return i.up, nil }

type scriptedTab struct {
	actions []browser.Action
	page    map[string]any
	capture string
}

func (t *scriptedTab) SendAction(_ context.Context, a browser.Action) (any, error) {
	t.actions = append(t.actions, a)
	if a.Type == browser.ActionRunScript && a.Script == pageInfoScript {
		return t.page, nil
	}
	return true, nil
}

func (t *scriptedTab) CaptureVisibleTab(context.Context) (string, error) { return t.capture, nil }

func TestAllHasUniqueNames(t *testing.T) {
	r := extension.NewRegistry(logger.Nop())
	assert.NotPanics(t, func() { r.MustRegister(All("")...) })
	assert.Len(t, r.All(), 3)
}

func TestUploadImageApplicable(t *testing.T) {
	u := NewUploadImage("")
	tests := []struct {
		name string
		ic   extension.InitContext
		want bool
	}{
		{name: "root path", ic: extension.InitContext{Pathname: "/", AccountType: "yuque"}, want: false},
		{name: "other account type", ic: extension.InitContext{Pathname: "/editor", AccountType: "github"}, want: false},
		{name: "no account", ic: extension.InitContext{Pathname: "/editor"}, want: false},
		{name: "yuque editor", ic: extension.InitContext{Pathname: "/editor", AccountType: "yuque"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extension.Applicable(u, tt.ic))
		})
	}
}

func TestUploadImagePostProcess(t *testing.T) {
	sink := notify.NewHub(logger.Nop(), 10)
	rc := &extension.RunContext{
		Data:         domain.TextClip("![a](http://x/ok.png) ![b](http://x/bad.png)"),
		Message:      sink,
		ImageService: mapUploader{"http://x/ok.png": "https://cdn-pri.nlark.com/ok.png"},
		Logger:       logger.Nop(),
	}

	got, err := NewUploadImage("").PostProcess(context.Background(), rc)
	require.NoError(t, err)
	assert.Equal(t, domain.TextClip("![a](https://cdn-pri.nlark.com/ok.png) ![b](http://x/bad.png)"), got)

	recent := sink.Recent()
	require.Len(t, recent, 1)
	assert.Equal(t, notify.LevelInfo, recent[0].Level)
}

func TestUploadImageWithoutImageService(t *testing.T) {
	rc := &extension.RunContext{Data: domain.TextClip("text"), Logger: logger.Nop()}
	_, err := NewUploadImage("").PostProcess(context.Background(), rc)
	assert.ErrorIs(t, err, errNoImageService)
}

func TestUploadImageThroughOrchestrator(t *testing.T) {
	st := state.New()
	st.SetAccounts([]domain.Account{{ID: "a", Type: "yuque"}}, "a")
	st.SetRoute("/editor")
	st.SetClip("/editor", domain.TextClip("![a](http://x/img.png)"))

	o := extension.NewOrchestrator(st, &scriptedTab{},
		images{up: mapUploader{"http://x/img.png": "https://cdn-pri.nlark.com/1.png"}},
		notify.NewHub(logger.Nop(), 0), logger.Nop())

	out, err := o.Run(context.Background(), NewUploadImage(""))
	require.NoError(t, err)
	assert.Equal(t, "/editor", out.Pathname)

	_, clip, _ := st.CurrentClip()
	assert.Equal(t, "![a](https://cdn-pri.nlark.com/1.png)", clip.Text)
}

func TestPageLink(t *testing.T) {
	tab := &scriptedTab{page: map[string]any{"title": "Go [blog]", "url": "https://go.dev/blog"}}
	ctx := context.Background()

	res, err := PageLink{}.Inject(ctx, tab)
	require.NoError(t, err)

	got, err := PageLink{}.PostProcess(ctx, &extension.RunContext{Result: res, Data: domain.TextClip("body")})
	require.NoError(t, err)
	assert.Equal(t, domain.TextClip("> Source: [Go \\[blog\\]](https://go.dev/blog)\n\nbody"), got)

	require.NoError(t, PageLink{}.Teardown(ctx, tab))
	assert.Equal(t, browser.RunScript(clearHighlightScript), tab.actions[len(tab.actions)-1])

	_, err = PageLink{}.PostProcess(ctx, &extension.RunContext{Result: "garbage"})
	assert.Error(t, err)

	assert.False(t, PageLink{}.Applicable(extension.InitContext{Pathname: "/"}))
	assert.True(t, PageLink{}.Applicable(extension.InitContext{Pathname: "/editor"}))
}

func TestScreenshot(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 3))))
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	tab := &scriptedTab{capture: dataURL}
	rc := &extension.RunContext{
		CaptureVisibleTab: tab.CaptureVisibleTab,
		LoadImage:         blob.LoadImage,
	}

	got, err := Screenshot{}.PostProcess(context.Background(), rc)
	require.NoError(t, err)
	clip, ok := got.(domain.Clip)
	require.True(t, ok)
	require.NotNil(t, clip.Image)
	assert.Equal(t, 4, clip.Image.Width)
	assert.Equal(t, 3, clip.Image.Height)

	assert.True(t, Screenshot{}.Applicable(extension.InitContext{Pathname: ScreenshotPath}))
	assert.False(t, Screenshot{}.Applicable(extension.InitContext{Pathname: "/editor"}))
}

// overlayTab tracks whether the clipper overlay is visible.
type overlayTab struct {
	hidden  bool
	hideErr error
	capture string
}

func (t *overlayTab) SendAction(_ context.Context, a browser.Action) (any, error) {
	switch a.Type {
	case browser.ActionHideTool:
		if t.hideErr != nil {
			return nil, t.hideErr
		}
		t.hidden = true
	case browser.ActionShowTool:
		t.hidden = false
	}
	return true, nil
}

func (t *overlayTab) CaptureVisibleTab(context.Context) (string, error) { return t.capture, nil }

func TestScreenshotRestoresOverlay(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	run := func(tab *overlayTab) error {
		st := state.New()
		st.SetRoute(ScreenshotPath)
		o := extension.NewOrchestrator(st, tab, nil, notify.NewHub(logger.Nop(), 0), logger.Nop())
		_, err := o.Run(context.Background(), Screenshot{})
		return err
	}

	t.Run("after a capture", func(t *testing.T) {
		tab := &overlayTab{capture: dataURL}
		require.NoError(t, run(tab))
		assert.False(t, tab.hidden)
	})

	t.Run("when hiding failed", func(t *testing.T) {
		tab := &overlayTab{capture: dataURL, hideErr: errors.New("page gone")}
		require.Error(t, run(tab))
		assert.False(t, tab.hidden, "overlay that was never hidden stays visible")
	})
}

func TestPlainTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Plain title", "Plain title"},
		{"  Fish &amp; Chips\n  recipe ", "Fish & Chips recipe"},
		{"<b>Bold</b> news", "Bold news"},
		{"   ", ""},
	}
	for _, tt := range tests {
		if got := plainTitle(tt.in); got != tt.want {
			t.Errorf("plainTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
