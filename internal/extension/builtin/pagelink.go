package builtin

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/MrSnakeDoc/webclipper/internal/browser"
	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/extension"
)

const PageLinkName = "pagelink"

const (
	pageInfoScript = `() => ({ title: document.title, url: location.href })`

	clearHighlightScript = `() => {
  const marked = document.querySelectorAll('.webclipper-highlight');
  marked.forEach(el => el.classList.remove('webclipper-highlight'));
  return marked.length;
}`
)

// PageLink prepends a markdown link back to the source page.
type PageLink struct{}

func (PageLink) Meta() extension.Meta {
	return extension.Meta{
		Name:        PageLinkName,
		Icon:        "link",
		Version:     "0.0.1",
		Description: "Prepend a link to the source page",
	}
}

func (PageLink) Applicable(ic extension.InitContext) bool {
	return ic.Pathname != RootPath && ic.Pathname != ScreenshotPath
}

func (PageLink) Inject(ctx context.Context, tab browser.Tab) (any, error) {
	return tab.SendAction(ctx, browser.RunScript(pageInfoScript))
}

func (PageLink) PostProcess(_ context.Context, rc *extension.RunContext) (any, error) {
	if rc.Data.IsImage() {
		return rc.Data, nil
	}

	info, ok := rc.Result.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("unexpected page info %T", rc.Result)
	}
	url, _ := info["url"].(string)
	if url == "" {
		return nil, fmt.Errorf("page info has no url")
	}
	title, _ := info["title"].(string)
	title = plainTitle(title)
	if title == "" {
		title = url
	}

	link := fmt.Sprintf("> Source: [%s](%s)", escapeLinkText(title), url)
	if rc.Data.Text == "" {
		return domain.TextClip(link), nil
	}
	return domain.TextClip(link + "\n\n" + rc.Data.Text), nil
}

func (PageLink) Teardown(ctx context.Context, tab browser.Tab) error {
	_, err := tab.SendAction(ctx, browser.RunScript(clearHighlightScript))
	return err
}

var (
	linkTextEscaper = strings.NewReplacer(`[`, `\[`, `]`, `\]`)
	titlePolicy     = bluemonday.StrictPolicy()
)

// plainTitle drops any markup a page put in its title and folds whitespace.
func plainTitle(s string) string {
	s = html.UnescapeString(titlePolicy.Sanitize(s))
	return strings.Join(strings.Fields(s), " ")
}

func escapeLinkText(s string) string { return linkTextEscaper.Replace(s) }
