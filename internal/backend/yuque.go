package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/webclipper/internal/domain"
	"github.com/MrSnakeDoc/webclipper/internal/utils"
)

const (
	YuqueType        = "yuque"
	YuqueDefaultHost = "https://www.yuque.com"

	// InfoAccessToken and InfoHost are the verification fields of a Yuque account.
	InfoAccessToken = "access_token"
	InfoHost        = "host"

	// maxImageBytes caps what is downloaded before re-uploading.
	maxImageBytes = 20 << 20
)

var ErrMissingAccessToken = errors.New("yuque: access_token is required")

// Yuque is a client for the Yuque open API.
type Yuque struct {
	host   string
	token  string
	client *http.Client

	mu    sync.Mutex
	login string
}

// NewYuque is the Builder for YuqueType.
func NewYuque(info map[string]string, client *http.Client) (Service, error) {
	token := strings.TrimSpace(info[InfoAccessToken])
	if token == "" {
		return nil, ErrMissingAccessToken
	}
	host := strings.TrimRight(strings.TrimSpace(info[InfoHost]), "/")
	if host == "" {
		host = YuqueDefaultHost
	}
	return &Yuque{host: host, token: token, client: client}, nil
}

type yuqueUser struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	AvatarURL   string `json:"avatar_url"`
	Description string `json:"description"`
}

type yuqueRepo struct {
	ID        int64  `json:"id"`
	Type      string `json:"type"`
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
	Public    int    `json:"public"`
	CreatedAt string `json:"created_at"`
	User      struct {
		Login string `json:"login"`
	} `json:"user"`
}

type envelope[T any] struct {
	Data T `json:"data"`
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("yuque: http %d", e.Status)
	}
	return fmt.Sprintf("yuque: http %d: %s", e.Status, e.Message)
}

func (y *Yuque) GetUserInfo(ctx context.Context) (domain.UserInfo, error) {
	var out envelope[yuqueUser]
	if err := y.getJSON(ctx, "/api/v2/user", &out); err != nil {
		return domain.UserInfo{}, err
	}

	y.mu.Lock()
	y.login = out.Data.Login
	y.mu.Unlock()

	return domain.UserInfo{
		Name:        out.Data.Name,
		Login:       out.Data.Login,
		Avatar:      out.Data.AvatarURL,
		HomePage:    y.host + "/" + out.Data.Login,
		Description: out.Data.Description,
	}, nil
}

// GetRepositories lists the user's books followed by the books of every group
// the user belongs to.
func (y *Yuque) GetRepositories(ctx context.Context) ([]domain.Repository, error) {
	login, err := y.currentLogin(ctx)
	if err != nil {
		return nil, err
	}

	var own envelope[[]yuqueRepo]
	if err := y.getJSON(ctx, "/api/v2/users/"+url.PathEscape(login)+"/repos", &own); err != nil {
		return nil, err
	}

	var groups envelope[[]yuqueUser]
	if err := y.getJSON(ctx, "/api/v2/users/"+url.PathEscape(login)+"/groups", &groups); err != nil {
		return nil, err
	}

	repos := own.Data
	for _, g := range groups.Data {
		var groupRepos envelope[[]yuqueRepo]
		if err := y.getJSON(ctx, "/api/v2/groups/"+url.PathEscape(g.Login)+"/repos", &groupRepos); err != nil {
			return nil, err
		}
		repos = append(repos, groupRepos.Data...)
	}

	out := make([]domain.Repository, 0, len(repos))
	for _, r := range repos {
		if r.Type != "" && r.Type != "Book" {
			continue
		}
		out = append(out, domain.Repository{
			ID:        fmt.Sprintf("%d", r.ID),
			Name:      r.Name,
			Private:   r.Public == 0,
			CreatedAt: r.CreatedAt,
			Owner:     r.User.Login,
			Namespace: r.Namespace,
		})
	}
	return out, nil
}

// UploadImageURL downloads a remote image and stores it as a Yuque attachment.
func (y *Yuque) UploadImageURL(ctx context.Context, imageURL string) (string, error) {
	data, contentType, err := y.download(ctx, imageURL)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", imageFileName(imageURL, contentType))
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.host+"/api/upload/attach?type=image", &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out envelope[struct {
		URL string `json:"url"`
	}]
	if err := y.do(req, &out); err != nil {
		return "", err
	}
	if out.Data.URL == "" {
		return "", fmt.Errorf("yuque: upload returned no url")
	}
	return out.Data.URL, nil
}

func (y *Yuque) currentLogin(ctx context.Context) (string, error) {
	y.mu.Lock()
	login := y.login
	y.mu.Unlock()
	if login != "" {
		return login, nil
	}
	user, err := y.GetUserInfo(ctx)
	if err != nil {
		return "", err
	}
	return user.Login, nil
}

func (y *Yuque) download(ctx context.Context, imageURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, http.NoBody)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := y.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("failed to download image: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, "", fmt.Errorf("failed to download image: http %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("failed to read image: %w", err)
	}
	if len(data) > maxImageBytes {
		return nil, "", fmt.Errorf("image larger than %d bytes", maxImageBytes)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func (y *Yuque) getJSON(ctx context.Context, p string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, y.host+p, http.NoBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return y.do(req, out)
}

func (y *Yuque) do(req *http.Request, out any) error {
	req.Header.Set("X-Auth-Token", y.token)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("yuque request failed: %w", err)
	}
	defer utils.Close(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&msg)
		return &APIError{Status: resp.StatusCode, Message: msg.Message}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode yuque response: %w", err)
	}
	return nil
}

// imageFileName picks a file name for an upload from the URL path, falling
// back to the content type for the extension.
func imageFileName(imageURL, contentType string) string {
	if u, err := url.Parse(imageURL); err == nil {
		if base := path.Base(u.Path); base != "." && base != "/" && path.Ext(base) != "" {
			return base
		}
	}
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
			return "image" + exts[0]
		}
	}
	return "image.png"
}
