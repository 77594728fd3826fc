package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goliatone/go-blog-session/core"
)

const (
	pathBlogs        = "/blogs"
	pathPrivateBlogs = "/blogs/private"
)

// BlogAPI relays the blog CRUD endpoints. Documents are opaque JSON; the
// session layer does not model blog content.
type BlogAPI struct {
	dispatcher core.Dispatcher
}

func NewBlogAPI(dispatcher core.Dispatcher) *BlogAPI {
	return &BlogAPI{dispatcher: dispatcher}
}

func (b *BlogAPI) List(ctx context.Context) (json.RawMessage, error) {
	return b.get(ctx, pathBlogs)
}

// Mine lists the signed-in user's own blogs.
func (b *BlogAPI) Mine(ctx context.Context) (json.RawMessage, error) {
	return b.get(ctx, pathPrivateBlogs)
}

func (b *BlogAPI) Get(ctx context.Context, blogID string) (json.RawMessage, error) {
	path, err := blogPath(blogID)
	if err != nil {
		return nil, err
	}
	return b.get(ctx, path)
}

func (b *BlogAPI) Create(ctx context.Context, document json.RawMessage) (json.RawMessage, error) {
	return b.send(ctx, http.MethodPost, pathBlogs, document)
}

func (b *BlogAPI) Update(ctx context.Context, blogID string, document json.RawMessage) (json.RawMessage, error) {
	path, err := blogPath(blogID)
	if err != nil {
		return nil, err
	}
	return b.send(ctx, http.MethodPut, path, document)
}

func (b *BlogAPI) Delete(ctx context.Context, blogID string) error {
	path, err := blogPath(blogID)
	if err != nil {
		return err
	}
	if b == nil || b.dispatcher == nil {
		return fmt.Errorf("api: blog dispatcher is required")
	}
	_, err = dispatch(ctx, b.dispatcher, core.Request{
		Method: http.MethodDelete,
		Path:   path,
	})
	return err
}

func (b *BlogAPI) get(ctx context.Context, path string) (json.RawMessage, error) {
	if b == nil || b.dispatcher == nil {
		return nil, fmt.Errorf("api: blog dispatcher is required")
	}
	res, err := dispatch(ctx, b.dispatcher, core.Request{
		Method: http.MethodGet,
		Path:   path,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Body), nil
}

func (b *BlogAPI) send(ctx context.Context, method string, path string, document json.RawMessage) (json.RawMessage, error) {
	if b == nil || b.dispatcher == nil {
		return nil, fmt.Errorf("api: blog dispatcher is required")
	}
	if len(document) == 0 {
		return nil, fmt.Errorf("api: blog document is required")
	}
	res, err := dispatch(ctx, b.dispatcher, core.Request{
		Method: method,
		Path:   path,
		Body:   document,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Body), nil
}

func blogPath(blogID string) (string, error) {
	trimmed := strings.TrimSpace(blogID)
	if trimmed == "" {
		return "", fmt.Errorf("api: blog id is required")
	}
	return pathBlogs + "/" + url.PathEscape(trimmed), nil
}
