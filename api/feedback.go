package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-blog-session/core"
)

const pathFeedback = "/feedback"

// FeedbackAPI relays the feedback endpoints. The backend takes rating and
// comment as query parameters rather than a body.
type FeedbackAPI struct {
	dispatcher core.Dispatcher
}

func NewFeedbackAPI(dispatcher core.Dispatcher) *FeedbackAPI {
	return &FeedbackAPI{dispatcher: dispatcher}
}

func (f *FeedbackAPI) Create(ctx context.Context, blogID string, rating int, comment string) (json.RawMessage, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(blogID)
	if trimmed == "" {
		return nil, fmt.Errorf("api: blog id is required")
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("api: rating must be between 1 and 5")
	}

	res, err := dispatch(ctx, f.dispatcher, core.Request{
		Method: http.MethodPost,
		Path:   pathFeedback,
		Query: map[string]string{
			"blogId":  trimmed,
			"rating":  strconv.Itoa(rating),
			"comment": comment,
		},
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Body), nil
}

func (f *FeedbackAPI) ListByBlog(ctx context.Context, blogID string) (json.RawMessage, error) {
	return f.get(ctx, pathFeedback+"/blog/", blogID, "")
}

func (f *FeedbackAPI) ListByUser(ctx context.Context, userID string) (json.RawMessage, error) {
	return f.get(ctx, pathFeedback+"/user/", userID, "")
}

// AverageRating fetches the mean rating for a blog.
func (f *FeedbackAPI) AverageRating(ctx context.Context, blogID string) (json.RawMessage, error) {
	return f.get(ctx, pathFeedback+"/blog/", blogID, "/average-rating")
}

func (f *FeedbackAPI) Update(ctx context.Context, feedbackID string, rating int, comment string) (json.RawMessage, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(feedbackID)
	if trimmed == "" {
		return nil, fmt.Errorf("api: feedback id is required")
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("api: rating must be between 1 and 5")
	}

	res, err := dispatch(ctx, f.dispatcher, core.Request{
		Method: http.MethodPut,
		Path:   pathFeedback + "/" + url.PathEscape(trimmed),
		Query: map[string]string{
			"rating":  strconv.Itoa(rating),
			"comment": comment,
		},
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Body), nil
}

func (f *FeedbackAPI) Delete(ctx context.Context, feedbackID string) error {
	if err := f.ready(); err != nil {
		return err
	}
	trimmed := strings.TrimSpace(feedbackID)
	if trimmed == "" {
		return fmt.Errorf("api: feedback id is required")
	}
	_, err := dispatch(ctx, f.dispatcher, core.Request{
		Method: http.MethodDelete,
		Path:   pathFeedback + "/" + url.PathEscape(trimmed),
	})
	return err
}

func (f *FeedbackAPI) get(ctx context.Context, prefix string, id string, suffix string) (json.RawMessage, error) {
	if err := f.ready(); err != nil {
		return nil, err
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("api: id is required")
	}
	res, err := dispatch(ctx, f.dispatcher, core.Request{
		Method: http.MethodGet,
		Path:   prefix + url.PathEscape(trimmed) + suffix,
	})
	if err != nil {
		return nil, err
	}
	return json.RawMessage(res.Body), nil
}

func (f *FeedbackAPI) ready() error {
	if f == nil || f.dispatcher == nil {
		return fmt.Errorf("api: feedback dispatcher is required")
	}
	return nil
}
