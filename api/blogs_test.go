package api

import (
	"context"
	"net/http"
	"testing"

	goerrors "github.com/goliatone/go-errors"
)

func TestBlogAPIList(t *testing.T) {
	dispatcher := &stubDispatcher{
		response: jsonResponse(http.StatusOK, `[{"id":"b1","title":"hello"}]`),
	}
	blogs := NewBlogAPI(dispatcher)

	docs, err := blogs.List(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if string(docs) != `[{"id":"b1","title":"hello"}]` {
		t.Fatalf("unexpected documents: %s", docs)
	}

	req := dispatcher.lastRequest()
	if req.Method != http.MethodGet || req.Path != "/blogs" {
		t.Fatalf("unexpected request: %s %s", req.Method, req.Path)
	}
}

func TestBlogAPIMineUsesPrivatePath(t *testing.T) {
	dispatcher := &stubDispatcher{response: jsonResponse(http.StatusOK, `[]`)}
	blogs := NewBlogAPI(dispatcher)

	if _, err := blogs.Mine(context.Background()); err != nil {
		t.Fatalf("mine: %v", err)
	}
	if req := dispatcher.lastRequest(); req.Path != "/blogs/private" {
		t.Fatalf("expected /blogs/private, got %s", req.Path)
	}
}

func TestBlogAPIGetEscapesID(t *testing.T) {
	dispatcher := &stubDispatcher{response: jsonResponse(http.StatusOK, `{}`)}
	blogs := NewBlogAPI(dispatcher)

	if _, err := blogs.Get(context.Background(), "post one"); err != nil {
		t.Fatalf("get: %v", err)
	}
	if req := dispatcher.lastRequest(); req.Path != "/blogs/post%20one" {
		t.Fatalf("expected escaped path, got %s", req.Path)
	}
}

func TestBlogAPICreateRelaysDocument(t *testing.T) {
	dispatcher := &stubDispatcher{
		response: jsonResponse(http.StatusCreated, `{"id":"b2"}`),
	}
	blogs := NewBlogAPI(dispatcher)

	doc := []byte(`{"title":"new post","content":"body"}`)
	created, err := blogs.Create(context.Background(), doc)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if string(created) != `{"id":"b2"}` {
		t.Fatalf("unexpected response: %s", created)
	}

	req := dispatcher.lastRequest()
	if req.Method != http.MethodPost || req.Path != "/blogs" {
		t.Fatalf("unexpected request: %s %s", req.Method, req.Path)
	}
	if string(req.Body) != string(doc) {
		t.Fatalf("document must relay untouched, got %s", req.Body)
	}
}

func TestBlogAPIUpdateAndDelete(t *testing.T) {
	dispatcher := &stubDispatcher{response: jsonResponse(http.StatusOK, `{}`)}
	blogs := NewBlogAPI(dispatcher)

	if _, err := blogs.Update(context.Background(), "b1", []byte(`{"title":"edited"}`)); err != nil {
		t.Fatalf("update: %v", err)
	}
	if req := dispatcher.lastRequest(); req.Method != http.MethodPut || req.Path != "/blogs/b1" {
		t.Fatalf("unexpected update request: %s %s", req.Method, req.Path)
	}

	if err := blogs.Delete(context.Background(), "b1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if req := dispatcher.lastRequest(); req.Method != http.MethodDelete || req.Path != "/blogs/b1" {
		t.Fatalf("unexpected delete request: %s %s", req.Method, req.Path)
	}
}

func TestBlogAPIRequiresID(t *testing.T) {
	dispatcher := &stubDispatcher{response: jsonResponse(http.StatusOK, `{}`)}
	blogs := NewBlogAPI(dispatcher)

	if _, err := blogs.Get(context.Background(), "  "); err == nil {
		t.Fatalf("expected error for blank id")
	}
	if err := blogs.Delete(context.Background(), ""); err == nil {
		t.Fatalf("expected error for empty id")
	}
	if _, err := blogs.Create(context.Background(), nil); err == nil {
		t.Fatalf("expected error for empty document")
	}
	if got := dispatcher.requestCount(); got != 0 {
		t.Fatalf("invalid input must not reach the backend, got %d requests", got)
	}
}

func TestBlogAPISurfacesNotFound(t *testing.T) {
	dispatcher := &stubDispatcher{
		response: jsonResponse(http.StatusNotFound, `{"message":"no such blog"}`),
	}
	blogs := NewBlogAPI(dispatcher)

	_, err := blogs.Get(context.Background(), "missing")
	if err == nil {
		t.Fatalf("expected error for 404")
	}

	var rich *goerrors.Error
	if !goerrors.As(err, &rich) {
		t.Fatalf("expected error envelope, got %T", err)
	}
	if rich.Category != goerrors.CategoryNotFound {
		t.Fatalf("expected not found category, got %s", rich.Category)
	}
	if rich.Code != http.StatusNotFound {
		t.Fatalf("expected status carried, got %d", rich.Code)
	}
}
