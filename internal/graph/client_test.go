package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

type page struct {
	ids  []string
	fail bool
}

// newPagedServer serves a listing split across pages linked via paging.next.
func newPagedServer(t *testing.T, pages []page) *httptest.Server {
	t.Helper()

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		idx := 0
		if p := r.URL.Query().Get("page"); p != "" {
			fmt.Sscanf(p, "%d", &idx)
		}
		if idx >= len(pages) {
			http.Error(w, "no such page", http.StatusNotFound)
			return
		}
		if pages[idx].fail {
			http.Error(w, "provider error", http.StatusInternalServerError)
			return
		}

		resp := map[string]interface{}{}
		data := make([]map[string]string, 0, len(pages[idx].ids))
		for _, id := range pages[idx].ids {
			data = append(data, map[string]string{"id": id})
		}
		resp["data"] = data
		if idx+1 < len(pages) {
			resp["paging"] = map[string]string{
				"next": fmt.Sprintf("%s/?page=%d", server.URL, idx+1),
			}
		}
		json.NewEncoder(w).Encode(resp)
	}))

	return server
}

func TestClientListPostsFollowsPagination(t *testing.T) {
	server := newPagedServer(t, []page{
		{ids: []string{"a", "b"}},
		{ids: []string{"c"}},
		{ids: []string{"d", "e"}},
	})
	defer server.Close()

	client := NewClient(5*time.Second, 100)
	posts, err := client.ListPosts(context.Background(), server.URL+"/?page=0")
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}

	want := []string{"a", "b", "c", "d", "e"}
	if len(posts) != len(want) {
		t.Fatalf("expected %d posts, got %d", len(want), len(posts))
	}
	for i, id := range want {
		if posts[i].ID != id {
			t.Errorf("posts[%d].ID = %q, want %q (page order must be preserved)", i, posts[i].ID, id)
		}
	}
}

func TestClientListPostsPartialOnMidPaginationFailure(t *testing.T) {
	server := newPagedServer(t, []page{
		{ids: []string{"a", "b"}},
		{fail: true},
		{ids: []string{"d"}},
	})
	defer server.Close()

	client := NewClient(5*time.Second, 100)
	posts, err := client.ListPosts(context.Background(), server.URL+"/?page=0")
	if err != nil {
		t.Fatalf("mid-pagination failure should not surface as an error, got: %v", err)
	}

	if len(posts) != 2 {
		t.Fatalf("expected exactly page 1's 2 posts, got %d", len(posts))
	}
	if posts[0].ID != "a" || posts[1].ID != "b" {
		t.Errorf("unexpected partial result: %v", posts)
	}
}

func TestClientListPostsFirstPageFailure(t *testing.T) {
	server := newPagedServer(t, []page{{fail: true}})
	defer server.Close()

	client := NewClient(5*time.Second, 100)
	if _, err := client.ListPosts(context.Background(), server.URL+"/?page=0"); err == nil {
		t.Fatal("first-page failure should surface as an error")
	}
}

func TestClientListPostsPageCap(t *testing.T) {
	// Cyclic paging: every response points back to itself.
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data":   []map[string]string{{"id": "loop"}},
			"paging": map[string]string{"next": server.URL},
		})
	}))
	defer server.Close()

	client := NewClient(5*time.Second, 3)
	posts, err := client.ListPosts(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("ListPosts returned error: %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("page cap of 3 should yield 3 posts, got %d", len(posts))
	}
}

func TestClientFetchInsights(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"name": "reach", "values": []map[string]int64{{"value": 150}}},
				{"name": "saved", "values": []map[string]int64{{"value": 7}}},
			},
		})
	}))
	defer server.Close()

	client := NewClient(5*time.Second, 100)
	metrics, err := client.FetchInsights(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FetchInsights returned error: %v", err)
	}

	if len(metrics) != 2 {
		t.Fatalf("expected 2 metrics, got %d", len(metrics))
	}
	if metrics[0].Name != "reach" || metrics[0].Values[0].Value != 150 {
		t.Errorf("unexpected first metric: %+v", metrics[0])
	}
}

func TestClientFetchInsightsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"invalid token"}}`, http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewClient(5*time.Second, 100)
	if _, err := client.FetchInsights(context.Background(), server.URL); err == nil {
		t.Fatal("expected error for non-200 response")
	}
}
