package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/store_manager/internal/models"
)

type fakeCluster struct {
	mu       sync.Mutex
	requests []string
	bodies   []string
}

func newFakeCluster(t *testing.T) (*fakeCluster, *ESIndex) {
	t.Helper()

	fc := &fakeCluster{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		fc.mu.Lock()
		fc.requests = append(fc.requests, r.Method+" "+r.URL.Path)
		fc.bodies = append(fc.bodies, string(body))
		fc.mu.Unlock()

		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/404"):
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"result":"not_found"}`))
		case strings.HasSuffix(r.URL.Path, "/_search"):
			_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{"id":3,"name":"table","description":"oak","category":"furniture","price":10000}}]}}`))
		default:
			_, _ = w.Write([]byte(`{"result":"ok"}`))
		}
	}))
	t.Cleanup(srv.Close)

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	return fc, NewESIndex(es, "products")
}

func (fc *fakeCluster) last() (string, string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	n := len(fc.requests)
	return fc.requests[n-1], fc.bodies[n-1]
}

func TestESIndex_IndexProduct(t *testing.T) {
	fc, idx := newFakeCluster(t)

	p := &models.Product{ID: 3, Name: "table", Description: "oak", Price: 10000, Category: &models.Category{Name: "furniture"}}
	require.NoError(t, idx.IndexProduct(context.Background(), DocumentFromProduct(p)))

	req, body := fc.last()
	assert.Equal(t, "PUT /products/_doc/3", req)

	var doc Document
	require.NoError(t, json.Unmarshal([]byte(body), &doc))
	assert.Equal(t, "furniture", doc.Category)
	assert.EqualValues(t, 10000, doc.Price)
}

func TestESIndex_DeleteProduct(t *testing.T) {
	fc, idx := newFakeCluster(t)

	require.NoError(t, idx.DeleteProduct(context.Background(), 3))
	req, _ := fc.last()
	assert.Equal(t, "DELETE /products/_doc/3", req)

	require.NoError(t, idx.DeleteProduct(context.Background(), 404), "missing document is not an error")
}

func TestESIndex_Search(t *testing.T) {
	fc, idx := newFakeCluster(t)

	total, docs, err := idx.Search(context.Background(), "tabel", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, docs, 1)
	assert.Equal(t, "table", docs[0].Name)

	req, body := fc.last()
	assert.True(t, strings.HasSuffix(req, " /products/_search"), req)
	assert.Contains(t, body, `"fuzziness":"AUTO"`)
	assert.Contains(t, body, `"query":"tabel"`)
}
