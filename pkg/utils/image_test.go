package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==================== 单元测试 ====================

func TestImageProber_Probe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.gif":
			w.Header().Set("Content-Type", "image/gif")
		case "/b.png":
			w.Header().Set("Content-Type", "image/png; charset=binary")
		case "/c.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
		case "/d.webp":
			w.Header().Set("Content-Type", "image/webp")
		case "/e.txt":
			w.Header().Set("Content-Type", "text/plain")
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	prober := NewImageProber()
	ctx := context.Background()

	cases := []struct {
		path string
		want string
	}{
		{"/a.gif", "gif"},
		{"/b.png", "png"},
		{"/c.jpg", "jpeg"},
		{"/d.webp", "webp"},
		{"/e.txt", "gif"},   // 非图片类型落默认值
		{"/missing", "gif"}, // 4xx 落默认值
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, prober.Probe(ctx, server.URL+tc.path), "path %s", tc.path)
	}
}

func TestImageProber_Unreachable(t *testing.T) {
	prober := NewImageProber()

	// 连不上的地址不报错，落默认值
	assert.Equal(t, "gif", prober.Probe(context.Background(), "http://127.0.0.1:1/x.gif"))
}

func TestClassifyContentType(t *testing.T) {
	assert.Equal(t, "gif", classifyContentType(""), "空类型应落默认值")
	assert.Equal(t, "jpeg", classifyContentType("image/jpg"))
	assert.Equal(t, "png", classifyContentType("image/png; charset=binary"))
	assert.Equal(t, "gif", classifyContentType("application/octet-stream"))
}
