package utils

import (
	"context"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/tevis-trtr/Deadpool-store/internal/model"
)

// ==================== 图片类型探测 ====================

// ImageProber 对图片 URL 发 HEAD 请求，按 Content-Type 归类图片类型。
// 探测只影响展示层的 tipoImagem 字段，任何失败都落默认值，不阻断主流程。
type ImageProber struct {
	client *resty.Client
}

// NewImageProber 创建探测器，短超时 + 少量重试，防止网络波动拖慢创建
func NewImageProber() *ImageProber {
	client := resty.New()
	client.SetTimeout(5 * time.Second)
	client.SetRetryCount(1)
	return &ImageProber{client: client}
}

// Probe 返回 gif/png/jpeg/webp 之一，未知或失败返回默认值
func (p *ImageProber) Probe(ctx context.Context, url string) string {
	resp, err := p.client.R().SetContext(ctx).Head(url)
	if err != nil || resp.StatusCode() >= 400 {
		return model.DefaultImageType
	}
	return classifyContentType(resp.Header().Get("Content-Type"))
}

func classifyContentType(contentType string) string {
	switch {
	case strings.Contains(contentType, "image/gif"):
		return "gif"
	case strings.Contains(contentType, "image/png"):
		return "png"
	case strings.Contains(contentType, "image/jpeg"), strings.Contains(contentType, "image/jpg"):
		return "jpeg"
	case strings.Contains(contentType, "image/webp"):
		return "webp"
	}
	return model.DefaultImageType
}
