package utils

import (
	"bytes"
	"fmt"
	"image"

	// 注册解码器：商品/横幅图片只接受这三种格式
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// ImageInfo 图片头部信息
type ImageInfo struct {
	Width  int
	Height int
	Format string // "jpeg" / "png" / "gif"
}

// MeasureImage 解析图片头部，返回自然宽高与格式
// 只解码配置信息，不做全图解码，开销可忽略
func MeasureImage(data []byte) (*ImageInfo, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("图片数据为空")
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("无法识别的图片格式: %v", err)
	}

	return &ImageInfo{
		Width:  cfg.Width,
		Height: cfg.Height,
		Format: format,
	}, nil
}
