package net

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// FilePart 一个待上传的文件
type FilePart struct {
	Filename string
	Data     []byte
}

// MultipartPayload 描述一次 multipart/form-data 请求
// Files 的 value 为切片：同名字段（如 productImages）允许携带多个文件
type MultipartPayload struct {
	Fields map[string]string
	Files  map[string][]FilePart
}

// ProgressFunc 上传进度回调
// sent 单调不减，total 为整个 body 的字节数
type ProgressFunc func(sent, total int64)

// BuildMultipartRequest 构建 multipart 请求
// body 先在内存中组装完成，从而能拿到准确的 total；
// 读取经过 progressReader，每次被消费都会触发进度回调
func BuildMultipartRequest(ctx context.Context, method, url string, payload *MultipartPayload, onProgress ProgressFunc) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for name, value := range payload.Fields {
		if err := writer.WriteField(name, value); err != nil {
			return nil, fmt.Errorf("写入字段 %s 失败: %v", name, err)
		}
	}

	for name, parts := range payload.Files {
		for _, part := range parts {
			fw, err := writer.CreateFormFile(name, part.Filename)
			if err != nil {
				return nil, fmt.Errorf("创建文件字段 %s 失败: %v", name, err)
			}
			if _, err := fw.Write(part.Data); err != nil {
				return nil, fmt.Errorf("写入文件 %s 失败: %v", part.Filename, err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	total := int64(buf.Len())
	var body io.Reader = &buf
	if onProgress != nil {
		body = &progressReader{r: &buf, total: total, onProgress: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.ContentLength = total

	return req, nil
}

// progressReader 统计已读字节并回调
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	onProgress ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.onProgress(p.sent, p.total)
	}
	return n, err
}
