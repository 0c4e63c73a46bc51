package net

import (
	"context"
	"io"
	"net/http"
	"testing"
)

func TestBuildMultipartRequest_RoundTrip(t *testing.T) {
	payload := &MultipartPayload{
		Fields: map[string]string{
			"name":  "Vintage Guitar",
			"email": "seller@example.com",
		},
		Files: map[string][]FilePart{
			"images": {
				{Filename: "a.jpg", Data: []byte("aaaa")},
				{Filename: "b.jpg", Data: []byte("bbbbbb")},
			},
			"bannerImage": {
				{Filename: "banner.png", Data: []byte("pppppppp")},
			},
		},
	}

	req, err := BuildMultipartRequest(context.Background(), http.MethodPost, "http://example.com/api/products", payload, nil)
	if err != nil {
		t.Fatalf("构建请求失败: %v", err)
	}

	if req.ContentLength <= 0 {
		t.Error("ContentLength 应为正值")
	}

	// 服务端视角解析回去
	if err := req.ParseMultipartForm(1 << 20); err != nil {
		t.Fatalf("解析 multipart 失败: %v", err)
	}

	if got := req.FormValue("name"); got != "Vintage Guitar" {
		t.Errorf("name = %q", got)
	}
	if got := req.FormValue("email"); got != "seller@example.com" {
		t.Errorf("email = %q", got)
	}

	images := req.MultipartForm.File["images"]
	if len(images) != 2 {
		t.Fatalf("images 文件数 = %d, 期望 2", len(images))
	}
	f, _ := images[1].Open()
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != "bbbbbb" {
		t.Errorf("第二张图内容 = %q", data)
	}

	if len(req.MultipartForm.File["bannerImage"]) != 1 {
		t.Error("bannerImage 应有 1 个文件")
	}
}

func TestBuildMultipartRequest_Progress(t *testing.T) {
	payload := &MultipartPayload{
		Fields: map[string]string{"name": "x"},
		Files: map[string][]FilePart{
			"images": {{Filename: "big.bin", Data: make([]byte, 256<<10)}},
		},
	}

	var calls []int64
	var total int64
	req, err := BuildMultipartRequest(context.Background(), http.MethodPost, "http://example.com/upload", payload,
		func(sent, t int64) {
			calls = append(calls, sent)
			total = t
		})
	if err != nil {
		t.Fatalf("构建请求失败: %v", err)
	}

	// 消费整个 body，模拟传输
	n, err := io.Copy(io.Discard, req.Body)
	if err != nil {
		t.Fatalf("读取 body 失败: %v", err)
	}

	if n != total {
		t.Errorf("读出 %d 字节, total = %d", n, total)
	}
	if len(calls) == 0 {
		t.Fatal("进度回调从未触发")
	}

	// 单调不减，且最终到达 total
	for i := 1; i < len(calls); i++ {
		if calls[i] < calls[i-1] {
			t.Fatalf("进度回退: %d -> %d", calls[i-1], calls[i])
		}
	}
	if calls[len(calls)-1] != total {
		t.Errorf("最终进度 = %d, 期望 %d", calls[len(calls)-1], total)
	}
}
