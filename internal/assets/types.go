package assets

import (
	"context"
	"time"
)

// SortBy 列表排序
type SortBy struct {
	Column string `json:"column"`
	Order  string `json:"order"`
}

// NameAsc 按名称升序
var NameAsc = SortBy{Column: "name", Order: "asc"}

// ListOptions 分页列表参数
type ListOptions struct {
	Limit  int
	Offset int
	SortBy SortBy
}

// EntryMetadata 文件元数据
type EntryMetadata struct {
	Size     *int64
	MimeType string
}

// Entry 对象存储列表中的一项
// Metadata 为 nil 表示目录
type Entry struct {
	Name           string
	ID             string
	CreatedAt      string
	UpdatedAt      string
	LastAccessedAt string
	Metadata       *EntryMetadata
}

// IsDir 是否为目录
func (e Entry) IsDir() bool {
	return e.Metadata == nil
}

// Bucket 对象存储桶
type Bucket interface {
	// List 列出 prefix 下的一页条目
	List(ctx context.Context, prefix string, opts ListOptions) ([]Entry, error)
	// PublicURL 返回公开地址，桶不公开时返回空串
	PublicURL(path string) string
	// SignedURL 生成限时签名地址
	SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error)
}

// Asset 设计素材
type Asset struct {
	ID             *string `json:"id"`
	Name           string  `json:"name"`
	Path           string  `json:"path"`
	PublicURL      string  `json:"public_url"`
	CreatedAt      *string `json:"created_at"`
	UpdatedAt      *string `json:"updated_at"`
	LastAccessedAt *string `json:"last_accessed_at"`
	Size           *int64  `json:"size"`
	MimeType       *string `json:"mime_type"`
}

func newAsset(path string, e Entry, url string) Asset {
	a := Asset{
		ID:             optional(e.ID),
		Name:           e.Name,
		Path:           path,
		PublicURL:      url,
		CreatedAt:      optional(e.CreatedAt),
		UpdatedAt:      optional(e.UpdatedAt),
		LastAccessedAt: optional(e.LastAccessedAt),
	}
	if e.Metadata != nil {
		a.Size = e.Metadata.Size
		a.MimeType = optional(e.Metadata.MimeType)
	}
	return a
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
