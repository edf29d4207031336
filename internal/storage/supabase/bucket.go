package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/quickprintz/storefront/internal/assets"
)

var (
	ErrConfigInvalid   = errors.New("supabase storage config invalid")
	ErrRequestFailed   = errors.New("supabase storage request failed")
	ErrResponseInvalid = errors.New("supabase storage response invalid")
)

const (
	defaultTimeout   = 15 * time.Second
	defaultThumbSize = 420
	defaultThumbQ    = 35
)

// Config Supabase Storage 配置
type Config struct {
	ProjectURL string
	AnonKey    string
	Bucket     string
	// Public 桶是否公开；公开时直接拼接公开地址
	Public  bool
	Timeout time.Duration
}

func (c *Config) normalize() {
	c.ProjectURL = strings.TrimRight(strings.TrimSpace(c.ProjectURL), "/")
	c.AnonKey = strings.TrimSpace(c.AnonKey)
	c.Bucket = strings.Trim(strings.TrimSpace(c.Bucket), "/")
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	if c.ProjectURL == "" {
		return fmt.Errorf("%w: project_url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(c.ProjectURL); err != nil {
		return fmt.Errorf("%w: project_url is invalid", ErrConfigInvalid)
	}
	if c.AnonKey == "" {
		return fmt.Errorf("%w: anon_key is required", ErrConfigInvalid)
	}
	if c.Bucket == "" {
		return fmt.Errorf("%w: bucket is required", ErrConfigInvalid)
	}
	return nil
}

// Bucket Supabase Storage REST 桶
type Bucket struct {
	cfg    Config
	client *http.Client
}

// New 创建桶客户端，配置缺失时不报错，首次调用时失败
func New(cfg Config, client *http.Client) *Bucket {
	cfg.normalize()
	if client == nil {
		client = http.DefaultClient
	}
	return &Bucket{cfg: cfg, client: client}
}

type listRequest struct {
	Prefix string        `json:"prefix"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	SortBy assets.SortBy `json:"sortBy"`
}

type listItem struct {
	Name           string        `json:"name"`
	ID             *string       `json:"id"`
	CreatedAt      *string       `json:"created_at"`
	UpdatedAt      *string       `json:"updated_at"`
	LastAccessedAt *string       `json:"last_accessed_at"`
	Metadata       *itemMetadata `json:"metadata"`
}

type itemMetadata struct {
	Size        json.RawMessage `json:"size"`
	MimeType    *string         `json:"mimetype"`
	ContentType *string         `json:"contentType"`
}

// List 列出 prefix 下一页条目
func (b *Bucket) List(ctx context.Context, prefix string, opts assets.ListOptions) ([]assets.Entry, error) {
	if err := b.cfg.Validate(); err != nil {
		return nil, err
	}
	if opts.SortBy == (assets.SortBy{}) {
		opts.SortBy = assets.NameAsc
	}
	body, err := json.Marshal(listRequest{Prefix: prefix, Limit: opts.Limit, Offset: opts.Offset, SortBy: opts.SortBy})
	if err != nil {
		return nil, fmt.Errorf("%w: encode list request", ErrRequestFailed)
	}
	respBody, err := b.doJSONRequest(ctx, "/storage/v1/object/list/"+b.cfg.Bucket, body)
	if err != nil {
		return nil, err
	}
	var items []listItem
	if err := json.Unmarshal(respBody, &items); err != nil {
		return nil, fmt.Errorf("%w: decode list response", ErrResponseInvalid)
	}
	entries := make([]assets.Entry, 0, len(items))
	for _, item := range items {
		entries = append(entries, toEntry(item))
	}
	return entries, nil
}

func toEntry(item listItem) assets.Entry {
	e := assets.Entry{
		Name:           item.Name,
		ID:             deref(item.ID),
		CreatedAt:      deref(item.CreatedAt),
		UpdatedAt:      deref(item.UpdatedAt),
		LastAccessedAt: deref(item.LastAccessedAt),
	}
	if item.Metadata != nil {
		e.Metadata = &assets.EntryMetadata{
			Size:     normalizeSize(item.Metadata.Size),
			MimeType: normalizeMime(item.Metadata),
		}
	}
	return e
}

// normalizeSize 支持数字或数字字符串
func normalizeSize(raw json.RawMessage) *int64 {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var n json.Number
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil
		}
		n = json.Number(strings.TrimSpace(s))
	} else {
		n = json.Number(raw)
	}
	if i, err := n.Int64(); err == nil {
		return &i
	}
	f, err := n.Float64()
	if err != nil {
		return nil
	}
	i := int64(f)
	return &i
}

func normalizeMime(meta *itemMetadata) string {
	if meta.MimeType != nil {
		return *meta.MimeType
	}
	if meta.ContentType != nil {
		return *meta.ContentType
	}
	return ""
}

// PublicURL 公开桶的访问地址
func (b *Bucket) PublicURL(path string) string {
	if !b.cfg.Public || b.cfg.ProjectURL == "" || b.cfg.Bucket == "" {
		return ""
	}
	return b.cfg.ProjectURL + "/storage/v1/object/public/" + b.cfg.Bucket + "/" + encodePath(path)
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
}

// SignedURL 生成限时签名地址
func (b *Bucket) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	if err := b.cfg.Validate(); err != nil {
		return "", err
	}
	body, err := json.Marshal(signRequest{ExpiresIn: int(ttl.Seconds())})
	if err != nil {
		return "", fmt.Errorf("%w: encode sign request", ErrRequestFailed)
	}
	respBody, err := b.doJSONRequest(ctx, "/storage/v1/object/sign/"+b.cfg.Bucket+"/"+encodePath(path), body)
	if err != nil {
		return "", err
	}
	var resp signResponse
	if err := json.Unmarshal(respBody, &resp); err != nil || resp.SignedURL == "" {
		return "", fmt.Errorf("%w: missing signedURL", ErrResponseInvalid)
	}
	if strings.HasPrefix(resp.SignedURL, "http://") || strings.HasPrefix(resp.SignedURL, "https://") {
		return resp.SignedURL, nil
	}
	// 返回值为相对 /storage/v1 的路径
	return b.cfg.ProjectURL + "/storage/v1" + "/" + strings.TrimLeft(resp.SignedURL, "/"), nil
}

// ThumbnailURL 图片渲染缩略图地址，width/quality 为 0 时使用默认值
func (b *Bucket) ThumbnailURL(path string, width, quality int) string {
	if b.cfg.ProjectURL == "" {
		return ""
	}
	if width <= 0 {
		width = defaultThumbSize
	}
	if quality <= 0 {
		quality = defaultThumbQ
	}
	params := url.Values{}
	params.Set("width", strconv.Itoa(width))
	params.Set("quality", strconv.Itoa(quality))
	params.Set("resize", "contain")
	return b.cfg.ProjectURL + "/storage/v1/render/image/public/" + b.cfg.Bucket + "/" + encodePath(path) + "?" + params.Encode()
}

func (b *Bucket) doJSONRequest(ctx context.Context, endpoint string, body []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.ProjectURL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: build request", ErrRequestFailed)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", b.cfg.AnonKey)
	req.Header.Set("Authorization", "Bearer "+b.cfg.AnonKey)

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response failed", ErrRequestFailed)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: status %d %s", ErrRequestFailed, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return respBody, nil
}

// encodePath 逐段转义
func encodePath(path string) string {
	parts := strings.Split(path, "/")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, url.PathEscape(p))
	}
	return strings.Join(out, "/")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
