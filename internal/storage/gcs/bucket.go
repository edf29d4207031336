package gcs

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/quickprintz/storefront/internal/assets"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const publicHost = "https://storage.googleapis.com"

// Config GCS 桶配置
type Config struct {
	Bucket          string
	CredentialsFile string
	Public          bool
}

// Bucket Google Cloud Storage 桶
// 使用 "/" 分隔符模拟目录，前缀条目视为目录
type Bucket struct {
	client *storage.Client
	handle *storage.BucketHandle
	name   string
	public bool
}

// New 创建 GCS 客户端
func New(ctx context.Context, cfg Config) (*Bucket, error) {
	name := strings.Trim(strings.TrimSpace(cfg.Bucket), "/")
	if name == "" {
		return nil, errors.New("gcs bucket is required")
	}
	var opts []option.ClientOption
	if f := strings.TrimSpace(cfg.CredentialsFile); f != "" {
		opts = append(opts, option.WithCredentialsFile(f))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs: storage.NewClient failed: %w", err)
	}
	return &Bucket{client: client, handle: client.Bucket(name), name: name, public: cfg.Public}, nil
}

// Close 关闭客户端
func (b *Bucket) Close() error {
	if b == nil || b.client == nil {
		return nil
	}
	return b.client.Close()
}

// List 列出 prefix 下一页条目（对象按名称有序返回）
func (b *Bucket) List(ctx context.Context, prefix string, opts assets.ListOptions) ([]assets.Entry, error) {
	dir := dirPrefix(prefix)
	q := &storage.Query{Prefix: dir, Delimiter: "/"}
	if err := q.SetAttrSelection([]string{"Name", "Size", "ContentType", "Created", "Updated"}); err != nil {
		return nil, err
	}
	it := b.handle.Objects(ctx, q)
	entries, err := collect(it.Next, dir, opts.Offset, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("gcs: list %s/%s: %w", b.name, dir, err)
	}
	return entries, nil
}

// collect 跳过 offset 条后最多取 limit 条
func collect(next func() (*storage.ObjectAttrs, error), dir string, offset, limit int) ([]assets.Entry, error) {
	var out []assets.Entry
	skipped := 0
	for limit <= 0 || len(out) < limit {
		attrs, err := next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, err
		}
		entry, ok := toEntry(attrs, dir)
		if !ok {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func toEntry(attrs *storage.ObjectAttrs, dir string) (assets.Entry, bool) {
	if attrs == nil {
		return assets.Entry{}, false
	}
	if attrs.Prefix != "" {
		name := strings.TrimSuffix(strings.TrimPrefix(attrs.Prefix, dir), "/")
		if name == "" {
			return assets.Entry{}, false
		}
		return assets.Entry{Name: name}, true
	}
	name := strings.TrimPrefix(attrs.Name, dir)
	// 目录占位对象
	if name == "" || strings.HasSuffix(name, "/") {
		return assets.Entry{}, false
	}
	size := attrs.Size
	return assets.Entry{
		Name:      name,
		CreatedAt: formatTime(attrs.Created),
		UpdatedAt: formatTime(attrs.Updated),
		Metadata:  &assets.EntryMetadata{Size: &size, MimeType: attrs.ContentType},
	}, true
}

// PublicURL 公开桶的访问地址
func (b *Bucket) PublicURL(p string) string {
	if !b.public {
		return ""
	}
	return publicURL(b.name, p)
}

func publicURL(bucket, p string) string {
	u := url.URL{Path: path.Join("/", bucket, p)}
	return publicHost + u.EscapedPath()
}

// SignedURL V4 签名的 GET 地址
func (b *Bucket) SignedURL(_ context.Context, p string, ttl time.Duration) (string, error) {
	return b.handle.SignedURL(p, &storage.SignedURLOptions{
		Scheme:  storage.SigningSchemeV4,
		Method:  "GET",
		Expires: time.Now().UTC().Add(ttl),
	})
}

func dirPrefix(prefix string) string {
	p := strings.Trim(prefix, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}
