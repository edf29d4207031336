package assets

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/quickprintz/storefront/internal/logger"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultPageSize     = 100
	DefaultSignedURLTTL = 24 * time.Hour
)

// Options 列表参数
type Options struct {
	Root            string
	PageSize        int
	SignedURLTTL    time.Duration
	ExcludedFolders []string
	// Concurrency 单页内并发解析的上限，0 表示不限制
	Concurrency int
}

// Lister 递归列出桶内全部素材
type Lister struct {
	bucket Bucket
	opts   Options
}

// NewLister 创建 Lister
func NewLister(bucket Bucket, opts Options) *Lister {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = DefaultSignedURLTTL
	}
	opts.Root = strings.Trim(opts.Root, "/")
	return &Lister{bucket: bucket, opts: opts}
}

// List 遍历、排除、按时间排序
// 任意一次列表调用失败都会中止整个遍历
func (l *Lister) List(ctx context.Context) ([]Asset, error) {
	if l == nil || l.bucket == nil {
		return nil, fmt.Errorf("asset bucket not configured")
	}
	all, err := l.walk(ctx, l.opts.Root)
	if err != nil {
		return nil, err
	}
	kept := Exclude(all, l.opts.ExcludedFolders)
	SortByRecency(kept)
	return kept, nil
}

func (l *Lister) walk(ctx context.Context, prefix string) ([]Asset, error) {
	var out []Asset
	offset := 0
	for {
		entries, err := l.bucket.List(ctx, prefix, ListOptions{
			Limit:  l.opts.PageSize,
			Offset: offset,
			SortBy: NameAsc,
		})
		if err != nil {
			return nil, fmt.Errorf("list %q offset %d: %w", prefix, offset, err)
		}
		if len(entries) == 0 {
			break
		}

		// 同一页内并发，按条目顺序拼接结果
		results := make([][]Asset, len(entries))
		g, gctx := errgroup.WithContext(ctx)
		if l.opts.Concurrency > 0 {
			g.SetLimit(l.opts.Concurrency)
		}
		for i, entry := range entries {
			g.Go(func() error {
				path := joinPath(prefix, entry.Name)
				if entry.IsDir() {
					sub, err := l.walk(gctx, path)
					if err != nil {
						return err
					}
					results[i] = sub
					return nil
				}
				results[i] = []Asset{newAsset(path, entry, l.resolveURL(gctx, path))}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		for _, r := range results {
			out = append(out, r...)
		}

		if len(entries) < l.opts.PageSize {
			break
		}
		offset += l.opts.PageSize
	}
	return out, nil
}

// resolveURL 优先公开地址，否则生成签名地址；签名失败时返回空串
func (l *Lister) resolveURL(ctx context.Context, path string) string {
	if url := l.bucket.PublicURL(path); url != "" {
		return url
	}
	signed, err := l.bucket.SignedURL(ctx, path, l.opts.SignedURLTTL)
	if err != nil {
		logger.Debugw("asset_signed_url_failed", "path", path, "error", err)
		return ""
	}
	return signed
}

func joinPath(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "/" + name
}

// Exclude 过滤排除目录下的素材（不区分大小写）
func Exclude(items []Asset, folders []string) []Asset {
	out := make([]Asset, 0, len(items))
	for _, a := range items {
		if !InExcludedFolder(a.Path, folders) {
			out = append(out, a)
		}
	}
	return out
}

// InExcludedFolder 路径等于目录或以 "目录/" 开头
func InExcludedFolder(path string, folders []string) bool {
	p := strings.ToLower(path)
	for _, folder := range folders {
		f := strings.ToLower(strings.Trim(strings.TrimSpace(folder), "/"))
		if f == "" {
			continue
		}
		if p == f || strings.HasPrefix(p, f+"/") {
			return true
		}
	}
	return false
}

// SortByRecency 按更新时间（缺省创建时间）倒序，时间相同按名称升序
func SortByRecency(items []Asset) {
	sort.SliceStable(items, func(i, j int) bool {
		ti, tj := timestamp(items[i]), timestamp(items[j])
		if ti != tj {
			return ti > tj
		}
		return compareNames(items[i].Name, items[j].Name) < 0
	})
}

func timestamp(a Asset) int64 {
	candidate := a.UpdatedAt
	if candidate == nil {
		candidate = a.CreatedAt
	}
	if candidate == nil {
		return 0
	}
	t, ok := parseTime(*candidate)
	if !ok {
		return 0
	}
	return t.UnixMilli()
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// compareNames 先忽略大小写比较，再区分大小写
func compareNames(a, b string) int {
	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
