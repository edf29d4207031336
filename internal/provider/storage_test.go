package provider

import (
	"context"
	"testing"

	"github.com/quickprintz/storefront/internal/config"
)

func TestNewBucketReturnsCloser(t *testing.T) {
	for _, name := range []string{"", "supabase", "SUPABASE"} {
		bucket, closer, err := NewBucket(context.Background(), config.StorageConfig{Provider: name})
		if err != nil {
			t.Fatalf("provider %q: unexpected error %v", name, err)
		}
		if bucket == nil || closer == nil {
			t.Fatalf("provider %q: bucket and closer must be set", name)
		}
		if err := closer(); err != nil {
			t.Fatalf("provider %q: close failed: %v", name, err)
		}
	}
	if _, _, err := NewBucket(context.Background(), config.StorageConfig{Provider: "s3"}); err == nil {
		t.Fatalf("unknown provider should fail")
	}
}
