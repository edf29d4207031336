package assets

import (
	"fmt"
	"math"
)

var sizeUnits = []string{"B", "KB", "MB", "GB"}

// FormatFileSize 以 1024 为底格式化字节数，未知或 0 时返回 "-"
func FormatFileSize(bytes *int64) string {
	if bytes == nil || *bytes <= 0 {
		return "-"
	}
	b := float64(*bytes)
	exp := int(math.Floor(math.Log(b) / math.Log(1024)))
	if exp > len(sizeUnits)-1 {
		exp = len(sizeUnits) - 1
	}
	size := b / math.Pow(1024, float64(exp))
	if size < 10 && exp > 0 {
		return fmt.Sprintf("%.1f %s", size, sizeUnits[exp])
	}
	return fmt.Sprintf("%.0f %s", size, sizeUnits[exp])
}
