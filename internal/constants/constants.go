package constants

// 购物车快照存储驱动
const (
	CartStoreMemory   = "memory"
	CartStoreFile     = "file"
	CartStoreRedis    = "redis"
	CartStoreDatabase = "database"
	CartStoreDynamoDB = "dynamodb"
)

// 对象存储提供方
const (
	StorageProviderSupabase = "supabase"
	StorageProviderGCS      = "gcs"
)

// 队列名称
const (
	QueueDefault = "default"
	QueueGallery = "gallery"
)

// 异步任务类型
const (
	TaskGalleryRefresh = "gallery:refresh"
	TaskContactForward = "contact:forward"
)

// 缓存 key
const (
	CacheKeyGalleryAssets = "gallery:assets"
)

// 联系表单状态
const (
	ContactStatusPending   = "pending"
	ContactStatusForwarded = "forwarded"
	ContactStatusFailed    = "failed"
	ContactStatusSkipped   = "skipped"
)

// 请求头
const (
	HeaderCartToken = "X-Cart-Token"
)
