package tracing

// Span attribute keys for sync tracing.
const (
	AttrUserID      = "user.id"
	AttrEntityType  = "entity.type"
	AttrRecordCount = "record.count"
	AttrTrigger     = "sync.trigger"

	AttrErrorMessage = "error.message"
)

// Span names for the sync passes.
const (
	SpanPush = "sync.push"
	SpanPull = "sync.pull"
	SpanWipe = "sync.wipe"
)
