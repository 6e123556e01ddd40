package logger

// Fields is an alias for map[string]interface{} for convenience.
type Fields map[string]interface{}

// Standard tracing fields, propagated through the call chain.
const (
	// FieldRequestID is the HTTP request ID (UUID)
	FieldRequestID = "request_id"

	// FieldMemeID is the meme analysis record ID
	FieldMemeID = "meme_id"

	// FieldComponent is the component/module name
	FieldComponent = "component"

	// FieldSubreddit is the Reddit source subreddit
	FieldSubreddit = "subreddit"

	// FieldPrompt is the logical prompt name
	FieldPrompt = "prompt"
)

// Standard metric fields, used for aggregation and alerting.
const (
	// FieldDurationMs is the execution duration in milliseconds
	FieldDurationMs = "duration_ms"

	// FieldCount is a generic count field
	FieldCount = "count"

	// FieldStatus is the operation status
	FieldStatus = "status"
)
