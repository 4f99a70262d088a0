package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalError represents a generic internal error.
	GeneralInternalError ErrorCode = "general_internal_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// FeedDiscoveryError represents a failure to locate the input feed files.
	FeedDiscoveryError ErrorCode = "feed_discovery_error"
	// FeedOpenError represents a failure to open an input feed file.
	FeedOpenError ErrorCode = "feed_open_error"
	// FeedParseError represents a malformed row in an input feed file.
	FeedParseError ErrorCode = "feed_parse_error"

	// SnapshotWriteError represents a failure to write to the snapshot sink.
	SnapshotWriteError ErrorCode = "snapshot_write_error"
	// SnapshotPublishError represents a failure to publish a snapshot to the feed topic.
	SnapshotPublishError ErrorCode = "snapshot_publish_error"
)
