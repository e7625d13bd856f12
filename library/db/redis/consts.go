package redis

const (
	keyPrefix     = "files_manager/"
	keyPrefixTask = keyPrefix + "tasks/"

	// KeyPrefixAuth is the key prefix for session token bindings
	KeyPrefixAuth = keyPrefix + "auth/"
	// KeyThumbnailPending is the list of thumbnail jobs waiting for a worker
	KeyThumbnailPending = keyPrefixTask + "thumbnail/pending"
	// KeyThumbnailProcessing is the list of thumbnail jobs currently in flight
	KeyThumbnailProcessing = keyPrefixTask + "thumbnail/processing"
)
