package types

// Backend names used as RemoteFile tags and in StorageConfig.Backend
const (
	BackendLocal = "local"
	BackendS3    = "s3"
	BackendAzure = "azure"
	BackendBunny = "bunny"
)

// RemoteFile is a persisted reference to a file in some storage backend.
// Backend tells which backend owns the file and Key is whatever that
// backend needs to address it again (an object key, a relative path).
// The serialized field names are stable; stored references must decode
// unchanged across versions.
type RemoteFile struct {
	Backend string `json:"backend"`
	Key     string `json:"key"`
}

// BunnyFile returns a reference to a file in a Bunny Storage bucket
func BunnyFile(key string) RemoteFile {
	return RemoteFile{Backend: BackendBunny, Key: key}
}

// LocalFile returns a reference to a file on the local filesystem backend
func LocalFile(key string) RemoteFile {
	return RemoteFile{Backend: BackendLocal, Key: key}
}

// S3File returns a reference to an object in the S3 backend
func S3File(key string) RemoteFile {
	return RemoteFile{Backend: BackendS3, Key: key}
}

// AzureFile returns a reference to a blob in the Azure backend
func AzureFile(key string) RemoteFile {
	return RemoteFile{Backend: BackendAzure, Key: key}
}
