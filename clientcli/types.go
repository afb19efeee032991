package clientcli

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPaths []string
	// RemoteDir is the server directory that receives the files.
	RemoteDir string
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath  string `json:"local_path"`
	RemotePath string `json:"remote_path"`
	ETag       string `json:"etag"`
	Size       int64  `json:"size_bytes"`
	Err        error  `json:"-"` // nil on success
}

// DownloadOptions configures a download operation.
type DownloadOptions struct {
	RemotePath string
	LocalPath  string // empty = derive from remote, "-" = stdout
}

// DownloadResult represents the result of downloading a file.
type DownloadResult struct {
	RemotePath  string `json:"remote_path"`
	LocalPath   string `json:"local_path"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size_bytes"`
}
