package model

// DownloadStatus represents the lifecycle state of a single download
type DownloadStatus string

const (
	// DownloadStatusPending means the download waits for the user to pick a destination
	DownloadStatusPending DownloadStatus = "Pending"

	// DownloadStatusDownloading means bytes are being streamed to disk
	DownloadStatusDownloading DownloadStatus = "Downloading"

	// DownloadStatusCompleted means the body was fully written
	DownloadStatusCompleted DownloadStatus = "Completed"

	// DownloadStatusCancelled means the user declined a folder or overwrite prompt
	DownloadStatusCancelled DownloadStatus = "Cancelled"

	// DownloadStatusError means the download failed after the request began
	DownloadStatusError DownloadStatus = "Error"
)

// String returns the string representation of DownloadStatus
func (ds DownloadStatus) String() string {
	return string(ds)
}

// IsActive returns true while the download is waiting on the user or the network
func (ds DownloadStatus) IsActive() bool {
	return ds == DownloadStatusPending || ds == DownloadStatusDownloading
}

// IsFinished returns true if the download reached a terminal state
func (ds DownloadStatus) IsFinished() bool {
	return ds == DownloadStatusCompleted || ds == DownloadStatusCancelled || ds == DownloadStatusError
}
