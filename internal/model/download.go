package model

// DownloadRequest is one UI-initiated download
type DownloadRequest struct {
	SourceURL string `json:"downloadPath"`
	FileName  string `json:"fileName"`
}

// DownloadProgress is emitted after every chunk written to disk
type DownloadProgress struct {
	LengthComputable bool   `json:"lengthComputable"`
	Loaded           uint64 `json:"loaded"`
	Total            uint64 `json:"total"`
}

// NewDownloadProgress builds a progress value for a body of known length
func NewDownloadProgress(loaded, total uint64) DownloadProgress {
	return DownloadProgress{
		LengthComputable: true,
		Loaded:           loaded,
		Total:            total,
	}
}

// Percent returns loaded/total as a percentage, or 0 when total is 0
func (p DownloadProgress) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Loaded) / float64(p.Total) * 100
}

// IsComplete reports whether every declared byte has been written
func (p DownloadProgress) IsComplete() bool {
	return p.LengthComputable && p.Loaded >= p.Total
}
