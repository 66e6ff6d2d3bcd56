// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// DefaultSavePath is the directory downloads land in when the caller gives none.
const DefaultSavePath = "./downloads"

// DownloadRequest asks one paper provider to fetch a paper PDF.
type DownloadRequest struct {
	PaperID  string `json:"paper_id"`
	Provider string `json:"provider"`
	SavePath string `json:"save_path,omitempty"`
}

// DownloadResult describes a completed download.
type DownloadResult struct {
	FilePath string `json:"file_path"`
	Provider string `json:"provider"`
	PaperID  string `json:"paper_id"`
	Message  string `json:"message"`
}

// ReadRequest asks one paper provider to download a paper and return its text.
type ReadRequest struct {
	PaperID  string `json:"paper_id"`
	Provider string `json:"provider"`
	SavePath string `json:"save_path,omitempty"`
}

// ReadResult holds the extracted text of a downloaded paper.
type ReadResult struct {
	PaperID  string `json:"paper_id"`
	Provider string `json:"provider"`
	FilePath string `json:"file_path"`
	Content  string `json:"content"`
	Message  string `json:"message"`
}
