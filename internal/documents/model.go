package documents

import "time"

// 受け入れ上限（10MB）。PDF以外は受け付けない。
const (
	MaxUploadBytes = 10 * 1024 * 1024
	PDFMimeType    = "application/pdf"
)

type Document struct {
	DocumentID    uint       `json:"document_id"`
	FileName      string     `json:"file_name"`
	StoredName    string     `json:"stored_name"`
	FileSize      int64      `json:"file_size"`
	MimeType      string     `json:"mime_type"`
	MD5Hash       *string    `json:"md5_hash,omitempty"`
	ReferenceDate *string    `json:"reference_date,omitempty"` // YYYY-MM-DD
	Description   *string    `json:"description,omitempty"`
	Active        bool       `json:"active"`
	AreaID        *uint      `json:"area_id,omitempty"`
	UploadedBy    *string    `json:"uploaded_by,omitempty"`
	UploadedAt    time.Time  `json:"uploaded_at"`
	ViewCount     int        `json:"view_count"`
	LastViewedAt  *time.Time `json:"last_viewed_at,omitempty"`
}

type UploadMeta struct {
	ReferenceDate *string
	Description   *string
	AreaID        *uint
	UploadedBy    string
}

type ListQuery struct {
	AreaID *uint
	Limit  int
	Offset int
}

const (
	DefaultPageLimit = 50
	MaxPageLimit     = 200
)
