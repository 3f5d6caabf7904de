package models

import "time"

// FileUpload represents the file_uploads table for proof documents
type FileUpload struct {
	FileID       uint      `gorm:"primaryKey;column:file_id" json:"file_id"`
	OriginalName string    `gorm:"column:original_name" json:"original_name"`
	StoredPath   string    `gorm:"column:stored_path" json:"stored_path"`
	PublicURL    string    `gorm:"column:public_url" json:"public_url"`
	FileSize     int64     `gorm:"column:file_size" json:"file_size"`
	MimeType     string    `gorm:"column:mime_type" json:"mime_type"`
	UploadedBy   *string   `gorm:"column:uploaded_by" json:"uploaded_by,omitempty"`
	UploadedAt   time.Time `gorm:"column:uploaded_at" json:"uploaded_at"`
}

// TableName overrides the table name for FileUpload
func (FileUpload) TableName() string {
	return "file_uploads"
}

// IsValidProofType reports whether the upload is an accepted proof document
func (f *FileUpload) IsValidProofType() bool {
	validTypes := []string{"application/pdf", "image/jpeg", "image/jpg", "image/png", "image/webp"}
	for _, validType := range validTypes {
		if f.MimeType == validType {
			return true
		}
	}
	return false
}
