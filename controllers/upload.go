package controllers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"openbudget-api/config"
	"openbudget-api/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxProofFileSize = int64(5 * 1024 * 1024) // 5MB

var proofExtensionToMime = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// UploadProof stores a milestone proof document and records it
func UploadProof(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}

	if file.Size > maxProofFileSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File size exceeds 5MB limit"})
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	mimeType, ok := proofExtensionToMime[ext]
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed. Use PDF, JPEG, PNG, or WebP"})
		return
	}

	upload := models.FileUpload{
		OriginalName: file.Filename,
		FileSize:     file.Size,
		MimeType:     mimeType,
	}
	if !upload.IsValidProofType() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File type not allowed. Use PDF, JPEG, PNG, or WebP"})
		return
	}

	uploadDir := os.Getenv("UPLOAD_PATH")
	if uploadDir == "" {
		uploadDir = "uploads/proofs"
	}
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to prepare upload directory"})
		return
	}

	storedName := fmt.Sprintf("%d_%s%s", time.Now().Unix(), uuid.NewString(), ext)
	dstPath := filepath.Join(uploadDir, storedName)
	if err := c.SaveUploadedFile(file, dstPath); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save file"})
		return
	}

	publicURL := "/uploads/proofs/" + storedName

	upload.StoredPath = dstPath
	upload.PublicURL = publicURL
	upload.UploadedAt = time.Now()
	if email, ok := c.Get("email"); ok {
		uploadedBy := email.(string)
		upload.UploadedBy = &uploadedBy
	}

	if err := config.DB.Create(&upload).Error; err != nil {
		os.Remove(dstPath)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record upload"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"file": gin.H{
			"file_id":       upload.FileID,
			"original_name": upload.OriginalName,
			"public_url":    upload.PublicURL,
			"file_size":     upload.FileSize,
			"mime_type":     upload.MimeType,
		},
		"message": "File uploaded successfully",
	})
}
