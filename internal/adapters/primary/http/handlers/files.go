package handlers

import (
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// File endpoints back the remote storage proxy: clients without direct
// storage access stage card artifacts through them.

func (h *Handler) PutFile(c *gin.Context) {
	remotePath := c.Query("path")
	if remotePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	tmpDir, err := os.MkdirTemp("", "cardstore-upload-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer os.RemoveAll(tmpDir)

	localPath := filepath.Join(tmpDir, filepath.Base(remotePath))
	dst, err := os.Create(localPath)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if _, err := io.Copy(dst, c.Request.Body); err != nil {
		dst.Close()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	dst.Close()

	if err := h.storage.Put(c.Request.Context(), localPath, remotePath); err != nil {
		log.WithError(err).WithField("path", remotePath).Error("file upload failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.Status(http.StatusCreated)
}

func (h *Handler) GetFile(c *gin.Context) {
	remotePath := c.Query("path")
	if remotePath == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	exists, err := h.storage.Exists(c.Request.Context(), remotePath)
	if err != nil {
		log.WithError(err).WithField("path", remotePath).Error("file stat failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found: " + remotePath})
		return
	}

	tmpDir, err := os.MkdirTemp("", "cardstore-download-")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer os.RemoveAll(tmpDir)

	localPath := filepath.Join(tmpDir, filepath.Base(remotePath))
	if err := h.storage.Get(c.Request.Context(), remotePath, localPath); err != nil {
		log.WithError(err).WithField("path", remotePath).Error("file download failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.File(localPath)
}

func (h *Handler) StatFile(c *gin.Context) {
	remotePath := c.Query("path")
	if remotePath == "" {
		c.Status(http.StatusBadRequest)
		return
	}

	exists, err := h.storage.Exists(c.Request.Context(), remotePath)
	if err != nil {
		c.Status(http.StatusInternalServerError)
		return
	}
	if !exists {
		c.Status(http.StatusNotFound)
		return
	}
	c.Status(http.StatusOK)
}

func (h *Handler) ListFiles(c *gin.Context) {
	dir := c.Query("dir")
	if dir == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "dir is required"})
		return
	}

	files, err := h.storage.List(c.Request.Context(), dir)
	if err != nil {
		log.WithError(err).WithField("dir", dir).Error("file list failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"files": files})
}
