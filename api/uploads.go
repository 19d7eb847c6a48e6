package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// allowedExtensions mirrors the media types the frontends can render.
var allowedExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
	".mp4": true, ".webm": true, ".mov": true, ".mkv": true,
}

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// objectName builds a collision-free storage key from the uploaded
// filename.
func objectName(filename string) string {
	base := unsafeFilenameChars.ReplaceAllString(filepath.Base(filename), "_")
	return fmt.Sprintf("%s_%s", strings.ReplaceAll(uuid.NewString(), "-", ""), base)
}

func (a *API) upload(w http.ResponseWriter, r *http.Request) {
	type response struct {
		URL string `json:"url"`
	}

	if _, err := a.currentAccount(r); err != nil {
		a.respondError(w, err, "Login required")
		return
	}
	if a.Uploader == nil {
		a.respondError(w, fmt.Errorf("no uploader configured"), "Media storage not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, a.Config.MaxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		a.respond(w, http.StatusBadRequest, errorResponse{Kind: kindValidation, Error: "No file"})
		return
	}
	defer file.Close()

	if header.Filename == "" {
		a.respond(w, http.StatusBadRequest, errorResponse{Kind: kindValidation, Error: "Empty filename"})
		return
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		a.respond(w, http.StatusBadRequest, errorResponse{Kind: kindValidation, Error: "File type not allowed"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		a.respondError(w, err, "Could not read upload")
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := a.Uploader.Upload(r.Context(), objectName(header.Filename), contentType, data)
	if err != nil {
		a.respondError(w, err, "Upload failed")
		return
	}

	a.respond(w, http.StatusOK, response{URL: url})
}
