// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // register GIF decoder
	_ "image/jpeg" // register JPEG decoder
	_ "image/png"  // register PNG decoder
	"io"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/google/uuid"
	_ "golang.org/x/image/webp" // register WebP decoder

	"papermill/internal/models"
	"papermill/internal/storage"
)

const (
	// maxUploadSize is the maximum allowed image upload size (10 MB).
	maxUploadSize = 10 << 20

	// maxImagePixels caps decoded dimensions to keep renders bounded.
	maxImagePixels = 50_000_000
)

// imageExtensions maps accepted upload types to their file extension.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// UploadAsset handles POST /v1/assets: a multipart image upload to the
// public bucket. The response URL can be used as a layout image src.
func (a *API) UploadAsset(w http.ResponseWriter, r *http.Request) {
	org, ok := orgID(w, r)
	if !ok {
		return
	}
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, CodeUnavailable, "object storage is not configured")
		return
	}

	// Limit request body to maxUploadSize plus room for form fields.
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, CodeValidation, "no file provided")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, CodeTooLarge, "file too large, maximum size is 10 MB")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		internalError(w, "read upload", err)
		return
	}

	// Sniff instead of trusting the client's Content-Type.
	contentType := http.DetectContentType(data)
	ext, allowed := imageExtensions[contentType]
	if !allowed {
		writeError(w, http.StatusUnsupportedMediaType, CodeUnsupportedMedia,
			fmt.Sprintf("file type %q is not allowed", contentType))
		return
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation, "file is not a readable image")
		return
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || cfg.Width*cfg.Height > maxImagePixels {
		writeError(w, http.StatusUnprocessableEntity, CodeValidation,
			fmt.Sprintf("image dimensions %dx%d are not allowed", cfg.Width, cfg.Height))
		return
	}

	ctx := r.Context()
	id := uuid.New()
	key := storage.ImageKey(org, id, ext)
	bucket := a.storage.PublicBucket()
	if err := a.storage.Upload(ctx, bucket, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, CodeUnavailable, "failed to upload file")
		return
	}

	filename := filepath.Base(header.Filename)
	if filename == "." || filename == "/" {
		filename = id.String() + ext
	}
	created, err := a.assets.Create(ctx, &models.Asset{
		ID:          id,
		OrgID:       org,
		Kind:        models.AssetKindImage,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   int64(len(data)),
		Width:       cfg.Width,
		Height:      cfg.Height,
		Bucket:      bucket,
		S3Key:       key,
	})
	if err != nil {
		internalError(w, "save asset", err)
		return
	}

	created.URL = a.storage.FileURL(created.S3Key)
	writeJSON(w, http.StatusCreated, created)
}

// GetAsset handles GET /v1/assets/{id}. Images get their public URL and
// generated PDFs a presigned one.
func (a *API) GetAsset(w http.ResponseWriter, r *http.Request) {
	org, ok := orgID(w, r)
	if !ok {
		return
	}
	id, ok := pathID(w, r, "id", "asset")
	if !ok {
		return
	}
	asset, err := a.assets.FindByID(r.Context(), org, id)
	if err != nil {
		internalError(w, "find asset", err)
		return
	}
	if asset == nil {
		notFound(w, "asset")
		return
	}

	if a.storage != nil {
		if asset.IsImage() {
			asset.URL = a.storage.FileURL(asset.S3Key)
		} else if url, err := a.storage.PresignedURL(r.Context(), asset.Bucket, asset.S3Key, downloadExpiry); err == nil {
			asset.URL = url
		} else {
			slog.Warn("presign asset failed", "asset", asset.ID, "error", err)
		}
	}
	writeJSON(w, http.StatusOK, asset)
}
