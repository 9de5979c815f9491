package media

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
)

// ValidationResult contains the outcome of posture media validation.
type ValidationResult struct {
	Valid        bool
	Extension    string
	DetectedMIME string
	IsVideo      bool
	Error        string
}

// Magic byte signatures per extension. MP4/MOV carry their "ftyp" marker at
// offset 4, handled separately in validateMagicBytes.
var magicBytes = map[string][][]byte{
	".jpg":  {{0xFF, 0xD8, 0xFF}},
	".jpeg": {{0xFF, 0xD8, 0xFF}},
	".png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	".webp": {{0x52, 0x49, 0x46, 0x46}}, // RIFF header
	".mp4":  nil,
	".mov":  nil,
}

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
}

var allowedMIMETypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"video/mp4":       true,
	"video/quicktime": true,
}

// ftypMarker sits at byte offset 4 in ISO base media files (MP4, MOV).
var ftypMarker = []byte{0x66, 0x74, 0x79, 0x70}

// Validate performs 3-layer validation on an uploaded posture media file:
// extension whitelist, magic byte verification, and MIME whitelist.
// application/octet-stream is always rejected.
func Validate(filename string, data []byte, detectedMIME string) ValidationResult {
	result := ValidationResult{DetectedMIME: detectedMIME}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		result.Error = "file has no extension"
		return result
	}
	result.Extension = ext
	result.IsVideo = videoExtensions[ext]

	if !imageExtensions[ext] && !videoExtensions[ext] {
		result.Error = "file extension not allowed: " + ext
		return result
	}

	if !validateMagicBytes(ext, data) {
		result.Error = "file content does not match extension"
		return result
	}

	if detectedMIME == "application/octet-stream" {
		result.Error = "binary files not allowed; file type could not be determined"
		return result
	}
	if !allowedMIMETypes[detectedMIME] {
		result.Error = "MIME type not allowed: " + detectedMIME
		return result
	}

	result.Valid = true
	return result
}

func validateMagicBytes(ext string, data []byte) bool {
	if len(data) < 12 {
		return false
	}

	if videoExtensions[ext] {
		return bytes.Equal(data[4:8], ftypMarker)
	}

	signatures, ok := magicBytes[ext]
	if !ok {
		return false
	}
	for _, sig := range signatures {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}

// ValidateExtension checks only the extension, for quick pre-validation
// before the body is read.
func ValidateExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return errors.New("file has no extension")
	}
	if !imageExtensions[ext] && !videoExtensions[ext] {
		return errors.New("file extension not allowed: " + ext)
	}
	return nil
}

// IsImageExtension reports whether ext is an accepted still-image type.
func IsImageExtension(ext string) bool {
	return imageExtensions[strings.ToLower(ext)]
}
