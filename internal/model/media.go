package model

import "errors"

// MediaKind selects the normalisation applied before upload.
type MediaKind string

const (
	MediaAvatar     MediaKind = "avatars"
	MediaCoverImage MediaKind = "covers"
)

const (
	MaxImageSizeBytes = 5 * 1024 * 1024 // 5MB limit per uploaded image
	AvatarWidth       = 200
	AvatarHeight      = 200
	CoverWidth        = 1280
	CoverHeight       = 320
	ImageExt          = ".jpg"
	ImageQuality      = 85
	ImageCacheControl = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation. WebP is sniffed
// correctly but imaging cannot decode it, so it is rejected up front.
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidImageType = "INVALID_IMAGE_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge     = errors.New("file too large")
	ErrInvalidImageType = errors.New("invalid image type")
)

var (
	ErrImageTooLarge    = &AppError{Kind: KindBadRequest, Code: CodeFileTooLarge, Message: "Image exceeds 5MB limit"}
	ErrImageTypeInvalid = &AppError{Kind: KindBadRequest, Code: CodeInvalidImageType, Message: "Unsupported image type. Allowed: jpeg, png, gif"}
)

// UploadResult represents the uploaded object location.
// URL is the public-facing URL, Key identifies the object at the provider.
type UploadResult struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IsAllowedImageType reports if the provided content type is supported
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// Dimensions returns the target size for the kind.
func (k MediaKind) Dimensions() (width, height int) {
	if k == MediaCoverImage {
		return CoverWidth, CoverHeight
	}
	return AvatarWidth, AvatarHeight
}
