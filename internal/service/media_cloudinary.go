package service

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"videotube/internal/model"
)

type CloudinaryConfig struct {
	BaseURL   string
	CloudName string
	APIKey    string
	APISecret string
	Timeout   time.Duration
}

// CloudinaryUploader talks to Cloudinary's signed upload endpoint.
type CloudinaryUploader struct {
	client *resty.Client
	cfg    CloudinaryConfig
	now    func() time.Time
}

type cloudinaryUploadResponse struct {
	PublicID  string `json:"public_id"`
	URL       string `json:"url"`
	SecureURL string `json:"secure_url"`
}

type cloudinaryErrorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewCloudinaryUploader(cfg CloudinaryConfig) *CloudinaryUploader {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.cloudinary.com/v1_1"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	cli := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout)

	return &CloudinaryUploader{client: cli, cfg: cfg, now: time.Now}
}

func (u *CloudinaryUploader) Upload(ctx context.Context, localPath string, kind model.MediaKind) (*model.UploadResult, error) {
	jpegBytes, err := prepareImage(localPath, kind)
	if err != nil {
		return nil, err
	}

	params := map[string]string{
		"folder":    string(kind),
		"timestamp": strconv.FormatInt(u.now().Unix(), 10),
	}
	form := map[string]string{
		"api_key":   u.cfg.APIKey,
		"signature": cloudinarySignature(params, u.cfg.APISecret),
	}
	for k, v := range params {
		form[k] = v
	}

	resp, err := u.client.R().
		SetContext(ctx).
		SetFileReader("file", "upload"+model.ImageExt, bytes.NewReader(jpegBytes)).
		SetFormData(form).
		SetResult(&cloudinaryUploadResponse{}).
		SetError(&cloudinaryErrorResponse{}).
		Post("/" + u.cfg.CloudName + "/image/upload")
	if err != nil {
		return nil, fmt.Errorf("failed to upload to cloudinary: %w", err)
	}
	if resp.IsError() {
		msg := resp.Status()
		if e, ok := resp.Error().(*cloudinaryErrorResponse); ok && e.Error.Message != "" {
			msg = e.Error.Message
		}
		return nil, fmt.Errorf("cloudinary upload rejected: %s", msg)
	}

	result, ok := resp.Result().(*cloudinaryUploadResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected cloudinary response")
	}
	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" {
		return nil, fmt.Errorf("cloudinary response has no url")
	}

	return &model.UploadResult{URL: url, Key: result.PublicID}, nil
}

// cloudinarySignature signs the alphabetically sorted k=v pairs joined by
// '&' with the API secret appended.
func cloudinarySignature(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}

	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}
