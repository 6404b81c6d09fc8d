package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log"
	"mime"
	"strings"
	"time"

	"github.com/dropss/internal/db"
	"github.com/dropss/internal/storage"
	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
	"gorm.io/gorm"
)

// Upload kinds accepted by the upload proxy.
const (
	MediaKindMusic      = "music"
	MediaKindBackground = "background"
)

const maxKeyAttempts = 16

var allowedMediaTypes = map[string][]string{
	MediaKindMusic:      {"audio/mpeg", "audio/mp3", "audio/wav", "audio/ogg"},
	MediaKindBackground: {"image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp"},
}

var (
	// ErrMediaInvalidKind 在上传类型既不是 music 也不是 background 时返回
	ErrMediaInvalidKind = errors.New("invalid upload type")
	// ErrMediaUnsupportedType 在文件 MIME 不在允许列表时返回
	ErrMediaUnsupportedType = errors.New("unsupported file type")
	// ErrMediaTooLarge 在文件超过上传上限时返回
	ErrMediaTooLarge = errors.New("file too large")
	// ErrMediaInvalidImage 在背景图无法解码时返回
	ErrMediaInvalidImage = errors.New("invalid image")
	// ErrMediaForeignURL 在删除的 URL 不属于对象存储时返回
	ErrMediaForeignURL = errors.New("invalid url")
	// ErrMediaForbidden 在删除他人或未登记的对象时返回
	ErrMediaForbidden = errors.New("object not owned by caller")
	// ErrMediaStorage 包装对象存储本身的失败
	ErrMediaStorage = errors.New("storage failure")
)

// MediaService validates uploads, writes them to the store and keeps an
// ownership record per object.
type MediaService struct {
	db       *gorm.DB
	store    storage.Store
	maxBytes int64
	now      func() time.Time
}

// NewMediaService 构造 MediaService，maxBytes<=0 表示不限制大小
func NewMediaService(gdb *gorm.DB, store storage.Store, maxBytes int64) *MediaService {
	return &MediaService{db: gdb, store: store, maxBytes: maxBytes, now: time.Now}
}

// MaxBytes 返回单个文件的上传上限，0 表示不限制
func (s *MediaService) MaxBytes() int64 {
	return s.maxBytes
}

// WithClock 替换时间来源，便于测试生成稳定的对象 key
func (s *MediaService) WithClock(now func() time.Time) *MediaService {
	if now != nil {
		s.now = now
	}
	return s
}

// UploadInput describes one multipart file.
type UploadInput struct {
	OwnerID     string
	Kind        string
	Filename    string
	ContentType string
	Size        int64
	Content     io.ReadSeeker
}

// UploadResult is returned to the client after a successful upload.
type UploadResult struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Type     string `json:"type"`
}

// IsMediaKind reports whether kind is an accepted upload type.
func IsMediaKind(kind string) bool {
	_, ok := allowedMediaTypes[kind]
	return ok
}

// Upload validates and stores the file, then records its owner.
func (s *MediaService) Upload(ctx context.Context, input UploadInput) (*UploadResult, error) {
	allowed, ok := allowedMediaTypes[input.Kind]
	if !ok {
		return nil, ErrMediaInvalidKind
	}
	if input.Content == nil {
		return nil, fmt.Errorf("%w: empty file", ErrMediaUnsupportedType)
	}
	if s.maxBytes > 0 && input.Size > s.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrMediaTooLarge, s.maxBytes)
	}

	contentType, err := resolveContentType(input.ContentType, input.Content, allowed)
	if err != nil {
		return nil, err
	}

	var width, height int
	if input.Kind == MediaKindBackground {
		cfg, _, err := image.DecodeConfig(input.Content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMediaInvalidImage, err)
		}
		width, height = cfg.Width, cfg.Height
		if _, err := input.Content.Seek(0, io.SeekStart); err != nil {
			return nil, fmt.Errorf("rewind upload: %w", err)
		}
	}

	key, url, err := s.put(ctx, input, contentType)
	if err != nil {
		return nil, err
	}

	record := db.StoredObject{
		OwnerID:     input.OwnerID,
		Key:         key,
		URL:         url,
		Kind:        input.Kind,
		ContentType: contentType,
		Size:        input.Size,
		Width:       width,
		Height:      height,
	}
	if err := s.db.Create(&record).Error; err != nil {
		s.discardUnrecorded(ctx, url)
		return nil, fmt.Errorf("record upload: %w", err)
	}

	return &UploadResult{
		URL:      url,
		Filename: input.Filename,
		Size:     input.Size,
		Type:     contentType,
	}, nil
}

// put stores the content under the first free key, moving the timestamp
// forward a millisecond each time the store reports a collision.
func (s *MediaService) put(ctx context.Context, input UploadInput, contentType string) (string, string, error) {
	stamp := s.now()
	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		key := storage.ObjectKey(input.OwnerID, input.Kind, input.Filename, stamp)
		url, err := s.store.Put(ctx, key, contentType, input.Content)
		if err == nil {
			return key, url, nil
		}
		if !errors.Is(err, storage.ErrObjectExists) {
			return "", "", fmt.Errorf("%w: %v", ErrMediaStorage, err)
		}
		if _, err := input.Content.Seek(0, io.SeekStart); err != nil {
			return "", "", fmt.Errorf("rewind upload: %w", err)
		}
		stamp = stamp.Add(time.Millisecond)
	}
	return "", "", fmt.Errorf("%w: no free key after %d attempts", ErrMediaStorage, maxKeyAttempts)
}

// discardUnrecorded removes a blob whose record could not be written, unless
// another record already points at the same URL.
func (s *MediaService) discardUnrecorded(ctx context.Context, url string) {
	var owners int64
	if err := s.db.Model(&db.StoredObject{}).Where("url = ?", url).Count(&owners).Error; err != nil {
		log.Printf("[media] keeping %s, owner lookup failed: %v", url, err)
		return
	}
	if owners > 0 {
		log.Printf("[media] keeping %s, already recorded", url)
		return
	}
	if err := s.store.Delete(ctx, url); err != nil {
		log.Printf("[media] cleanup of %s failed: %v", url, err)
	}
}

// Delete removes an object the caller uploaded. URLs outside the store are
// rejected before the store is touched.
func (s *MediaService) Delete(ctx context.Context, ownerID, url string) error {
	url = strings.TrimSpace(url)
	if !s.store.Owns(url) {
		return ErrMediaForeignURL
	}

	var record db.StoredObject
	if err := s.db.Where("url = ?", url).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMediaForbidden
		}
		return fmt.Errorf("find stored object: %w", err)
	}
	if record.OwnerID != ownerID {
		return ErrMediaForbidden
	}

	if err := s.store.Delete(ctx, url); err != nil {
		switch {
		case errors.Is(err, storage.ErrObjectNotFound):
			log.Printf("[media] %s already gone from store", url)
		case errors.Is(err, storage.ErrForeignURL):
			return ErrMediaForeignURL
		default:
			return fmt.Errorf("%w: %v", ErrMediaStorage, err)
		}
	}

	if err := s.db.Delete(&record).Error; err != nil {
		return fmt.Errorf("delete stored object: %w", err)
	}
	return nil
}

// resolveContentType returns the allowed MIME for the upload. A missing or
// generic declared type is replaced by the sniffed one.
func resolveContentType(declared string, content io.ReadSeeker, allowed []string) (string, error) {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}

	if mediaType == "" || mediaType == "application/octet-stream" {
		detected, err := mimetype.DetectReader(content)
		if _, seekErr := content.Seek(0, io.SeekStart); seekErr != nil {
			return "", fmt.Errorf("rewind upload: %w", seekErr)
		}
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrMediaUnsupportedType, err)
		}
		for m := detected; m != nil; m = m.Parent() {
			for _, candidate := range allowed {
				if m.Is(candidate) {
					return candidate, nil
				}
			}
		}
		return "", fmt.Errorf("%w: %s", ErrMediaUnsupportedType, detected.String())
	}

	for _, candidate := range allowed {
		if mediaType == candidate {
			return mediaType, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrMediaUnsupportedType, mediaType)
}
