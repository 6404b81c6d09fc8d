// Package storage puts uploaded media somewhere publicly addressable.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"time"
)

var (
	// ErrInvalidKey is returned for empty keys or keys escaping the store root.
	ErrInvalidKey = errors.New("invalid storage key")
	// ErrForeignURL is returned when a URL does not belong to the store.
	ErrForeignURL = errors.New("url does not belong to this store")
	// ErrObjectNotFound is returned when deleting a blob that does not exist.
	ErrObjectNotFound = errors.New("stored object not found")
	// ErrObjectExists is returned by Put when the key is already taken.
	ErrObjectExists = errors.New("stored object already exists")
)

var extensionPattern = regexp.MustCompile(`^[a-z0-9]{1,8}$`)

// Store is the blob store collaborator used by the upload proxy.
type Store interface {
	// Put stores the content under key and returns its public URL. It never
	// replaces an existing blob and returns ErrObjectExists instead.
	Put(ctx context.Context, key, contentType string, content io.Reader) (string, error)
	// Delete removes the blob addressed by url.
	Delete(ctx context.Context, url string) error
	// Owns reports whether url points into this store.
	Owns(url string) bool
}

// ObjectKey builds {userID}/{kind}-{unixMillis}.{ext} for an upload.
// The extension is taken from the original filename, lowercased, and falls
// back to bin unless it is 1-8 ASCII letters or digits.
func ObjectKey(userID, kind, filename string, now time.Time) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(strings.TrimSpace(filename))), ".")
	if !extensionPattern.MatchString(ext) {
		ext = "bin"
	}
	return fmt.Sprintf("%s/%s-%d.%s", userID, kind, now.UnixMilli(), ext)
}

func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" || cleaned == "." || cleaned != key {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}
