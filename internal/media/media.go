// Package media stores uploaded images and hands back delivery URLs that ask
// the image CDN for a resized, re-encoded rendition.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrUploadsDisabled is returned when no object store is configured.
var ErrUploadsDisabled = errors.New("image uploads are not configured")

// Folders used for uploaded images.
const (
	FolderCars  = "cars"
	FolderUsers = "users"
)

// Transformation describes the rendition requested from the image CDN.
type Transformation struct {
	Width   int
	Quality string
	Format  string
}

// CarImage and ProfileImage are the renditions served for listings and avatars.
var (
	CarImage     = Transformation{Width: 1280, Quality: "auto", Format: "webp"}
	ProfileImage = Transformation{Width: 400, Quality: "auto", Format: "webp"}
)

// Query renders the transformation in the CDN's tr= syntax, e.g. w-1280,q-auto,f-webp.
func (t Transformation) Query() string {
	var parts []string
	if t.Width > 0 {
		parts = append(parts, fmt.Sprintf("w-%d", t.Width))
	}
	if t.Quality != "" {
		parts = append(parts, "q-"+t.Quality)
	}
	if t.Format != "" {
		parts = append(parts, "f-"+t.Format)
	}
	return strings.Join(parts, ",")
}

// Image is a file received from a client.
type Image struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// Uploader stores an image under folder and returns its optimised delivery URL.
type Uploader interface {
	Upload(ctx context.Context, folder string, img Image, tr Transformation) (string, error)
}

// ObjectKey builds a collision-free key that keeps the original extension.
func ObjectKey(folder, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join(folder, uuid.NewString()+ext)
}

// DeliveryURL joins the public base URL with the key and appends the transformation.
func DeliveryURL(baseURL, key string, tr Transformation) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/") + "/" + key)
	if err != nil {
		return "", fmt.Errorf("invalid media base URL: %w", err)
	}
	if q := tr.Query(); q != "" {
		values := u.Query()
		values.Set("tr", q)
		u.RawQuery = values.Encode()
	}
	return u.String(), nil
}

// DisabledUploader rejects every upload.
type DisabledUploader struct{}

func (DisabledUploader) Upload(context.Context, string, Image, Transformation) (string, error) {
	return "", ErrUploadsDisabled
}
