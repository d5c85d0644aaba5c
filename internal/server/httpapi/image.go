package httpapi

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// ReferenceImage is the picture every visual password is drawn on. Stored
// patterns are in its intrinsic pixel space, so replacing the file with one
// of another size invalidates every credential.
type ReferenceImage struct {
	Name        string
	ContentType string
	Width       int
	Height      int
	ModTime     time.Time
	data        []byte
}

// LoadReferenceImage reads a PNG or JPEG file and its intrinsic size.
func LoadReferenceImage(path string) (*ReferenceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read reference image: %w", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode reference image: %w", err)
	}

	img := &ReferenceImage{
		Name:        filepath.Base(path),
		ContentType: "image/" + format,
		Width:       cfg.Width,
		Height:      cfg.Height,
		data:        data,
	}
	if st, err := os.Stat(path); err == nil {
		img.ModTime = st.ModTime()
	}
	return img, nil
}

// Matches reports whether the image has the given intrinsic size.
func (i *ReferenceImage) Matches(width, height float64) bool {
	return float64(i.Width) == width && float64(i.Height) == height
}

func (i *ReferenceImage) serve(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", i.ContentType)
	w.Header().Set("X-Image-Width", fmt.Sprint(i.Width))
	w.Header().Set("X-Image-Height", fmt.Sprint(i.Height))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	http.ServeContent(w, r, i.Name, i.ModTime, bytes.NewReader(i.data))
}
