package netx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
)

const (
	HeaderImageWidth  = "X-Image-Width"
	HeaderImageHeight = "X-Image-Height"

	// MaxImageBytes caps the body read from the image endpoint.
	MaxImageBytes = 16 << 20
)

var ErrNoDimensions = errors.New("response carries no image dimensions")

// Image is a downloaded reference image with the intrinsic size the server
// advertises for it.
type Image struct {
	Data        []byte
	ContentType string
	Width       float64
	Height      float64
}

// Extension guesses a file extension from the content type.
func (i *Image) Extension() string {
	switch i.ContentType {
	case "image/png":
		return ".png"
	case "image/jpeg", "image/jpg":
		return ".jpg"
	default:
		return ".img"
	}
}

// FetchImage downloads the reference image at url. A nil client means
// http.DefaultClient.
func FetchImage(ctx context.Context, client *http.Client, url string) (*Image, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("download failed: %s; body: %s", resp.Status, string(b))
	}

	w, errW := parseDimension(resp.Header.Get(HeaderImageWidth))
	h, errH := parseDimension(resp.Header.Get(HeaderImageHeight))
	if errW != nil || errH != nil {
		return nil, ErrNoDimensions
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > MaxImageBytes {
		return nil, fmt.Errorf("image exceeds %d bytes", MaxImageBytes)
	}

	return &Image{
		Data:        data,
		ContentType: resp.Header.Get("Content-Type"),
		Width:       w,
		Height:      h,
	}, nil
}

func parseDimension(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("non-positive dimension %v", v)
	}
	return v, nil
}
