package cli

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/clickpass/internal/netx"
	"github.com/dmitrijs2005/clickpass/internal/pattern"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApp_ImageAdoptsServerSize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set(netx.HeaderImageWidth, "1200")
		w.Header().Set(netx.HeaderImageHeight, "900")
		_, _ = w.Write([]byte("png-bytes"))
	}))
	defer ts.Close()

	fc := newFakeClient()
	a, out := testApp(t, fc, script("image", "register", "bob", "100,100", "done", "exit"))
	a.config.ReferenceImageURL = ts.URL

	a.Run(context.Background())

	assert.Equal(t, pattern.Dimensions{Width: 1200, Height: 900}, a.intrinsic)
	assert.Contains(t, out.String(), "Reference image saved to")

	b, err := os.ReadFile(filepath.Join(a.stateDir, "reference.png"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))

	// 400x300 rendered onto 1200x900 intrinsic.
	assert.Equal(t, pattern.Pattern{{X: 300, Y: 300}}, fc.users["bob"])
}

func TestApp_ImageDownloadFailureKeepsSize(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer ts.Close()

	a, out := testApp(t, newFakeClient(), script("image", "exit"))
	a.config.ReferenceImageURL = ts.URL
	before := a.intrinsic

	a.Run(context.Background())

	assert.Equal(t, before, a.intrinsic)
	assert.Contains(t, out.String(), "Could not download the reference image")
	assert.NotContains(t, out.String(), "Error:")
}
