package reveal

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/creator-storefront/internal/model"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// box builds one ISO-BMFF box with the given type and payload.
func box(typ string, payload []byte) []byte {
	out := make([]byte, 8+len(payload))
	binary.BigEndian.PutUint32(out[0:4], uint32(8+len(payload)))
	copy(out[4:8], typ)
	copy(out[8:], payload)
	return out
}

func tkhdPayload(w, h int) []byte {
	// version 0: 4 bytes version/flags + 20 bytes times/ids + 52 bytes
	// layer/volume/matrix, then 16.16 fixed width and height
	payload := make([]byte, 4+20+52+8)
	binary.BigEndian.PutUint32(payload[76:80], uint32(w)<<16)
	binary.BigEndian.PutUint32(payload[80:84], uint32(h)<<16)
	return payload
}

func TestImageDimensions(t *testing.T) {
	t.Parallel()
	dims, err := imageDimensions(pngBytes(t, 320, 200))
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 320, Height: 200}, dims)

	_, err = imageDimensions([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestMP4Dimensions(t *testing.T) {
	t.Parallel()
	file := append(
		box("ftyp", []byte("isom0000")),
		box("moov", box("trak", box("tkhd", tkhdPayload(1920, 1080))))...)

	dims, err := mp4Dimensions(file)
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 1920, Height: 1080}, dims)
}

func TestMP4Dimensions_NoTrackHeader(t *testing.T) {
	t.Parallel()
	_, err := mp4Dimensions(box("ftyp", []byte("isom0000")))
	assert.Error(t, err)

	_, err = mp4Dimensions([]byte("junk"))
	assert.Error(t, err)
}

func TestHTTPProber_MeasureImage(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes(t, 64, 48))
	}))
	defer srv.Close()

	p := NewHTTPProber()
	dims, err := p.Measure(context.Background(), model.MediaItem{URL: srv.URL, Kind: model.MediaImage})
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 64, Height: 48}, dims)
}

func TestHTTPProber_MeasureVideo(t *testing.T) {
	t.Parallel()
	file := append(
		box("ftyp", []byte("isom0000")),
		box("moov", box("trak", box("tkhd", tkhdPayload(1280, 720))))...)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(file)
	}))
	defer srv.Close()

	p := NewHTTPProber()
	dims, err := p.Measure(context.Background(), model.MediaItem{URL: srv.URL, Kind: model.MediaVideo})
	require.NoError(t, err)
	assert.Equal(t, Dimensions{Width: 1280, Height: 720}, dims)
}

func TestHTTPProber_ServerError(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewHTTPProber()
	_, err := p.Measure(context.Background(), model.MediaItem{URL: srv.URL, Kind: model.MediaImage})
	assert.Error(t, err)
}
