package reveal

import (
    "bytes"
    "context"
    "encoding/binary"
    "errors"
    "fmt"
    "image"
    "io"
    "net/http"
    "time"

    _ "image/gif"  // register GIF for DecodeConfig
    _ "image/jpeg" // register JPEG for DecodeConfig
    _ "image/png"  // register PNG for DecodeConfig

    _ "golang.org/x/image/webp" // register WebP for DecodeConfig

    "github.com/iliyamo/creator-storefront/internal/model"
)

// defaultProbeBytes bounds how much of a media file is fetched to measure
// it. Image headers and the MP4 moov box of web-optimized files sit well
// inside this window.
const defaultProbeBytes = 512 * 1024

// HTTPProber measures media dimensions by fetching a bounded prefix of the
// asset. Images go through image.DecodeConfig; videos through a minimal MP4
// track-header scan. Either path failing is normal (exotic codecs, slow
// hosts) and the caller falls back to a preset aspect ratio.
type HTTPProber struct {
    Client   *http.Client
    MaxBytes int64
}

// NewHTTPProber builds a prober with sane bounds.
func NewHTTPProber() *HTTPProber {
    return &HTTPProber{
        Client:   &http.Client{Timeout: 8 * time.Second},
        MaxBytes: defaultProbeBytes,
    }
}

// Measure fetches just enough of the asset to read its natural dimensions.
func (p *HTTPProber) Measure(ctx context.Context, item model.MediaItem) (Dimensions, error) {
    data, err := p.fetchPrefix(ctx, item.URL)
    if err != nil {
        return Dimensions{}, err
    }
    switch item.Kind {
    case model.MediaVideo:
        return mp4Dimensions(data)
    default:
        return imageDimensions(data)
    }
}

func (p *HTTPProber) fetchPrefix(ctx context.Context, url string) ([]byte, error) {
    req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
    if err != nil {
        return nil, err
    }
    req.Header.Set("Range", fmt.Sprintf("bytes=0-%d", p.MaxBytes-1))
    resp, err := p.Client.Do(req)
    if err != nil {
        return nil, err
    }
    defer resp.Body.Close()
    if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
        return nil, fmt.Errorf("probe %s: status %d", url, resp.StatusCode)
    }
    return io.ReadAll(io.LimitReader(resp.Body, p.MaxBytes))
}

func imageDimensions(data []byte) (Dimensions, error) {
    cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
    if err != nil {
        return Dimensions{}, err
    }
    if cfg.Width <= 0 || cfg.Height <= 0 {
        return Dimensions{}, errors.New("image reports zero dimensions")
    }
    return Dimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// mp4Dimensions walks the ISO-BMFF box tree looking for the first tkhd box
// and reads its 16.16 fixed-point width/height. Only moov/trak containers
// are descended into; everything else is skipped by size.
func mp4Dimensions(data []byte) (Dimensions, error) {
    d, ok := findTkhd(data)
    if !ok {
        return Dimensions{}, errors.New("no usable tkhd box in probed range")
    }
    return d, nil
}

func findTkhd(data []byte) (Dimensions, bool) {
    offset := 0
    for offset+8 <= len(data) {
        size := int(binary.BigEndian.Uint32(data[offset : offset+4]))
        typ := string(data[offset+4 : offset+8])
        if size < 8 {
            return Dimensions{}, false
        }
        end := offset + size
        if end > len(data) {
            end = len(data)
        }
        switch typ {
        case "moov", "trak":
            if d, ok := findTkhd(data[offset+8 : end]); ok {
                return d, true
            }
        case "tkhd":
            if d, ok := parseTkhd(data[offset+8 : end]); ok {
                return d, true
            }
        }
        offset += size
    }
    return Dimensions{}, false
}

func parseTkhd(body []byte) (Dimensions, bool) {
    if len(body) < 4 {
        return Dimensions{}, false
    }
    // version + flags, then version-dependent times/ids, then 52 bytes of
    // layer/volume/matrix, then width and height as 16.16 fixed point.
    base := 4 + 20 + 52
    if body[0] == 1 {
        base = 4 + 32 + 52
    }
    if len(body) < base+8 {
        return Dimensions{}, false
    }
    w := int(binary.BigEndian.Uint32(body[base:]) >> 16)
    h := int(binary.BigEndian.Uint32(body[base+4:]) >> 16)
    if w <= 0 || h <= 0 {
        return Dimensions{}, false
    }
    return Dimensions{Width: w, Height: h}, true
}

