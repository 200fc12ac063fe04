package services

import (
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"sync"
	"testing"

	"imovel-backend/internal/models"
	"imovel-backend/internal/store"

	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	users map[string]*models.User
	err   error
	calls int
}

func (f *fakeUserStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

type fakePropertyStore struct {
	properties  []models.Property
	photos      []models.Photo
	propertyErr error
	photosErr   error
	calls       int
}

func (f *fakePropertyStore) GetPropertyByCode(ctx context.Context, code string) (*models.Property, error) {
	f.calls++
	if f.propertyErr != nil {
		return nil, f.propertyErr
	}
	for i := range f.properties {
		if f.properties[i].Code == code {
			return &f.properties[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakePropertyStore) ListPhotosByProperty(ctx context.Context, propertyID int64) ([]models.Photo, error) {
	f.calls++
	if f.photosErr != nil {
		return nil, f.photosErr
	}
	var out []models.Photo
	for _, p := range f.photos {
		if p.PropertyID == propertyID {
			out = append(out, p)
		}
	}
	return out, nil
}

// fakeFetcher serves canned bodies by URL; unknown URLs fail like a 404.
type fakeFetcher struct {
	mu     sync.Mutex
	bodies map[string][]byte
	calls  []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	b, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("unexpected status 404")
	}
	return b, nil
}

func jpegImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x += 10 {
		img.Set(x, x%h, color.RGBA{R: 200, G: 30, B: 30, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 80}))
	return buf.Bytes()
}

func pngImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func photoURL(host string, n int, ext string) string {
	return fmt.Sprintf("https://%s/fotos/%d%s", host, n, ext)
}

// adam7Passes are the (x0, y0, dx, dy) of the seven interlace passes.
var adam7Passes = [7][4]int{
	{0, 0, 8, 8}, {4, 0, 8, 8}, {0, 4, 4, 8}, {2, 0, 4, 4},
	{0, 2, 2, 4}, {1, 0, 2, 2}, {0, 1, 1, 2},
}

// interlacedPNG builds an 8-bit RGB Adam7 PNG; image/png only writes
// non-interlaced files.
func interlacedPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var raw bytes.Buffer
	for _, p := range adam7Passes {
		for y := p[1]; y < h; y += p[3] {
			if p[0] >= w {
				break
			}
			raw.WriteByte(0) // filter: none
			for x := p[0]; x < w; x += p[2] {
				raw.Write([]byte{uint8(x * 5), uint8(y * 7), 90})
			}
		}
	}

	var idat bytes.Buffer
	zw := zlib.NewWriter(&idat)
	_, err := zw.Write(raw.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:], uint32(w))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(h))
	ihdr[8] = 8  // bit depth
	ihdr[9] = 2  // truecolor
	ihdr[12] = 1 // Adam7

	var out bytes.Buffer
	out.WriteString("\x89PNG\r\n\x1a\n")
	for _, c := range []struct {
		typ  string
		data []byte
	}{{"IHDR", ihdr}, {"IDAT", idat.Bytes()}, {"IEND", nil}} {
		var n [4]byte
		binary.BigEndian.PutUint32(n[:], uint32(len(c.data)))
		out.Write(n[:])
		body := append([]byte(c.typ), c.data...)
		out.Write(body)
		binary.BigEndian.PutUint32(n[:], crc32.ChecksumIEEE(body))
		out.Write(n[:])
	}
	return out.Bytes()
}

func png16Image(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA64(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA64{R: uint16(x) << 8, G: uint16(y) << 8, B: 0x7fff, A: 0xffff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
