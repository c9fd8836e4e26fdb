// Package assets loads SPIR-V shader blobs and textures from disk.
package assets

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"
)

var (
	ErrFileNotFound = errors.New("file not found")
	ErrDecode       = errors.New("decode failed")
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic = 0x07230203

// Texture is tightly packed RGBA8.
type Texture struct {
	Width, Height uint32
	Pixels        []byte
}

// Loader resolves relative paths against Root.
type Loader struct {
	Root string
}

// Path returns path joined to Root unless it is already absolute.
func (l Loader) Path(path string) string {
	if filepath.IsAbs(path) || l.Root == "" {
		return path
	}
	return filepath.Join(l.Root, path)
}

func (l Loader) read(path string) ([]byte, error) {
	data, err := os.ReadFile(l.Path(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrFileNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// Shader returns the exact bytes of a SPIR-V module.
func (l Loader) Shader(path string) ([]byte, error) {
	code, err := l.read(path)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, fmt.Errorf("%s: %w: length %d is not a whole number of words", path, ErrDecode, len(code))
	}
	if magic := binary.LittleEndian.Uint32(code); magic != SPIRVMagic {
		return nil, fmt.Errorf("%s: %w: bad magic %#08x", path, ErrDecode, magic)
	}
	return code, nil
}

// Texture decodes a png, jpeg, bmp, tiff or webp file into RGBA8.
func (l Loader) Texture(path string) (*Texture, error) {
	data, err := l.read(path)
	if err != nil {
		return nil, err
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %v", path, ErrDecode, err)
	}

	b := src.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%s: %w: empty image", path, ErrDecode)
	}
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)

	return &Texture{
		Width:  uint32(b.Dx()),
		Height: uint32(b.Dy()),
		Pixels: dst.Pix,
	}, nil
}

// Manifest names every file to load. Keys are caller-chosen names.
type Manifest struct {
	Shaders  map[string]string
	Textures map[string]string
}

type Bundle struct {
	Shaders  map[string][]byte
	Textures map[string]*Texture
}

// LoadAll reads every file in m concurrently. The first failure cancels
// the rest and is returned.
func (l Loader) LoadAll(ctx context.Context, m Manifest) (*Bundle, error) {
	b := &Bundle{
		Shaders:  make(map[string][]byte, len(m.Shaders)),
		Textures: make(map[string]*Texture, len(m.Textures)),
	}
	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)

	for name, path := range m.Shaders {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			code, err := l.Shader(path)
			if err != nil {
				return err
			}
			mu.Lock()
			b.Shaders[name] = code
			mu.Unlock()
			return nil
		})
	}
	for name, path := range m.Textures {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tex, err := l.Texture(path)
			if err != nil {
				return err
			}
			mu.Lock()
			b.Textures[name] = tex
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return b, nil
}
