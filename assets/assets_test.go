package assets_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/bmp"

	"github.com/NOT-REAL-GAMES/plume/assets"
)

func spirv(words int) []byte {
	b := make([]byte, 4*words)
	binary.LittleEndian.PutUint32(b, assets.SPIRVMagic)
	return b
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestShader(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.spv", spirv(5))
	writeFile(t, dir, "short.spv", spirv(5)[:10])
	writeFile(t, dir, "magic.spv", make([]byte, 8))
	writeFile(t, dir, "empty.spv", nil)

	tests := []struct {
		name    string
		path    string
		wantErr error
		wantLen int
	}{
		{"valid", "ok.spv", nil, 20},
		{"missing", "missing.spv", assets.ErrFileNotFound, 0},
		{"truncated", "short.spv", assets.ErrDecode, 0},
		{"bad magic", "magic.spv", assets.ErrDecode, 0},
		{"empty", "empty.spv", assets.ErrDecode, 0},
	}
	l := assets.Loader{Root: dir}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := l.Shader(tt.path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), tt.path)
				return
			}
			require.NoError(t, err)
			assert.Len(t, code, tt.wantLen)
		})
	}
}

func TestShaderAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "ok.spv", spirv(2))

	code, err := assets.Loader{Root: "/nonexistent"}.Shader(filepath.Join(dir, "ok.spv"))
	require.NoError(t, err)
	assert.Equal(t, spirv(2), code)
}

func TestPath(t *testing.T) {
	l := assets.Loader{Root: "data"}
	assert.Equal(t, filepath.Join("data", "shaders", "a.spv"), l.Path("shaders/a.spv"))
	assert.Equal(t, "/abs/a.spv", l.Path("/abs/a.spv"))
	assert.Equal(t, "a.spv", assets.Loader{}.Path("a.spv"))
}

func TestTexture(t *testing.T) {
	dir := t.TempDir()

	nrgba := image.NewNRGBA(image.Rect(0, 0, 3, 2))
	nrgba.Set(0, 0, color.NRGBA{R: 255, A: 255})
	nrgba.Set(2, 1, color.NRGBA{B: 255, A: 255})
	writeFile(t, dir, "tex.png", encodePNG(t, nrgba))

	gray := image.NewGray(image.Rect(0, 0, 4, 4))
	gray.SetGray(1, 1, color.Gray{Y: 128})
	var bmpBuf bytes.Buffer
	require.NoError(t, bmp.Encode(&bmpBuf, gray))
	writeFile(t, dir, "gray.bmp", bmpBuf.Bytes())

	writeFile(t, dir, "junk.png", []byte("not an image"))

	l := assets.Loader{Root: dir}

	tex, err := l.Texture("tex.png")
	require.NoError(t, err)
	assert.Equal(t, uint32(3), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)
	require.Len(t, tex.Pixels, 3*2*4)
	assert.Equal(t, []byte{255, 0, 0, 255}, tex.Pixels[0:4])
	assert.Equal(t, []byte{0, 0, 255, 255}, tex.Pixels[(1*3+2)*4:(1*3+2)*4+4])

	tex, err = l.Texture("gray.bmp")
	require.NoError(t, err)
	require.Len(t, tex.Pixels, 4*4*4)
	assert.Equal(t, []byte{128, 128, 128, 255}, tex.Pixels[(1*4+1)*4:(1*4+1)*4+4])

	_, err = l.Texture("junk.png")
	assert.ErrorIs(t, err, assets.ErrDecode)

	_, err = l.Texture("missing.png")
	assert.ErrorIs(t, err, assets.ErrFileNotFound)
}

func TestLoadAll(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.spv", spirv(3))
	writeFile(t, dir, "b.spv", spirv(4))
	writeFile(t, dir, "noise.png", encodePNG(t, image.NewRGBA(image.Rect(0, 0, 8, 8))))

	l := assets.Loader{Root: dir}
	b, err := l.LoadAll(context.Background(), assets.Manifest{
		Shaders:  map[string]string{"a": "a.spv", "b": "b.spv"},
		Textures: map[string]string{"noise": "noise.png"},
	})
	require.NoError(t, err)
	assert.Len(t, b.Shaders, 2)
	assert.Len(t, b.Shaders["b"], 16)
	require.Contains(t, b.Textures, "noise")
	assert.Len(t, b.Textures["noise"].Pixels, 8*8*4)

	_, err = l.LoadAll(context.Background(), assets.Manifest{
		Shaders:  map[string]string{"a": "a.spv", "gone": "gone.spv"},
		Textures: map[string]string{"noise": "noise.png"},
	})
	assert.ErrorIs(t, err, assets.ErrFileNotFound)
}

func TestLoadAllCanceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.spv", spirv(3))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := assets.Loader{Root: dir}.LoadAll(ctx, assets.Manifest{
		Shaders: map[string]string{"a": "a.spv"},
	})
	assert.ErrorIs(t, err, context.Canceled)
}
