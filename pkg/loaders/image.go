package loaders

import (
	"image"
	"image/color"
	_ "image/jpeg" // JPEG decoder
	_ "image/png"  // PNG decoder
	"io"
	"os"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/imgio"
	"github.com/h2non/filetype"
	"github.com/pkg/errors"
	_ "golang.org/x/image/bmp"  // BMP decoder
	_ "golang.org/x/image/tiff" // TIFF decoder
	_ "golang.org/x/image/webp" // WebP decoder

	"github.com/df07/go-raytracy/pkg/material"
)

// sniffLength is the number of leading bytes filetype needs to match any type
const sniffLength = 262

// LoadTexture loads an image file as a texture, generating the mip chain when
// mipmap is set. The file type is detected from its contents, not its name.
func LoadTexture(dir, path string, mipmap bool) (*material.Texture, error) {
	resolved, err := ResolvePath(dir, path)
	if err != nil {
		return nil, err
	}

	if err := sniffImage(resolved); err != nil {
		return nil, err
	}

	img, err := imgio.Open(resolved)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to decode image %s", path)
	}

	texture, err := TextureFromImage(img)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to convert image %s", path)
	}
	if mipmap {
		texture.GenerateMipmap()
	}
	return texture, nil
}

// sniffImage rejects files whose header does not match a known image type
func sniffImage(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "failed to open image file")
	}
	defer file.Close()

	head := make([]byte, sniffLength)
	n, err := io.ReadFull(file, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return errors.Wrap(err, "failed to read image header")
	}
	head = head[:n]

	if !filetype.IsImage(head) {
		kind, _ := filetype.Match(head)
		if kind == filetype.Unknown {
			return errors.Errorf("%s is not a recognized image file", path)
		}
		return errors.Errorf("%s is %s, not an image", path, kind.MIME.Value)
	}
	return nil
}

// TextureFromImage copies an image into a texture. Opaque images become RGB
// textures; anything with transparency keeps straight (non-premultiplied) alpha.
func TextureFromImage(img image.Image) (*material.Texture, error) {
	rgba := clone.AsRGBA(img)
	bounds := rgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	bytesPerPixel := 4
	if rgba.Opaque() {
		bytesPerPixel = 3
	}

	texture, err := material.NewTexture(width, height, bytesPerPixel, nil)
	if err != nil {
		return nil, err
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := color.NRGBAModel.Convert(rgba.RGBAAt(bounds.Min.X+x, bounds.Min.Y+y)).(color.NRGBA)
			texture.SetPixel(x, y, c.R, c.G, c.B, c.A)
		}
	}
	return texture, nil
}

// ImageFromBGRA wraps a BGRA framebuffer as an RGBA image, swapping the red
// and blue channels into a new buffer
func ImageFromBGRA(buffer []byte, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for i := 0; i+3 < width*height*4; i += 4 {
		img.Pix[i] = buffer[i+2]
		img.Pix[i+1] = buffer[i+1]
		img.Pix[i+2] = buffer[i]
		img.Pix[i+3] = buffer[i+3]
	}
	return img
}

// SavePNG writes an image as PNG
func SavePNG(path string, img image.Image) error {
	return errors.Wrapf(imgio.Save(path, img, imgio.PNGEncoder()), "failed to save %s", path)
}
