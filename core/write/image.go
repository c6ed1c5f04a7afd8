package write

import (
	"fmt"
	"image"
	"image/color"
)

// ImageInfo contains information about an embedded image
type ImageInfo struct {
	ObjectNum  int    // Object number of the image XObject
	Width      int    // Image width in pixels
	Height     int    // Image height in pixels
	ColorSpace string // PDF color space name (e.g., "/DeviceRGB")
	Name       string // Resource name (e.g., "/Im1")
}

// AddImage embeds a decoded image. Pixels are converted to raw RGB or Gray
// data compressed with FlateDecode; images with an alpha channel get a soft
// mask.
func (w *PDFWriter) AddImage(img image.Image, name string) (*ImageInfo, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("image %s is empty", name)
	}

	var rawData []byte
	var colorSpace string
	var hasAlpha bool

	switch img.(type) {
	case *image.NRGBA, *image.RGBA, *image.NRGBA64, *image.RGBA64:
		hasAlpha = true
	}

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		colorSpace = "/DeviceGray"
		rawData = make([]byte, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				gray := color.GrayModel.Convert(img.At(x+bounds.Min.X, y+bounds.Min.Y)).(color.Gray)
				rawData[y*width+x] = gray.Y
			}
		}
	default:
		colorSpace = "/DeviceRGB"
		rawData = make([]byte, width*height*3)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				idx := (y*width + x) * 3
				rawData[idx] = uint8(r >> 8)
				rawData[idx+1] = uint8(g >> 8)
				rawData[idx+2] = uint8(b >> 8)
			}
		}
	}

	dict := Dictionary{
		"Type":             "/XObject",
		"Subtype":          "/Image",
		"Width":            width,
		"Height":           height,
		"ColorSpace":       colorSpace,
		"BitsPerComponent": 8,
	}

	if hasAlpha && !opaque(img) {
		alphaMask := make([]byte, width*height)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				_, _, _, a := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
				alphaMask[y*width+x] = uint8(a >> 8)
			}
		}

		maskDict := Dictionary{
			"Type":             "/XObject",
			"Subtype":          "/Image",
			"Width":            width,
			"Height":           height,
			"ColorSpace":       "/DeviceGray",
			"BitsPerComponent": 8,
		}
		maskObjNum, err := w.AddStreamObject(maskDict, alphaMask, true)
		if err != nil {
			return nil, fmt.Errorf("failed to add soft mask for %s: %w", name, err)
		}
		dict["SMask"] = ref(maskObjNum)
	}

	objNum, err := w.AddStreamObject(dict, rawData, true)
	if err != nil {
		return nil, fmt.Errorf("failed to add image %s: %w", name, err)
	}

	return &ImageInfo{
		ObjectNum:  objNum,
		Width:      width,
		Height:     height,
		ColorSpace: colorSpace,
		Name:       name,
	}, nil
}

func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	return false
}
