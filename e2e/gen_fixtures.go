//go:build ignore

// gen_fixtures creates test images covering each source format, the pixel
// bands the quality tuning distinguishes, and the auto profile's JPEG size
// threshold.
// Usage: go run gen_fixtures.go <output_dir>
package main

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gen_fixtures <output_dir>")
		os.Exit(1)
	}
	dir := os.Args[1]
	if err := os.MkdirAll(filepath.Join(dir, "cards"), 0o755); err != nil {
		fatal(err)
	}

	// Medium band (1.08 MP) JPEG.
	writeJPEG(filepath.Join(dir, "banner.jpg"), gradient(1200, 900), 85)

	// Noisy JPEG well above 500 KiB, so auto picks WebP for it.
	writeJPEG(filepath.Join(dir, "texture.jpg"), noise(640, 640), 95)

	// Small-band PNG cards.
	for i := 1; i <= 3; i++ {
		name := fmt.Sprintf("card-%d.png", i)
		writePNG(filepath.Join(dir, "cards", name), solidWithBorder(200, 150, uint8(i*60)))
	}

	// Alpha PNG: JPEG-only profiles also get a PNG output for it.
	writePNG(filepath.Join(dir, "logo.png"), alphaGradient(100, 100))

	// Lossless WebP source.
	writeWebP(filepath.Join(dir, "icon.webp"), alphaGradient(64, 64))

	fmt.Fprintf(os.Stderr, "[gen_fixtures] created 7 fixtures in %s\n", dir)
}

func gradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 128,
				A: 255,
			})
		}
	}
	return img
}

func noise(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rand.New(rand.NewSource(42)).Read(img.Pix)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}
	return img
}

func solidWithBorder(w, h int, base uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	c := color.NRGBA{R: base, G: base + 40, B: base + 80, A: 255}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if x < 4 || x >= w-4 || y < 4 || y >= h-4 {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
				continue
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func alphaGradient(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 30, G: 144, B: 255, A: uint8(x * 255 / w)})
		}
	}
	return img
}

func writeJPEG(path string, img image.Image, quality int) {
	write(path, func(f *os.File) error {
		return jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	})
}

func writePNG(path string, img image.Image) {
	write(path, func(f *os.File) error { return png.Encode(f, img) })
}

func writeWebP(path string, img image.Image) {
	write(path, func(f *os.File) error {
		return webp.Encode(f, img, &webp.Options{Lossless: true})
	})
}

func write(path string, encode func(*os.File) error) {
	f, err := os.Create(path)
	if err != nil {
		fatal(err)
	}
	defer f.Close()
	if err := encode(f); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "[gen_fixtures] %v\n", err)
	os.Exit(1)
}
