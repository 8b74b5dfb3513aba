package convert

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/chai2010/webp"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AnyUserName/squeeze/internal/format"
	"github.com/AnyUserName/squeeze/internal/tuning"
)

func testImage(w, h int, alpha uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / w),
				G: uint8(y * 255 / h),
				B: 90,
				A: alpha,
			})
		}
	}
	return img
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func encodeWebP(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, webp.Encode(&buf, img, &webp.Options{Lossless: true}))
	return buf.Bytes()
}

func TestGetImageInfo(t *testing.T) {
	data := encodePNG(t, testImage(100, 50, 255))

	info, err := GetImageInfo(data)
	require.NoError(t, err)
	assert.Equal(t, 100, info.Width)
	assert.Equal(t, 50, info.Height)
	assert.Equal(t, "PNG", info.Format)
	assert.Equal(t, len(data), info.Size)
	assert.Equal(t, 2.0, info.AspectRatio)
}

func TestInspect_Formats(t *testing.T) {
	img := testImage(30, 40, 255)
	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, img, nil))

	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"png", encodePNG(t, img), "PNG"},
		{"jpeg", encodeJPEG(t, img), "JPEG"},
		{"webp", encodeWebP(t, img), "WebP"},
		{"gif decodes but is unknown", gifBuf.Bytes(), "Unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, err := Inspect(tt.data)
			require.NoError(t, err)
			assert.Equal(t, tt.want, info.Format)
			assert.Equal(t, 30, info.Width)
			assert.Equal(t, 40, info.Height)
			assert.InDelta(t, 0.75, info.AspectRatio, 1e-9)
		})
	}
}

func TestDecodeError(t *testing.T) {
	inputs := map[string][]byte{
		"empty":     nil,
		"garbage":   []byte("definitely not an image"),
		"truncated": encodePNG(t, testImage(10, 10, 255))[:40],
	}
	for name, data := range inputs {
		t.Run(name, func(t *testing.T) {
			_, err := Inspect(data)
			var decErr *DecodeError
			require.True(t, errors.As(err, &decErr), "got %v", err)

			for _, target := range format.Targets() {
				out, err := New(Options{}).Convert(data, target, 80)
				assert.Nil(t, out)
				assert.True(t, errors.As(err, &decErr))
			}
		})
	}
}

func TestCompress_UnsupportedFormat(t *testing.T) {
	data := encodePNG(t, testImage(8, 8, 255))

	for _, name := range []string{"gif", "webp", "bmp", ""} {
		out, err := Compress(data, name, 80)
		assert.Nil(t, out)

		var fmtErr *UnsupportedFormatError
		require.True(t, errors.As(err, &fmtErr), "format %q", name)
		assert.Equal(t, name, fmtErr.Format)
	}

	_, err := Compress(data, "gif", 80)
	assert.EqualError(t, err, `unsupported format "gif": use 'jpeg' or 'png'`)
}

func TestCompress_LabelCheckedBeforeDecode(t *testing.T) {
	garbage := []byte("definitely not an image")

	_, err := Compress(garbage, "gif", 80)
	var fmtErr *UnsupportedFormatError
	assert.True(t, errors.As(err, &fmtErr), "got %v", err)

	_, err = Compress(garbage, "jpeg", 80)
	var decErr *DecodeError
	assert.True(t, errors.As(err, &decErr), "got %v", err)
}

func TestCompress_FormatLabels(t *testing.T) {
	data := encodePNG(t, testImage(16, 16, 255))

	tests := []struct {
		label string
		want  format.Format
	}{
		{"jpeg", format.JPEG},
		{"JPG", format.JPEG},
		{" Jpeg ", format.JPEG},
		{"png", format.PNG},
		{"PNG", format.PNG},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			out, err := Compress(data, tt.label, 70)
			require.NoError(t, err)
			assert.Equal(t, tt.want, format.Detect(out))
		})
	}
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]format.Target{
		"jpeg": format.TargetJPEG,
		"jpg":  format.TargetJPEG,
		"PNG":  format.TargetPNG,
		"WebP": format.TargetWebP,
	} {
		got, err := ParseTarget(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseTarget("avif")
	assert.EqualError(t, err, `unsupported format "avif": use 'jpeg', 'png' or 'webp'`)
}

func TestNormalizeQuality(t *testing.T) {
	assert.Equal(t, DefaultQuality, NormalizeQuality(0))
	assert.Equal(t, DefaultQuality, NormalizeQuality(-4))
	assert.Equal(t, 1, NormalizeQuality(1))
	assert.Equal(t, 100, NormalizeQuality(100))
	assert.Equal(t, 255, NormalizeQuality(255))
	assert.Equal(t, 255, NormalizeQuality(1000))
}

func TestConvert_JPEGDropsAlpha(t *testing.T) {
	data := encodePNG(t, testImage(32, 32, 100))

	out, err := New(Options{}).Convert(data, format.TargetJPEG, 90)
	require.NoError(t, err)
	require.Equal(t, format.JPEG, format.Detect(out))

	img, err := jpeg.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			_, _, _, a := img.At(x, y).RGBA()
			require.Equal(t, uint32(0xffff), a)
		}
	}
}

func TestConvert_PNGKeepsPixels(t *testing.T) {
	src := testImage(24, 24, 255)
	data := encodeWebP(t, src)

	out, err := New(Options{}).Convert(data, format.TargetPNG, 80)
	require.NoError(t, err)
	require.Equal(t, format.PNG, format.Detect(out))

	img, err := png.Decode(bytes.NewReader(out))
	require.NoError(t, err)
	assertSameNRGBA(t, src, img)
}

func TestConvert_PNGFromJPEGUsesNoFilter(t *testing.T) {
	data := encodeJPEG(t, testImage(20, 20, 255))

	res, err := New(Options{}).ConvertDetailed(data, format.TargetPNG, 80)
	require.NoError(t, err)
	assert.Equal(t, "NoFilter", res.Settings.PNG.Filter.String())
	assert.Equal(t, "Best", res.Settings.PNG.Compression.String())

	_, err = png.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
}

func TestConvert_WebPLosslessByDefault(t *testing.T) {
	src := testImage(40, 20, 255)
	data := encodePNG(t, src)

	res, err := New(Options{}).ConvertDetailed(data, format.TargetWebP, 10)
	require.NoError(t, err)
	assert.True(t, res.Settings.Lossless)
	assert.Equal(t, format.WebP, format.Detect(res.Data))

	img, err := webp.Decode(bytes.NewReader(res.Data))
	require.NoError(t, err)
	assertSameNRGBA(t, src, img)
}

func TestConvert_WebPLossy(t *testing.T) {
	data := encodePNG(t, testImage(64, 64, 255))

	res, err := New(Options{WebPLossy: true}).ConvertDetailed(data, format.TargetWebP, 80)
	require.NoError(t, err)
	assert.False(t, res.Settings.Lossless)
	// PNG source keeps 80; 4096 px is below the small threshold: +3.
	assert.Equal(t, 83, res.Settings.Quality)
	assert.Equal(t, tuningDecision(80, 80, 3), res.Decision)
	assert.Equal(t, format.WebP, format.Detect(res.Data))
}

func TestConvert_Result(t *testing.T) {
	data := encodePNG(t, testImage(50, 10, 255))

	res, err := New(Options{}).ConvertDetailed(data, format.TargetJPEG, 100)
	require.NoError(t, err)
	assert.Equal(t, format.PNG, res.Source)
	assert.Equal(t, format.TargetJPEG, res.Target)
	assert.Equal(t, 50, res.Width)
	assert.Equal(t, 10, res.Height)
	assert.Equal(t, len(data), res.InputSize)
	// PNG source clamps 100 to 90, plus 5 for a small image.
	assert.Equal(t, 95, res.Settings.Quality)
	assert.InDelta(t, float64(len(data))/float64(len(res.Data)), res.Ratio(), 1e-9)

	assert.Equal(t, 0.0, (&Result{InputSize: 10}).Ratio())
}

func TestConvert_InvalidTarget(t *testing.T) {
	data := encodePNG(t, testImage(8, 8, 255))

	out, err := New(Options{}).Convert(data, format.Target(99), 80)
	assert.Nil(t, out)
	var fmtErr *UnsupportedFormatError
	require.True(t, errors.As(err, &fmtErr))
	assert.Equal(t, "unknown", fmtErr.Format)
}

func TestConvert_Logging(t *testing.T) {
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	data := encodePNG(t, testImage(16, 16, 255))

	_, err := New(Options{Logger: logger}).Convert(data, format.TargetWebP, 80)
	require.NoError(t, err)

	var params, done, unused bool
	for _, e := range hook.AllEntries() {
		switch e.Message {
		case "webp parameters":
			params = true
			assert.Equal(t, "PNG", e.Data["source"])
			assert.Equal(t, true, e.Data["lossless"])
			assert.Equal(t, 80, e.Data["requested"])
		case "lossless webp ignores the computed quality":
			unused = true
		case "conversion complete":
			done = true
			assert.Equal(t, len(data), e.Data["input_bytes"])
		}
	}
	assert.True(t, params)
	assert.True(t, unused)
	assert.True(t, done)

	hook.Reset()
	_, err = New(Options{Logger: logger}).Convert([]byte("nope"), format.TargetJPEG, 80)
	require.Error(t, err)
	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, "conversion failed", hook.LastEntry().Message)
}

func TestShouldConvertToWebP(t *testing.T) {
	small := encodeJPEG(t, testImage(8, 8, 255))
	big := append([]byte{0xFF, 0xD8, 0xFF, 0xE0}, make([]byte, webpWorthyJPEGSize)...)

	assert.False(t, ShouldConvertToWebP(encodeWebP(t, testImage(8, 8, 255))))
	assert.False(t, ShouldConvertToWebP(small))
	assert.True(t, ShouldConvertToWebP(big))
	assert.True(t, ShouldConvertToWebP(encodePNG(t, testImage(8, 8, 255))))
	assert.True(t, ShouldConvertToWebP([]byte("anything else")))
}

func TestProcess(t *testing.T) {
	data := encodePNG(t, testImage(16, 16, 255))

	out, err := Process(data, true, 0)
	require.NoError(t, err)
	assert.Equal(t, format.WebP, format.Detect(out))

	out, err = Process(data, false, 0)
	require.NoError(t, err)
	assert.Equal(t, format.JPEG, format.Detect(out))
}

func TestSource_HasAlpha(t *testing.T) {
	assert.False(t, (&Source{Image: testImage(4, 4, 255)}).HasAlpha())
	assert.True(t, (&Source{Image: testImage(4, 4, 254)}).HasAlpha())
	assert.False(t, (&Source{Image: image.NewGray(image.Rect(0, 0, 4, 4))}).HasAlpha())
}

func TestConvert_JPEGReencode(t *testing.T) {
	data := encodeJPEG(t, testImage(40, 40, 255))

	res, err := New(Options{}).ConvertDetailed(data, format.TargetJPEG, 100)
	require.NoError(t, err)
	assert.Equal(t, tuningDecision(100, 60, 5), res.Decision)
	assert.Equal(t, 65, res.Settings.Quality)
}

func tuningDecision(requested, base, adj int) tuning.Decision {
	return tuning.Decision{Requested: requested, Base: base, Adjustment: adj, Final: base + adj}
}

func assertSameNRGBA(t *testing.T, want, got image.Image) {
	t.Helper()
	require.Equal(t, want.Bounds().Size(), got.Bounds().Size())
	wb, gb := want.Bounds(), got.Bounds()
	for y := 0; y < wb.Dy(); y++ {
		for x := 0; x < wb.Dx(); x++ {
			w := color.NRGBAModel.Convert(want.At(wb.Min.X+x, wb.Min.Y+y))
			g := color.NRGBAModel.Convert(got.At(gb.Min.X+x, gb.Min.Y+y))
			require.Equal(t, w, g, "pixel (%d,%d)", x, y)
		}
	}
}
