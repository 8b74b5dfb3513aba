package convert

// ImageInfo describes an encoded image.
type ImageInfo struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Format string `json:"format"`
	// Size is the encoded length in bytes.
	Size        int     `json:"size"`
	AspectRatio float64 `json:"aspectRatio"`
}

// Inspect decodes data and reports its dimensions, detected format and size.
func Inspect(data []byte) (ImageInfo, error) {
	src, err := Load(data)
	if err != nil {
		return ImageInfo{}, err
	}
	return src.Info(), nil
}

// Info returns the ImageInfo of an already loaded source.
func (s *Source) Info() ImageInfo {
	w, h := s.Width(), s.Height()
	info := ImageInfo{
		Width:  w,
		Height: h,
		Format: s.Format.String(),
		Size:   s.Size,
	}
	if h != 0 {
		info.AspectRatio = float64(w) / float64(h)
	}
	return info
}
