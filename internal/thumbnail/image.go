package thumbnail

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"

	"github.com/Laisky/errors/v2"
	"github.com/nfnt/resize"
)

// ResizeWidth decodes src, scales it to the target width preserving the
// aspect ratio, and re-encodes it in the source format. The transform is
// pure: identical input bytes yield identical output bytes.
func ResizeWidth(src []byte, width uint) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(src))
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	thumb := resize.Resize(width, 0, img, resize.Lanczos3)

	var buf bytes.Buffer
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, thumb, nil)
	case "gif":
		err = gif.Encode(&buf, thumb, nil)
	default:
		err = png.Encode(&buf, thumb)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "encode %s thumbnail", format)
	}

	return buf.Bytes(), nil
}
