package extract

import (
	"strings"
	"time"

	exif "github.com/dsoprea/go-exif/v3"

	"github.com/nao1215/archivist/internal/model"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// enrichWithEXIF populates an ImageDescriptor's TakenAt/CameraModel from
// the EXIF tags embedded in a downloaded image's body, when present.
// EXIF absence or a non-JPEG/TIFF body is not an error: most web images
// carry no EXIF at all, and the descriptor is simply left unenriched.
func enrichWithEXIF(descriptor *model.ImageDescriptor, body []byte, contentType string) {
	if !strings.Contains(contentType, "jpeg") && !strings.Contains(contentType, "tiff") {
		return
	}

	rawExif, err := exif.SearchAndExtractExif(body)
	if err != nil || rawExif == nil {
		return
	}

	entries, _, err := exif.GetFlatExifData(rawExif, nil)
	if err != nil {
		return
	}

	for _, entry := range entries {
		switch entry.TagName {
		case "Model":
			if descriptor.CameraModel == "" {
				descriptor.CameraModel = strings.TrimRight(entry.Formatted, "\x00")
			}
		case "DateTimeOriginal", "DateTime":
			if descriptor.TakenAt.IsZero() {
				if t, err := time.Parse(exifTimeLayout, strings.TrimRight(entry.Formatted, "\x00")); err == nil {
					descriptor.TakenAt = t
				}
			}
		}
	}
}
