package imaging

import (
	"bytes"
	"regexp"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Filename timestamp patterns produced by cameras and the catmon uploader,
// e.g. "20220115_183045.jpg" or "2022-01-15T18-30-45.jpg".
var (
	compactStampRe = regexp.MustCompile(`(\d{4})(\d{2})(\d{2})[_-](\d{2})(\d{2})(\d{2})`)
	isoStampRe     = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})[T _](\d{2})[-:.](\d{2})[-:.](\d{2})`)
)

// CaptureTime determines when an image was taken: EXIF DateTimeOriginal
// first, then a timestamp embedded in the filename, then the given fallback
// (normally the object's LastModified).
func CaptureTime(data []byte, name string, fallback time.Time) time.Time {
	if x, err := exif.Decode(bytes.NewReader(data)); err == nil {
		if tm, err := x.DateTime(); err == nil {
			return tm
		}
	}

	if tm, ok := timeFromName(name); ok {
		return tm
	}

	return fallback
}

func timeFromName(name string) (time.Time, bool) {
	for _, re := range []*regexp.Regexp{isoStampRe, compactStampRe} {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		stamp := m[1] + m[2] + m[3] + m[4] + m[5] + m[6]
		tm, err := time.ParseInLocation("20060102150405", stamp, time.Local)
		if err == nil {
			return tm, true
		}
	}
	return time.Time{}, false
}
