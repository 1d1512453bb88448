package imaging

import (
	"encoding/base64"
	"errors"
	"regexp"
	"strings"
)

// ErrInvalidDataURL is returned for anything that is not a base64 data URL.
var ErrInvalidDataURL = errors.New("invalid image data format, expected a data URL")

var dataURLRe = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

// DataURL is a decoded data: URL.
type DataURL struct {
	MIMEType string
	Data     []byte
}

// ParseDataURL decodes s, which must look like data:<mime>;base64,<payload>.
func ParseDataURL(s string) (DataURL, error) {
	m := dataURLRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return DataURL{}, ErrInvalidDataURL
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return DataURL{}, errors.Join(ErrInvalidDataURL, err)
	}
	return DataURL{MIMEType: m[1], Data: data}, nil
}

// String encodes the data URL.
func (d DataURL) String() string {
	return "data:" + d.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}
