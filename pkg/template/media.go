package template

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/museloop/genflow/pkg/models"
)

const defaultMediaType = "application/octet-stream"

var ErrUnsupportedMediaURI = errors.New("unsupported media uri")

// mediaTypes maps file extensions of referenced media to their type. The
// table is fixed so rendered prompts do not depend on the host.
var mediaTypes = map[string]string{
	".avif": "image/avif",
	".bmp":  "image/bmp",
	".gif":  "image/gif",
	".heic": "image/heic",
	".heif": "image/heif",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".png":  "image/png",
	".svg":  "image/svg+xml",
	".tif":  "image/tiff",
	".tiff": "image/tiff",
	".webp": "image/webp",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".pdf":  "application/pdf",
	".txt":  "text/plain",
}

func mediaType(p string) string {
	if t, ok := mediaTypes[strings.ToLower(path.Ext(p))]; ok {
		return t
	}

	return defaultMediaType
}

// ParseMediaURI turns a data URI into inline media and an http(s) or gs URI
// into a media reference.
func ParseMediaURI(uri string) (models.MediaPart, error) {
	switch {
	case strings.HasPrefix(uri, "data:"):
		return parseDataURI(uri)
	case strings.HasPrefix(uri, "http://"), strings.HasPrefix(uri, "https://"), strings.HasPrefix(uri, "gs://"):
		u, err := url.Parse(uri)
		if err != nil {
			return models.MediaPart{}, fmt.Errorf("%w: %w", ErrUnsupportedMediaURI, err)
		}

		return models.MediaPart{MIMEType: mediaType(u.Path), URI: uri}, nil
	default:
		return models.MediaPart{}, fmt.Errorf("%w: %q", ErrUnsupportedMediaURI, truncate(uri, 32))
	}
}

func parseDataURI(uri string) (models.MediaPart, error) {
	header, payload, ok := strings.Cut(strings.TrimPrefix(uri, "data:"), ",")
	if !ok {
		return models.MediaPart{}, fmt.Errorf("%w: data uri has no payload", ErrUnsupportedMediaURI)
	}

	params := strings.Split(header, ";")
	mimeType := params[0]
	encoded := false

	for _, p := range params[1:] {
		if p == "base64" {
			encoded = true
		}
	}

	if mimeType == "" {
		mimeType = "text/plain"
	}

	var data []byte

	if encoded {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return models.MediaPart{}, fmt.Errorf("%w: %w", ErrUnsupportedMediaURI, err)
		}

		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return models.MediaPart{}, fmt.Errorf("%w: %w", ErrUnsupportedMediaURI, err)
		}

		data = []byte(unescaped)
	}

	if len(data) == 0 {
		return models.MediaPart{}, fmt.Errorf("%w: data uri is empty", ErrUnsupportedMediaURI)
	}

	return models.MediaPart{MIMEType: mimeType, Data: data}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
