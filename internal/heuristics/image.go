package heuristics

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"
)

// ErrImagePayload is returned by DecodeImagePayload for input that is not
// base64 or a base64 data URL.
var ErrImagePayload = errors.New("invalid image payload")

// MaxSuspicion is the score assigned to an image that cannot be decoded.
const MaxSuspicion = 100

// ImageLimits are the floors below which an image looks like a low-effort
// screenshot or a tracking pixel.
type ImageLimits struct {
	MinWidth  int
	MinHeight int
	MinBytes  int
}

var DefaultImageLimits = ImageLimits{MinWidth: 200, MinHeight: 200, MinBytes: 4 * 1024}

const (
	weightLowResolution = 25
	weightSmallPayload  = 15
)

// ScoreImage inspects the image header. Empty or undecodable data is scored
// at MaxSuspicion and nothing else is checked.
func (s *Scorer) ScoreImage(data []byte) Score {
	var score Score

	if len(data) == 0 {
		score.add(MaxSuspicion, "Image could not be decoded")
		return score
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		score.add(MaxSuspicion, "Image could not be decoded")
		return score
	}

	if cfg.Width*cfg.Height < s.image.MinWidth*s.image.MinHeight {
		score.add(weightLowResolution, "Image resolution below expected floor")
	}
	if len(data) < s.image.MinBytes {
		score.add(weightSmallPayload, "Image payload unusually small")
	}

	return score
}

// DecodeImagePayload accepts raw base64 (standard or URL alphabet, padded or
// not) or a data URL such as "data:image/png;base64,....".
func DecodeImagePayload(payload string) ([]byte, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return nil, ErrImagePayload
	}
	if strings.HasPrefix(payload, "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 || !strings.HasSuffix(payload[:comma], ";base64") {
			return nil, ErrImagePayload
		}
		payload = payload[comma+1:]
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if data, err := enc.DecodeString(payload); err == nil {
			return data, nil
		}
	}
	return nil, ErrImagePayload
}
