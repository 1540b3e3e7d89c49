package heuristics

import (
	"bytes"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, w, h int, noisy bool) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	rng := rand.New(rand.NewSource(1))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.RGBA{R: 10, G: 20, B: 30, A: 255}
			if noisy {
				c = color.RGBA{R: uint8(rng.Intn(256)), G: uint8(rng.Intn(256)), B: uint8(rng.Intn(256)), A: 255}
			}
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestScoreImage(t *testing.T) {
	s := newTestScorer()

	tests := []struct {
		name    string
		data    []byte
		points  int
		reasons []string
	}{
		{"empty", nil, MaxSuspicion, []string{"Image could not be decoded"}},
		{"garbage", []byte("definitely not an image"), MaxSuspicion, []string{"Image could not be decoded"}},
		{"tiny", encodePNG(t, 10, 10, false), 40, []string{"Image resolution below expected floor", "Image payload unusually small"}},
		{"large but flat", encodePNG(t, 300, 300, false), 15, []string{"Image payload unusually small"}},
		{"large and detailed", encodePNG(t, 300, 300, true), 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := s.ScoreImage(tt.data)
			assert.Equal(t, tt.points, got.Points)
			assert.Equal(t, tt.reasons, got.Reasons)
		})
	}
}

func TestScoreImage_UndecodableIsHigh(t *testing.T) {
	got := newTestScorer().ScoreImage([]byte{0x89, 'P', 'N', 'G'})
	assert.Equal(t, RiskHigh, Classify(got.Points))
}

func TestDecodeImagePayload(t *testing.T) {
	raw := encodePNG(t, 4, 4, false)
	std := base64.StdEncoding.EncodeToString(raw)

	got, err := DecodeImagePayload(std)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = DecodeImagePayload("data:image/png;base64," + std)
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	got, err = DecodeImagePayload(base64.RawURLEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, got)

	for _, bad := range []string{"", "   ", "!!!not base64!!!", "data:image/png,abc", "data:image/png;base64"} {
		_, err := DecodeImagePayload(bad)
		assert.ErrorIs(t, err, ErrImagePayload, bad)
	}
}
