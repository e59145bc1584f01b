package server

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"

	"github.com/MeKo-Tech/retina/internal/config"
)

// testConfig returns a small configuration so handler tests stay fast.
func testConfig() *config.Config {
	cfg := config.DefaultConfig()
	cfg.Sensor.PatchSize = 4
	cfg.Sensor.NumPatches = 2
	cfg.Sensor.ScaleFactor = 2.0
	cfg.Network.GlimpseHidden = 8
	cfg.Network.LocationHidden = 8
	cfg.Network.CoreHidden = 16
	cfg.Network.NumClasses = 3
	cfg.Agent.Steps = 2
	return cfg
}

// createTestImage creates a simple gradient image for testing.
func createTestImage(width, height int) image.Image {
	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: byte((x + y) % 256)})
		}
	}
	return img
}

// encodeImageToPNG encodes an image to PNG bytes.
func encodeImageToPNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	err := png.Encode(&buf, img)
	return buf.Bytes(), err
}

// createMultipartFormRequest creates a multipart form request with an image.
func createMultipartFormRequest(
	target string,
	imageData []byte,
	filename string,
	extraFields map[string]string,
) (*http.Request, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("image", filename)
	if err != nil {
		return nil, err
	}
	if _, err = part.Write(imageData); err != nil {
		return nil, err
	}

	for key, value := range extraFields {
		if err = writer.WriteField(key, value); err != nil {
			return nil, err
		}
	}

	if err = writer.Close(); err != nil {
		return nil, err
	}

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req, nil
}
