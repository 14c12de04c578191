package ogimage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
)

func avatarServer(t *testing.T, c color.Color) *httptest.Server {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 460, 460))
	for y := 0; y < 460; y++ {
		for x := 0; x < 460; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode avatar: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(buf.Bytes())
	}))
	t.Cleanup(srv.Close)
	return srv
}

// sameRGB compares 8-bit channels with a small tolerance for resampling.
func sameRGB(a, b color.Color) bool {
	ar, ag, ab, _ := a.RGBA()
	br, bg, bb, _ := b.RGBA()
	near := func(x, y uint32) bool {
		d := int(x>>8) - int(y>>8)
		return d >= -2 && d <= 2
	}
	return near(ar, br) && near(ag, bg) && near(ab, bb)
}

func TestRenderPNG(t *testing.T) {
	red := color.RGBA{0xff, 0, 0, 0xff}
	srv := avatarServer(t, red)

	r, err := NewRenderer(nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	data, err := r.RenderPNG(context.Background(), Card{
		Name:      "Kinn00kinn",
		Role:      "Portfolio / KOSEN Advanced Course Student",
		AvatarURL: srv.URL,
	})
	if err != nil {
		t.Fatalf("RenderPNG: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if b := img.Bounds(); b.Dx() != Width || b.Dy() != Height {
		t.Fatalf("size %dx%d, want %dx%d", b.Dx(), b.Dy(), Width, Height)
	}
	if !sameRGB(img.At(5, 5), backgroundColor) {
		t.Errorf("corner pixel = %v, want background", img.At(5, 5))
	}
	if !sameRGB(img.At(outerPadding+2, Height/2), color.Black) {
		t.Errorf("border pixel = %v, want black", img.At(outerPadding+2, Height/2))
	}
	if !sameRGB(img.At(outerPadding+cardBorder+4, outerPadding+cardBorder+4), color.White) {
		t.Errorf("card pixel not white")
	}

	// The avatar's center must be red somewhere along the card's mid line.
	found := false
	for x := outerPadding; x < Width-outerPadding; x++ {
		if sameRGB(img.At(x, Height/2), red) {
			found = true
			break
		}
	}
	if !found {
		t.Error("avatar not drawn on the mid line")
	}
}

func TestRenderWithoutAvatar(t *testing.T) {
	r, err := NewRenderer(nil)
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	img, err := r.Render(context.Background(), Card{Name: "Name", Role: "Role", AvatarURL: "http://127.0.0.1:0/missing.png"})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	found := false
	for x := outerPadding; x < Width-outerPadding; x++ {
		if sameRGB(img.At(x, Height/2), placeholderGrey) {
			found = true
			break
		}
	}
	if !found {
		t.Error("placeholder disc not drawn")
	}
}
