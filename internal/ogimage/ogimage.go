// Package ogimage renders the social preview card.
package ogimage

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/nfnt/resize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Card geometry, in pixels.
const (
	Width        = 1200
	Height       = 630
	outerPadding = 40
	cardBorder   = 8
	cardPadding  = 60
	avatarSize   = 150
	avatarBorder = 4
	textGap      = 48
	nameSize     = 64
	roleSize     = 32
)

var (
	backgroundColor = color.RGBA{0xf0, 0xf0, 0xf0, 0xff}
	roleColor       = color.RGBA{0x33, 0x33, 0x33, 0xff}
	placeholderGrey = color.RGBA{0xcc, 0xcc, 0xcc, 0xff}
)

// Card is the content of the preview.
type Card struct {
	Name      string
	Role      string
	AvatarURL string
}

// Renderer draws cards. It fetches avatars over HTTP.
type Renderer struct {
	client *http.Client
	bold   *opentype.Font
}

// NewRenderer parses the embedded font. A nil client uses a 10 second timeout.
func NewRenderer(client *http.Client) (*Renderer, error) {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	f, err := opentype.Parse(gobold.TTF)
	if err != nil {
		return nil, fmt.Errorf("ogimage: parse font: %w", err)
	}
	return &Renderer{client: client, bold: f}, nil
}

// RenderPNG draws card and encodes it as PNG.
func (r *Renderer) RenderPNG(ctx context.Context, card Card) ([]byte, error) {
	img, err := r.Render(ctx, card)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("ogimage: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Render draws card. A missing avatar is replaced by a grey disc.
func (r *Renderer) Render(ctx context.Context, card Card) (*image.RGBA, error) {
	canvas := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(backgroundColor), image.Point{}, draw.Src)

	outer := image.Rect(outerPadding, outerPadding, Width-outerPadding, Height-outerPadding)
	fillRect(canvas, outer, color.Black)
	fillRect(canvas, outer.Inset(cardBorder), color.White)

	nameFace, err := r.face(nameSize)
	if err != nil {
		return nil, err
	}
	defer nameFace.Close()
	roleFace, err := r.face(roleSize)
	if err != nil {
		return nil, err
	}
	defer roleFace.Close()

	// Center avatar + text block horizontally inside the card.
	nameWidth := font.MeasureString(nameFace, card.Name).Ceil()
	roleWidth := font.MeasureString(roleFace, card.Role).Ceil()
	textWidth := max(nameWidth, roleWidth)
	blockWidth := avatarSize + textGap + textWidth
	left := outer.Min.X + (outer.Dx()-blockWidth)/2
	if left < outer.Min.X+cardBorder+cardPadding {
		left = outer.Min.X + cardBorder + cardPadding
	}
	centerY := outer.Min.Y + outer.Dy()/2

	avatarRect := image.Rect(left, centerY-avatarSize/2, left+avatarSize, centerY+avatarSize/2)
	avatar := r.fetchAvatar(ctx, card.AvatarURL)
	drawAvatar(canvas, avatarRect, avatar)

	textX := avatarRect.Max.X + textGap
	nameMetrics := nameFace.Metrics()
	roleMetrics := roleFace.Metrics()
	textHeight := nameMetrics.Height.Ceil() + 16 + roleMetrics.Height.Ceil()
	top := centerY - textHeight/2

	drawText(canvas, nameFace, color.Black, textX, top+nameMetrics.Ascent.Ceil(), card.Name)
	drawText(canvas, roleFace, roleColor, textX, top+nameMetrics.Height.Ceil()+16+roleMetrics.Ascent.Ceil(), card.Role)

	return canvas, nil
}

func (r *Renderer) face(size float64) (font.Face, error) {
	face, err := opentype.NewFace(r.bold, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("ogimage: font face: %w", err)
	}
	return face, nil
}

// fetchAvatar returns the decoded avatar or nil on any failure.
func (r *Renderer) fetchAvatar(ctx context.Context, url string) image.Image {
	if url == "" {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}
	img, _, err := image.Decode(io.LimitReader(resp.Body, 5<<20))
	if err != nil {
		return nil
	}
	return img
}

func drawAvatar(dst draw.Image, rect image.Rectangle, avatar image.Image) {
	fillCircle(dst, rect, color.Black)
	inner := rect.Inset(avatarBorder)
	if avatar == nil {
		fillCircle(dst, inner, placeholderGrey)
		return
	}
	scaled := resize.Resize(uint(inner.Dx()), uint(inner.Dy()), avatar, resize.Lanczos3)
	draw.DrawMask(dst, inner, scaled, scaled.Bounds().Min, &circle{r: inner}, inner.Min, draw.Over)
}

func drawText(dst draw.Image, face font.Face, c color.Color, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func fillCircle(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.DrawMask(dst, r, image.NewUniform(c), image.Point{}, &circle{r: r}, r.Min, draw.Over)
}

// circle is an alpha mask of the disc inscribed in r.
type circle struct {
	r image.Rectangle
}

func (c *circle) ColorModel() color.Model { return color.AlphaModel }

func (c *circle) Bounds() image.Rectangle { return c.r }

func (c *circle) At(x, y int) color.Color {
	cx := float64(c.r.Min.X) + float64(c.r.Dx())/2
	cy := float64(c.r.Min.Y) + float64(c.r.Dy())/2
	rad := float64(c.r.Dx()) / 2
	dx, dy := float64(x)+0.5-cx, float64(y)+0.5-cy
	if dx*dx+dy*dy <= rad*rad {
		return color.Alpha{A: 0xff}
	}
	return color.Alpha{}
}
