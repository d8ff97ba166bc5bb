package images

import (
	"hash/fnv"
	"image/color"
	"io"
	"strings"

	"github.com/fogleman/gg"
)

// palette holds the background colors placeholder cards cycle through.
var palette = []color.RGBA{
	{R: 0x1e, G: 0x3a, B: 0x5f, A: 0xff}, // deep blue
	{R: 0x2d, G: 0x6a, B: 0x4f, A: 0xff}, // forest green
	{R: 0x6d, G: 0x28, B: 0x5f, A: 0xff}, // plum
	{R: 0x8a, G: 0x4f, B: 0x1d, A: 0xff}, // amber brown
	{R: 0x3d, G: 0x34, B: 0x6b, A: 0xff}, // indigo
	{R: 0x5c, G: 0x1a, B: 0x23, A: 0xff}, // wine
}

// RenderPlaceholder draws a simple branded card for a topic and writes it as
// PNG. The color is a stable function of the topic, so the same category
// always renders the same card.
func RenderPlaceholder(w io.Writer, topic string, width, height int) error {
	if width <= 0 || width > 2400 {
		width = 1200
	}
	if height <= 0 || height > 1600 {
		height = 800
	}

	topic = strings.TrimSpace(topic)
	if topic == "" {
		topic = "TrendWise"
	}

	dc := gg.NewContext(width, height)

	bg := palette[colorIndex(topic)]
	dc.SetColor(bg)
	dc.Clear()

	// Soft diagonal band for a bit of depth
	dc.SetRGBA(1, 1, 1, 0.06)
	dc.MoveTo(0, float64(height))
	dc.LineTo(float64(width), 0)
	dc.LineTo(float64(width), float64(height)*0.4)
	dc.LineTo(0, float64(height))
	dc.ClosePath()
	dc.Fill()

	label := strings.ToUpper(topic)
	if len(label) > 24 {
		label = label[:24]
	}

	dc.SetRGB(1, 1, 1)
	// Best effort; the built-in face is used when no system font is available.
	dc.LoadFontFace("/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf", float64(height)/10)
	dc.DrawStringAnchored(label, float64(width)/2, float64(height)/2, 0.5, 0.5)

	dc.SetRGBA(1, 1, 1, 0.55)
	dc.DrawStringAnchored("trendwise", float64(width)/2, float64(height)*0.92, 0.5, 0.5)

	return dc.EncodePNG(w)
}

func colorIndex(topic string) int {
	h := fnv.New32a()
	h.Write([]byte(strings.ToLower(topic)))
	return int(h.Sum32() % uint32(len(palette)))
}
