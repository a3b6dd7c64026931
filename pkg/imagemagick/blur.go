package imagemagick

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// DefaultBlurRadius matches the sigma used for moderated chat images.
const DefaultBlurRadius = "0x24"

// Blurrer blurs image files in place with the ImageMagick convert tool.
type Blurrer struct {
	Bin    string
	Radius string
}

func NewBlurrer(bin string) *Blurrer {
	if bin == "" {
		bin = "convert"
	}
	return &Blurrer{Bin: bin, Radius: DefaultBlurRadius}
}

// Args returns the convert arguments that blur path in place.
func (b *Blurrer) Args(path string) []string {
	radius := b.Radius
	if radius == "" {
		radius = DefaultBlurRadius
	}
	return []string{path, "-channel", "RGBA", "-blur", radius, path}
}

// Blur rewrites the file at path with a blurred copy of itself.
func (b *Blurrer) Blur(ctx context.Context, path string) error {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, b.Bin, b.Args(path)...)
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s blur %s: %w: %s", b.Bin, path, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
