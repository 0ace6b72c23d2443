package render

import (
	"strings"

	"reel/internal/pkg/errors"
)

// Quality is the render quality preset.
type Quality string

const (
	QualityLow        Quality = "low"
	QualityMedium     Quality = "medium"
	QualityHigh       Quality = "high"
	QualityProduction Quality = "production"
)

// ParseQuality accepts low/medium/high/production, the *_quality spellings
// and manim's single-letter flags. Empty means medium.
func ParseQuality(s string) (Quality, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	v = strings.TrimSuffix(v, "_quality")
	switch v {
	case "":
		return QualityMedium, nil
	case "low", "l":
		return QualityLow, nil
	case "medium", "m":
		return QualityMedium, nil
	case "high", "h":
		return QualityHigh, nil
	case "production", "p":
		return QualityProduction, nil
	}
	return "", errors.ValidationField("quality",
		"unknown quality "+quote(s)+" (expected low, medium, high or production)")
}

// Flag is the value passed to manim's -q option.
func (q Quality) Flag() string {
	switch q {
	case QualityLow:
		return "l"
	case QualityHigh:
		return "h"
	case QualityProduction:
		return "p"
	default:
		return "m"
	}
}

// Backend selects manim's renderer.
type Backend string

const (
	BackendRaster Backend = "raster"
	BackendOpenGL Backend = "opengl"
)

// ParseBackend accepts raster (alias cairo) and opengl. Empty means raster.
func ParseBackend(s string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "raster", "cairo":
		return BackendRaster, nil
	case "opengl", "gl":
		return BackendOpenGL, nil
	}
	return "", errors.ValidationField("renderer",
		"unknown renderer "+quote(s)+" (expected cairo or opengl)")
}

// RendererName is the value passed to manim's --renderer option.
func (b Backend) RendererName() string {
	if b == BackendOpenGL {
		return "opengl"
	}
	return "cairo"
}

func quote(s string) string {
	return `"` + s + `"`
}
