package render

import (
	"strings"

	"reel/internal/pkg/errors"
)

var importStatements = []string{"from manim import", "import manim"}

// Validate applies the syntactic checks every script must pass before it
// is staged: non-empty, imports manim, mentions a class and "Scene".
func Validate(code string) error {
	if strings.TrimSpace(code) == "" {
		return errors.ValidationField("manim_code", "Empty code provided")
	}

	hasImport := false
	for _, stmt := range importStatements {
		if strings.Contains(code, stmt) {
			hasImport = true
			break
		}
	}
	if !hasImport {
		return errors.ValidationField("manim_code", "Missing Manim import statement")
	}

	if !strings.Contains(code, "class") || !strings.Contains(code, "Scene") {
		return errors.ValidationField("manim_code", "Code should contain a Scene class")
	}
	return nil
}
