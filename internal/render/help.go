package render

const helpText = `
🤖 Manim Video Generation Help

📚 Quality options:
- low (low_quality): fastest render, 480p
- medium (medium_quality): balanced speed and quality (default)
- high (high_quality): 1080p, slower
- production (production_quality): best output, slowest

🎨 Renderers:
- cairo: 2D vector graphics (default)
- opengl: 3D scenes and shader effects

📝 Code requirements:
- Import manim: 'from manim import *'
- Define a class deriving from Scene
- Implement construct()

💡 Tips:
- Short animations (under 30 seconds) render much faster
- Preview with low quality, then re-render at high or production
- Complex 3D scenes work best with the opengl renderer
- Each render gets its own directory under the output directory;
  call cleanup_manim_temp_dir when you are done with it

🔧 Example:
execute_manim_code(manim_code="from manim import *\n\nclass Hello(Scene):\n    def construct(self):\n        self.play(Write(Text(\"Hello\")))", quality="medium", renderer="cairo")
`

// Help returns the usage text shown to tool callers.
func Help() string {
	return helpText
}
