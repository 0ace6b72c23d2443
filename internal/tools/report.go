package tools

import (
	"fmt"
	"strings"
	"time"

	"reel/internal/pkg/errors"
	"reel/internal/render"
)

// ExecuteReport flattens the result of Manager.Execute into the text shown
// to the calling model. Exactly one of out and err is expected to be set.
func ExecuteReport(out *render.Outcome, err error, timeout time.Duration) string {
	if err != nil {
		return executeErrorReport(err, timeout)
	}
	if out == nil {
		return "💥 Error during execution: no result"
	}

	if out.Kind == render.OutcomeNoArtifact || out.Artifact == nil {
		return fmt.Sprintf("⚠️ Execution completed but no video files found in %s", out.Job.Dir)
	}

	var b strings.Builder
	b.WriteString("✅ Execution successful!\n")
	fmt.Fprintf(&b, "📁 Output directory: %s\n", out.Job.Dir)
	fmt.Fprintf(&b, "🎥 Generated video: %s\n", out.Artifact.Name)
	fmt.Fprintf(&b, "📊 Video size: %.2f MB\n", out.Artifact.SizeMB())
	fmt.Fprintf(&b, "🔧 Quality: %s, Renderer: %s\n", out.Job.Quality, out.Job.Backend.RendererName())
	b.WriteString("💡 You can find the video file in the output directory.")
	return b.String()
}

func executeErrorReport(err error, timeout time.Duration) string {
	switch errors.GetCode(err) {
	case errors.CodeValidation:
		return "Code validation failed: " + errors.GetMessage(err)
	case errors.CodeRenderFailed:
		f := errors.GetFields(err)
		var b strings.Builder
		fmt.Fprintf(&b, "❌ Execution failed with return code %v\n", f["return_code"])
		fmt.Fprintf(&b, "📝 Error output:\n%v\n", f["stderr"])
		fmt.Fprintf(&b, "📝 Standard output:\n%v", f["stdout"])
		return b.String()
	case errors.CodeTimeout:
		msg := fmt.Sprintf("⏰ Execution timed out after %s. The animation might be too complex.", humanDuration(timeout))
		if dir, ok := errors.GetFields(err)["dir"].(string); ok && dir != "" {
			msg += "\n📁 Partial output left in: " + dir
		}
		return msg
	default:
		return "💥 Error during execution: " + err.Error()
	}
}

func listScenesReport(out string, err error) string {
	if err == nil {
		return "📋 Available scenes:\n" + out
	}
	switch errors.GetCode(err) {
	case errors.CodeRenderFailed:
		return fmt.Sprintf("❌ Failed to list scenes: %v", errors.GetFields(err)["stderr"])
	case errors.CodeTimeout:
		return "⏰ Listing scenes timed out."
	default:
		return "💥 Error listing scenes: " + err.Error()
	}
}

func cleanupReport(dir string, err error) string {
	if err == nil {
		return "✅ Cleanup successful for directory: " + dir
	}
	if errors.IsNotFound(err) {
		return "❌ Directory not found: " + dir
	}
	return "💥 Failed to clean up directories. Error: " + err.Error()
}

func cleanupAllReport(n int, err error) string {
	if err != nil {
		return fmt.Sprintf("💥 Failed to clean up directories. Removed %d before the error. Error: %s", n, err.Error())
	}
	return fmt.Sprintf("✅ Cleanup successful! Removed %d temporary directories.", n)
}

func directoryInfoReport(info *render.DirInfo, err error) string {
	if err != nil {
		return "💥 Error getting directory info: " + err.Error()
	}
	if !info.Exists {
		return "📁 Output directory does not exist: " + info.Path
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📁 Output Directory: %s\n", info.Path)
	fmt.Fprintf(&b, "📊 Total files: %d\n", info.TotalFiles)
	fmt.Fprintf(&b, "🎥 Video files: %d\n", info.VideoCount)
	if len(info.Recent) > 0 {
		b.WriteString("\n📹 Recent videos:\n")
		for i, v := range info.Recent {
			fmt.Fprintf(&b, "  %d. %s (%.2f MB)\n", i+1, v.Name, v.SizeMB())
		}
	}
	return b.String()
}

// humanDuration renders whole minutes the way people say them.
func humanDuration(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		n := int(d / time.Minute)
		if n == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", n)
	}
	return d.String()
}
