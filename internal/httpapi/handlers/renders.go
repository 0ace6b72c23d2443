package handlers

import (
	"net/http"
	"strings"

	"reel/internal/httpkit"
	"reel/internal/pkg/errors"
	"reel/internal/render"
	"reel/internal/tools"
)

type RenderRequest struct {
	Code     string `json:"code"`
	Quality  string `json:"quality,omitempty"`
	Renderer string `json:"renderer,omitempty"`
}

type ScenesRequest struct {
	Code string `json:"code"`
}

func (h *Handler) Help(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, err := w.Write([]byte(render.Help()))
	return err
}

// PostRender renders synchronously.
func (h *Handler) PostRender(w http.ResponseWriter, r *http.Request) error {
	var req RenderRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		return errors.WrapWithCode(err, errors.CodeBadRequest, "http.post_render", "invalid json body")
	}

	out, err := h.renders.Execute(r.Context(), render.Request{
		Code:    req.Code,
		Quality: req.Quality,
		Backend: req.Renderer,
	})
	if err != nil {
		return err
	}

	httpkit.WriteJSON(w, http.StatusCreated, map[string]any{
		"outcome": out,
		"report":  tools.ExecuteReport(out, nil, h.renders.Timeout()),
	})
	return nil
}

func (h *Handler) PostScenes(w http.ResponseWriter, r *http.Request) error {
	var req ScenesRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		return errors.WrapWithCode(err, errors.CodeBadRequest, "http.post_scenes", "invalid json body")
	}
	if strings.TrimSpace(req.Code) == "" {
		return errors.ValidationField("code", "code is required")
	}

	out, err := h.renders.ListScenes(r.Context(), req.Code)
	if err != nil {
		return err
	}

	scenes := []string{}
	for _, line := range strings.Split(out, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			scenes = append(scenes, line)
		}
	}
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{
		"scenes": scenes,
		"output": out,
	})
	return nil
}

// DeleteRenders removes ?dir= when given, otherwise every tracked job.
func (h *Handler) DeleteRenders(w http.ResponseWriter, r *http.Request) error {
	if dir := strings.TrimSpace(r.URL.Query().Get("dir")); dir != "" {
		if err := h.renders.Cleanup(dir); err != nil {
			return err
		}
		httpkit.WriteJSON(w, http.StatusOK, map[string]any{"removed": dir})
		return nil
	}

	n, err := h.renders.CleanupAll()
	if err != nil {
		return err
	}
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"removed_count": n})
	return nil
}

func (h *Handler) GetOutput(w http.ResponseWriter, r *http.Request) error {
	info, err := h.renders.DirectoryInfo()
	if err != nil {
		return err
	}
	httpkit.WriteJSON(w, http.StatusOK, info)
	return nil
}

func (h *Handler) ListRenders(w http.ResponseWriter, r *http.Request) error {
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"jobs": h.renders.Jobs()})
	return nil
}
