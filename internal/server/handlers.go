package server

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"scenegen/internal/export"
	"scenegen/internal/logging"
	"scenegen/internal/pipeline"
	"scenegen/internal/types"
)

const (
	scriptHeader   = "X-Generated-Script"
	filenameHeader = "X-Generated-Filename"
	modelHeader    = "X-Model-Id"
)

type generateRequest struct {
	Prompt  string `json:"prompt"`
	ModelID string `json:"modelId"`
}

type refineRequest struct {
	OriginalScript   string `json:"originalScript"`
	RefinementPrompt string `json:"refinementPrompt"`
	ModelID          string `json:"modelId"`
}

type modelResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Provider string `json:"provider"`
	Default  bool   `json:"default"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleModels(c *gin.Context) {
	def := s.catalog.Default().ID
	models := s.catalog.Models()
	out := make([]modelResponse, 0, len(models))
	for _, m := range models {
		out = append(out, modelResponse{ID: m.ID, Label: m.Label, Provider: string(m.Provider), Default: m.ID == def})
	}
	c.JSON(http.StatusOK, gin.H{"models": out})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var body generateRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	s.run(c, types.NewCreateRequest(body.Prompt, body.ModelID))
}

func (s *Server) handleRefine(c *gin.Context) {
	var body refineRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badJSON(c, err)
		return
	}
	s.run(c, types.NewRefineRequest(body.OriginalScript, body.RefinementPrompt, body.ModelID))
}

func badJSON(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusBadRequest, errorBody{
		Error: "request body must be a JSON object",
		Kind:  types.KindInvalidRequest,
	})
}

// run executes req, streams the artifact and deletes it afterwards.
func (s *Server) run(c *gin.Context, req types.GenerationRequest) {
	log := requestLogger(c).WithField("mode", string(req.Mode))

	target := func(env *types.Envelope) (string, error) {
		return export.UniquePath(s.tempDir, env.Filename, ".glb"), nil
	}
	res, err := s.runner.Run(c.Request.Context(), req, target)
	if err != nil {
		log.Warn("pipeline failed: %v", err)
		_ = c.Error(err)
		c.JSON(pipeline.HTTPStatus(err), errorBody{
			Error: err.Error(),
			Stage: string(pipeline.StageOf(err)),
			Kind:  pipeline.KindOf(err),
		})
		return
	}

	art := res.Artifact
	defer s.cleanup(log, art.Path)

	f, err := os.Open(art.Path)
	if err != nil {
		log.Error("failed to open artifact: %v", err)
		c.JSON(http.StatusInternalServerError, errorBody{
			Error: "failed to read generated asset",
			Stage: string(pipeline.StageExporting),
			Kind:  types.KindExportError,
		})
		return
	}
	defer f.Close()

	filename := res.Envelope.Filename + filepath.Ext(art.Path)
	c.DataFromReader(http.StatusOK, art.Size, art.Format.ContentType(), f, map[string]string{
		scriptHeader:          encodeURIComponent(res.Envelope.Script),
		filenameHeader:        encodeURIComponent(filename),
		modelHeader:           res.Model.ID,
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", filename),
	})
	log.Info("sent %s (%d bytes) in %v", filename, art.Size, res.Duration)
}

// cleanup deletes a transient artifact. Failures are logged, never returned.
func (s *Server) cleanup(log *logging.RequestLogger, path string) {
	if err := s.remove(path); err != nil {
		log.Warn("failed to delete temporary file %s: %v", path, err)
		return
	}
	log.Debug("deleted temporary file %s", path)
}

// uriComponentUnescaper undoes the query escaping of characters that
// encodeURIComponent leaves alone.
var uriComponentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeURIComponent percent-encodes s the way JavaScript's encodeURIComponent
// does, so browsers can decode it with decodeURIComponent.
func encodeURIComponent(s string) string {
	return uriComponentUnescaper.Replace(url.QueryEscape(s))
}
