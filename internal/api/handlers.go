package api

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"suno-forge/internal/forge"
	"suno-forge/internal/validation"
)

const (
	msgInvalidConfig   = "Invalid prompt configuration"
	msgInvalidBatch    = "Invalid batch request"
	msgInvalidMutation = "Invalid mutation request"
	msgInvalidVision   = "Invalid vision request"
	msgInvalidLyrics   = "Invalid lyrics request"
	msgMutationFailed  = "Mutation failed"
)

type batchResponse struct {
	BatchID string         `json:"batchId"`
	Count   int            `json:"count"`
	Prompts []forge.Prompt `json:"prompts"`
}

type visionResponse struct {
	Config forge.VisionResult `json:"config"`
	Prompt forge.Prompt       `json:"prompt"`
}

// bindBody decodes the JSON body into the generic shape the validators
// expect. An empty body decodes to nil when allowEmpty is set.
func bindBody(c *gin.Context, allowEmpty bool) (any, bool) {
	var body any
	if err := c.ShouldBindJSON(&body); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return map[string]any{}, true
		}
		return nil, false
	}
	return body, true
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}

func (s *Server) handleGenerate(c *gin.Context) {
	body, ok := bindBody(c, false)
	if !ok {
		badRequest(c, msgInvalidConfig)
		return
	}
	cfg, ok := validation.PromptConfigFrom(body)
	if !ok {
		badRequest(c, msgInvalidConfig)
		return
	}
	c.JSON(http.StatusOK, gin.H{"prompt": forge.BuildPrompt(cfg)})
}

func (s *Server) handleBatch(c *gin.Context) {
	body, ok := bindBody(c, false)
	if !ok {
		badRequest(c, msgInvalidBatch)
		return
	}
	obj, ok := body.(map[string]any)
	if !ok {
		badRequest(c, msgInvalidBatch)
		return
	}
	count, ok := obj["count"].(float64)
	if !ok {
		badRequest(c, msgInvalidBatch)
		return
	}
	obj["count"] = clampCount(count)

	if !validation.ValidateBatchRequest(obj) {
		badRequest(c, msgInvalidBatch)
		return
	}
	cfg, _ := validation.PromptConfigFrom(obj["config"])

	ctx, cancel := context.WithTimeout(c.Request.Context(), s.requestTimeout)
	defer cancel()

	n := int(obj["count"].(float64))
	prompts, err := forge.BuildBatch(ctx, cfg, n, s.batchWorkers)
	if err != nil {
		s.logger.Warn("batch aborted", "err", err, "count", n, "request_id", c.GetString(requestIDKey))
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "Batch generation aborted", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, batchResponse{
		BatchID: uuid.NewString(),
		Count:   len(prompts),
		Prompts: prompts,
	})
}

func clampCount(n float64) float64 {
	if n < validation.MinBatchCount {
		return validation.MinBatchCount
	}
	if n > validation.MaxBatchCount {
		return validation.MaxBatchCount
	}
	return n
}

func (s *Server) handleMutate(c *gin.Context) {
	body, ok := bindBody(c, false)
	if !ok || !validation.ValidateMutateRequest(body) {
		badRequest(c, msgInvalidMutation)
		return
	}
	obj := body.(map[string]any)
	prompt := obj["prompt"].(string)
	typ := forge.MutationType(obj["type"].(string))

	mutated, err := forge.MutatePrompt(prompt, typ)
	if err != nil {
		s.logger.Error("mutation failed", "err", err, "type", typ, "request_id", c.GetString(requestIDKey))
		resp := errorResponse{Error: msgMutationFailed, Details: err.Error()}
		if errors.Is(err, forge.ErrUnknownMutation) {
			resp.Code = "UNKNOWN_MUTATION_TYPE"
		}
		c.JSON(http.StatusInternalServerError, resp)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mutated": mutated, "type": typ})
}

func (s *Server) handleVision(c *gin.Context) {
	body, ok := bindBody(c, false)
	if !ok || !validation.ValidateVisionRequest(body) {
		badRequest(c, msgInvalidVision)
		return
	}
	desc := body.(map[string]any)["description"].(string)

	result := forge.ImageToPrompt(desc)
	c.JSON(http.StatusOK, visionResponse{
		Config: result,
		Prompt: forge.BuildPrompt(result.Config()),
	})
}

func (s *Server) handleLyrics(c *gin.Context) {
	body, ok := bindBody(c, true)
	if !ok || !validation.ValidateLyricsRequest(body) {
		badRequest(c, msgInvalidLyrics)
		return
	}
	obj := body.(map[string]any)
	genre, _ := obj["genre"].(string)
	theme, _ := obj["theme"].(string)

	c.JSON(http.StatusOK, gin.H{"lyrics": forge.GenerateLyrics(genre, theme)})
}

func (s *Server) handleGenres(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"genres": forge.GenreNames()})
}

func (s *Server) handleGenre(c *gin.Context) {
	name := c.Param("name")
	profile, err := forge.GetGenreProfile(name)
	if errors.Is(err, forge.ErrGenreNotFound) {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Genre not found", Details: name})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": name, "profile": profile})
}

func (s *Server) handlePacks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"packs": forge.PromptPacks()})
}

func (s *Server) handleRandomPack(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"pack": forge.RandomPromptPack()})
}

func (s *Server) handlePack(c *gin.Context) {
	pack, ok := forge.PromptPackByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Pack not found", Details: c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pack": pack})
}

func (s *Server) handlePackGenerate(c *gin.Context) {
	pack, ok := forge.PromptPackByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, errorResponse{Error: "Pack not found", Details: c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pack": pack.ID, "prompt": forge.BuildPrompt(pack.Config())})
}

func (s *Server) handleMutations(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"mutations": forge.MutationTypes()})
}
