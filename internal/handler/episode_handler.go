package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"repocast/internal/github"
	"repocast/internal/service"
)

// EpisodeHandler wires HTTP → NarrativeService.
type EpisodeHandler struct {
	narrative *service.NarrativeService
	episodes  service.EpisodeRepository
}

// NewEpisodeHandler creates an EpisodeHandler instance.
func NewEpisodeHandler(narrative *service.NarrativeService, episodes service.EpisodeRepository) *EpisodeHandler {
	return &EpisodeHandler{narrative: narrative, episodes: episodes}
}

// Register mounts the episode routes on the given router group.
func (h *EpisodeHandler) Register(r fiber.Router) {
	r.Post("/episodes", h.generate)
	r.Get("/episodes/:owner/:name", h.get)
	r.Get("/episodes/:owner/:name/audio", h.audio)
}

// generateRequest is the payload for POST /episodes.
type generateRequest struct {
	RepoURL string `json:"repo_url"`
}

// generate handles POST /episodes: build verified facts, generate the
// narrative, and return the finished episode (audio excluded; see /audio).
func (h *EpisodeHandler) generate(c *fiber.Ctx) error {
	var req generateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid JSON body")
	}
	if req.RepoURL == "" {
		return fiber.NewError(fiber.StatusBadRequest, "repo_url is required")
	}

	ep, err := h.narrative.ProduceEpisode(c.UserContext(), req.RepoURL)
	if err != nil {
		return mapPipelineError(err)
	}
	return c.JSON(ep)
}

// get handles GET /episodes/:owner/:name — cached episodes only.
func (h *EpisodeHandler) get(c *fiber.Ctx) error {
	id := c.Params("owner") + "/" + c.Params("name")

	ep, err := h.episodes.FindByID(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if ep.ID == "" {
		return fiber.NewError(fiber.StatusNotFound, "no episode for "+id)
	}
	return c.JSON(ep)
}

// audio handles GET /episodes/:owner/:name/audio, streaming the MP3 bytes.
func (h *EpisodeHandler) audio(c *fiber.Ctx) error {
	id := c.Params("owner") + "/" + c.Params("name")

	ep, err := h.episodes.FindByID(c.UserContext(), id)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
	if ep.ID == "" || len(ep.Audio) == 0 {
		return fiber.NewError(fiber.StatusNotFound, "no audio for "+id)
	}

	c.Set(fiber.HeaderContentType, "audio/mpeg")
	return c.Send(ep.Audio)
}

// mapPipelineError translates the pipeline's typed failures into HTTP
// statuses the caller can act on.
func mapPipelineError(err error) error {
	var vErr *service.ValidationError

	switch {
	case errors.Is(err, github.ErrInvalidRepoURL):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrIndexingTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	case errors.Is(err, service.ErrIndexingFailed), errors.Is(err, service.ErrQueryFailed):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, service.ErrInsufficientCitations):
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	case errors.As(err, &vErr):
		return fiber.NewError(fiber.StatusUnprocessableEntity, vErr.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}
