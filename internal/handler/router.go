package handler

import (
	"github.com/gofiber/fiber/v2"

	"repocast/internal/service"
)

func RegisterRoutes(app *fiber.App,
	narrativeSvc *service.NarrativeService,
	episodeRepo service.EpisodeRepository,
) {

	v1 := app.Group("/api/v1")
	NewEpisodeHandler(narrativeSvc, episodeRepo).Register(v1)
}
