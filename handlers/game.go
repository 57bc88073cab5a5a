// handlers/game.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JonathanFoo0523/extreme-startup-scaled/services"
)

// SetupGameRoutes registers the admin and review endpoints for games. There is
// no auth layer here: the service sits behind the organiser's gateway.
func SetupGameRoutes(app *fiber.App, manager *services.GamesManager, events *services.EventLog) {
	app.Get("/api", func(c *fiber.Ctx) error {
		games, err := manager.ListGames(c.Context())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to list games",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"games": games})
	})

	app.Post("/api", func(c *fiber.Ctx) error {
		var body struct {
			Password string `json:"password"`
		}
		if err := c.BodyParser(&body); err != nil || body.Password == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "password is required",
			})
		}
		game, err := manager.NewGame(c.Context(), body.Password)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to create game",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(game)
	})

	app.Get("/api/:gameID", func(c *fiber.Ctx) error {
		view, err := manager.GetGame(c.Context(), c.Params("gameID"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch game",
				"cause": err.Error(),
			})
		}
		if view == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		return c.JSON(view)
	})

	app.Put("/api/:gameID", func(c *fiber.Ctx) error {
		return updateGame(c, manager)
	})

	app.Delete("/api/:gameID", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		if err := manager.EndGame(c.Context(), gameID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to end game",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"deleted": gameID})
	})

	app.Get("/api/:gameID/scores", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		totals, err := events.RunningTotals(c.Context(), gameID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch running totals",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"scores": totals})
	})

	app.Get("/api/:gameID/events", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		evs, err := events.GameEvents(c.Context(), gameID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch game events",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"events": evs})
	})

	app.Get("/api/:gameID/assist", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		list, err := manager.PlayersToAssist(c.Context(), gameID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch assist list",
				"cause": err.Error(),
			})
		}
		return c.JSON(list)
	})

	setupReviewRoutes(app, manager, events)
}

// updateGame dispatches the admin PUT body. Exactly one directive key is
// honoured per request, checked in a fixed order.
func updateGame(c *fiber.Ctx, manager *services.GamesManager) error {
	gameID := c.Params("gameID")
	if err := requireGame(c, manager, gameID); err != nil {
		return err
	}

	var body struct {
		Round     *bool   `json:"round"`
		Pause     *bool   `json:"pause"`
		Auto      *bool   `json:"auto"`
		End       *bool   `json:"end"`
		Assisting *string `json:"assisting"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
	}

	ctx := c.Context()
	switch {
	case body.Round != nil:
		last, err := manager.InLastRound(ctx, gameID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to check round",
				"cause": err.Error(),
			})
		}
		if last {
			if err := manager.EndGame(ctx, gameID); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "failed to end game",
					"cause": err.Error(),
				})
			}
			return c.JSON(fiber.Map{"status": "GAME_ENDED"})
		}
		if err := manager.AdvanceRound(ctx, gameID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to advance round",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "ROUND_INCREMENTED"})

	case body.Pause != nil:
		var err error
		status := "GAME_UNPAUSED"
		if *body.Pause {
			err = manager.PauseGame(ctx, gameID)
			status = "GAME_PAUSED"
		} else {
			err = manager.UnpauseGame(ctx, gameID)
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update pause state",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": status})

	case body.Auto != nil:
		var err error
		status := "GAME_AUTO_OFF"
		if *body.Auto {
			err = manager.SetAutoMode(ctx, gameID)
			status = "GAME_AUTO_ON"
		} else {
			err = manager.ClearAutoMode(ctx, gameID)
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update auto mode",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": status})

	case body.End != nil:
		if err := manager.EndGame(ctx, gameID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to end game",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"status": "GAME_ENDED"})

	case body.Assisting != nil:
		ok, err := manager.AssistPlayer(ctx, gameID, *body.Assisting)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to assist player",
				"cause": err.Error(),
			})
		}
		if !ok {
			return c.Status(fiber.StatusNotAcceptable).JSON(fiber.Map{
				"error": *body.Assisting + " not in needs_assistance list",
			})
		}
		return c.JSON(fiber.Map{"status": "ASSISTING " + *body.Assisting})
	}

	return c.Status(fiber.StatusNotAcceptable).JSON(fiber.Map{"error": "no recognised directive"})
}

func setupReviewRoutes(app *fiber.App, manager *services.GamesManager, events *services.EventLog) {
	app.Get("/api/:gameID/review/existed", func(c *fiber.Ctx) error {
		view, err := manager.GetGame(c.Context(), c.Params("gameID"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch game",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"existed": view != nil && view.Ended})
	})

	app.Get("/api/:gameID/review/finalboard", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		board, err := manager.FinalBoard(c.Context(), gameID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to build final board",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"finalboard": board})
	})

	app.Get("/api/:gameID/review/finalgraph", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		totals, err := events.RunningTotals(c.Context(), gameID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch running totals",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"scores": totals})
	})

	app.Get("/api/:gameID/review/stats", func(c *fiber.Ctx) error {
		view, err := manager.GetGame(c.Context(), c.Params("gameID"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch game",
				"cause": err.Error(),
			})
		}
		if view == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
		}
		if view.Stats == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "stats not computed yet"})
		}
		return c.JSON(view.Stats)
	})
}

// requireGame returns a fiber error (handled by the default error handler)
// when the game is missing, nil when the handler may proceed.
func requireGame(c *fiber.Ctx, manager *services.GamesManager, gameID string) error {
	exists, err := manager.GameExists(c.Context(), gameID)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to check game: "+err.Error())
	}
	if !exists {
		return fiber.NewError(fiber.StatusNotFound, "game not found")
	}
	return nil
}
