// handlers/player.go
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/JonathanFoo0523/extreme-startup-scaled/services"
)

func SetupPlayerRoutes(app *fiber.App, manager *services.GamesManager, events *services.EventLog) {
	app.Get("/api/:gameID/players", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		view, err := manager.GetGame(c.Context(), gameID)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch players",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"players": view.Players})
	})

	app.Post("/api/:gameID/players", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		var body struct {
			Name string `json:"name"`
			API  string `json:"api"`
		}
		if err := c.BodyParser(&body); err != nil || body.Name == "" || body.API == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "name and api are required",
			})
		}
		player, err := manager.AddPlayer(c.Context(), gameID, body.Name, body.API)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to add player",
				"cause": err.Error(),
			})
		}
		return c.Status(fiber.StatusCreated).JSON(player)
	})

	app.Delete("/api/:gameID/players", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		if err := requireGame(c, manager, gameID); err != nil {
			return err
		}
		if err := manager.RemoveAllPlayers(c.Context(), gameID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to remove players",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"deleted": "all"})
	})

	app.Get("/api/:gameID/players/:playerID", func(c *fiber.Ctx) error {
		player, err := manager.GetPlayer(c.Context(), c.Params("gameID"), c.Params("playerID"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch player",
				"cause": err.Error(),
			})
		}
		if player == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
		}
		return c.JSON(player)
	})

	app.Put("/api/:gameID/players/:playerID", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		playerID := c.Params("playerID")
		var body struct {
			Name string `json:"name"`
			API  string `json:"api"`
		}
		if err := c.BodyParser(&body); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid body"})
		}
		if err := manager.UpdatePlayer(c.Context(), gameID, playerID, body.Name, body.API); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to update player",
				"cause": err.Error(),
			})
		}
		player, err := manager.GetPlayer(c.Context(), gameID, playerID)
		if err != nil || player == nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "player not found"})
		}
		return c.JSON(player)
	})

	app.Delete("/api/:gameID/players/:playerID", func(c *fiber.Ctx) error {
		gameID := c.Params("gameID")
		playerID := c.Params("playerID")
		if err := manager.RemovePlayer(c.Context(), gameID, playerID); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to remove player",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"deleted": playerID})
	})

	app.Get("/api/:gameID/players/:playerID/events", func(c *fiber.Ctx) error {
		evs, err := events.PlayerEvents(c.Context(), c.Params("gameID"), c.Params("playerID"))
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to fetch player events",
				"cause": err.Error(),
			})
		}
		return c.JSON(fiber.Map{"events": evs})
	})
}
