package controllers

import (
	"github.com/DocBriefHQ/DocBrief/internal/pkg/database"
	"github.com/gofiber/fiber/v2"
)

// HandleStart serves the landing route.
func HandleStart(c *fiber.Ctx) error {
	if isLoggedIn(c) {
		return c.Redirect("/dashboard", fiber.StatusSeeOther)
	}
	return c.JSON(fiber.Map{
		"app":    "DocBrief",
		"status": "running",
	})
}

// HandleHealth reports process and database health.
func HandleHealth(c *fiber.Ctx) error {
	dbStatus := "ok"
	db := database.GetDB()
	if db == nil {
		dbStatus = "uninitialized"
	} else if sqlDB, err := db.DB(); err != nil || sqlDB.Ping() != nil {
		dbStatus = "unreachable"
	}
	return c.JSON(fiber.Map{
		"status":   "ok",
		"database": dbStatus,
	})
}
