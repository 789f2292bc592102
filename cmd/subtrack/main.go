package main

import (
	"fmt"
	"log"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/subtrackhq/subtrack/app/repository"
	"github.com/subtrackhq/subtrack/internal/pkg/cache"
	"github.com/subtrackhq/subtrack/internal/pkg/database"
	"github.com/subtrackhq/subtrack/internal/pkg/env"
	"github.com/subtrackhq/subtrack/internal/pkg/reminder"
	"github.com/subtrackhq/subtrack/internal/pkg/router"
)

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()
	repository.InitializeFactory(database.GetDB())
	reminder.GetManager().Start()

	app := fiber.New(fiber.Config{
		AppName: "SubTrack",
	})

	app.Use(recover.New(), logger.New())
	app.Use(cors.New())
	app.Get("/metrics", monitor.New())

	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: "../../public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	router.InstallRouter(app)

	return app
}
