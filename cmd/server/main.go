package main

import (
	"os"

	"github.com/dailongmedia2603/CRMAUS-sub001/internal/database"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/logging"
	"github.com/dailongmedia2603/CRMAUS-sub001/internal/routes"

	"github.com/joho/godotenv"
)

func main() {
	// .env is optional; real deployments inject environment directly
	_ = godotenv.Load()

	logging.InitLogger()
	logging.Logger.Info("starting task workflow engine")

	// Init database
	database.InitDB()

	// Setup the routes (public and protected routes)
	ginRoutes := routes.SetupRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8008"
	}

	logging.Logger.Infof("server listening on :%s", port)
	if err := ginRoutes.Run(":" + port); err != nil {
		logging.Logger.Fatalf("failed to start server: %v", err)
	}
}
