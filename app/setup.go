package app

import (
	"fmt"
	"log"
	"os"

	"github.com/coursedeck/coursedeck/api"
	"github.com/coursedeck/coursedeck/config"
	"github.com/coursedeck/coursedeck/database"
	"github.com/coursedeck/coursedeck/router"
	"github.com/coursedeck/coursedeck/services"
	cronjobs "github.com/coursedeck/coursedeck/services/cron"
	"github.com/coursedeck/coursedeck/services/storage"
	"github.com/coursedeck/coursedeck/utils/auth"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	// Object storage is optional in development; without it, file
	// submissions are rejected at the service layer.
	var objectStore services.ObjectStore
	var storageClient *storage.Client
	if getEnv.STORAGE_ENDPOINT != "" {
		storageClient, err = storage.NewClient(storage.Config{
			AccessKey: getEnv.STORAGE_ACCESS_KEY,
			SecretKey: getEnv.STORAGE_SECRET_KEY,
			Endpoint:  getEnv.STORAGE_ENDPOINT,
			Region:    getEnv.STORAGE_REGION,
			Bucket:    getEnv.STORAGE_BUCKET,
			BaseURL:   getEnv.STORAGE_BASE_URL,
		})
		if err != nil {
			log.Printf("Warning: Failed to initialize object storage: %v. File submissions will be disabled.", err)
		} else {
			objectStore = storageClient
		}
	} else {
		log.Println("Warning: STORAGE_ENDPOINT not set. File submissions will be disabled.")
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cronjobs.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		var sweeper cronjobs.Sweeper
		if storageClient != nil {
			sweeper = storageClient
		}
		cronManager = cronjobs.NewCronManager(store.DB(), auth.NewBlacklistService(store.DB()), sweeper)
		if err := cronManager.Start(); err != nil {
			print("Warning: Failed to start cron jobs\n")
			print("Error: ", err.Error(), "\n")
			// Don't fail the app, just log the warning
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (security middleware included)
	router.SetupRoutes(app, store, objectStore)

	// Get the PORT & Start the Server
	return server.Run()
}
