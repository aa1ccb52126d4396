package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ceyhunlar/numune/backend/sample-service/internal/api"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/db"
	"github.com/ceyhunlar/numune/backend/sample-service/internal/logging"
)

func main() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.SetOutput(os.Stdout)

	log.Printf("Sample Service starting (GIT_SHA=%s BUILD_TIME=%s)", os.Getenv("GIT_SHA"), os.Getenv("BUILD_TIME"))

	database, err := db.NewDatabase()
	if err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}
	defer database.Close()

	handler := api.NewHandler(database)

	router := setupRouter(handler)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Set up graceful shutdown
	go func() {
		log.Printf("Starting server on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
}

func setupRouter(handler *api.Handler) *gin.Engine {
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	router.Use(logging.JSONLogger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Health and readiness endpoints
	router.GET("/live", func(c *gin.Context) { c.Status(200) })
	router.GET("/ready", handler.Health)
	router.GET("/health", handler.Health)

	v1 := router.Group("/api/v1")
	{
		// Parse JWT if present to expose role info for read endpoints
		v1.Use(api.OptionalAuthMiddleware())

		// Catalog reads and the request form (public)
		v1.GET("/catalog/options", handler.GetOptions)
		v1.GET("/sectors", handler.ListSectors)
		v1.GET("/production-groups", handler.ListGroups)
		v1.GET("/products", handler.ListProducts)
		v1.GET("/products/search", handler.SearchProducts)
		v1.GET("/products/:id", handler.GetProduct)
		v1.GET("/product-assignments", handler.ListAssignments)
		v1.GET("/product-assignments/validate", handler.ValidateAssignment)

		v1.POST("/requests", handler.CreateRequest)

		// Protected admin endpoints
		admin := v1.Group("")
		admin.Use(api.AuthMiddleware(), api.AdminMiddleware())
		{
			admin.POST("/sectors", handler.CreateSector)
			admin.PUT("/sectors/:id", handler.UpdateSector)
			admin.DELETE("/sectors/:id", handler.DeleteSector)

			admin.POST("/production-groups", handler.CreateGroup)
			admin.PUT("/production-groups/:id", handler.UpdateGroup)
			admin.DELETE("/production-groups/:id", handler.DeleteGroup)

			admin.POST("/products", handler.CreateProduct)
			admin.PUT("/products/:id", handler.UpdateProduct)
			admin.DELETE("/products/:id", handler.DeleteProduct)

			admin.POST("/product-assignments", handler.CreateAssignment)
			admin.DELETE("/product-assignments", handler.DeleteAssignment)
			admin.DELETE("/product-assignments/:id", handler.DeleteAssignment)

			admin.GET("/requests/:id", handler.GetRequest)
			admin.PUT("/requests/:id/status", handler.TransitionRequest)
			admin.GET("/customers", handler.GetCustomers)

			admin.POST("/catalog/import", handler.ImportWorkbook)
			admin.POST("/catalog/import/remote", handler.ImportRemote)
			admin.DELETE("/catalog/reset", handler.ResetCatalog)
		}
	}

	// Root endpoint for basic info
	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"service": "sample-service",
			"version": "1.0.0",
			"status":  "running",
		})
	})

	return router
}

// corsMiddleware adds CORS headers to allow cross-origin requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
