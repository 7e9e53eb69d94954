package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	playground "github.com/go-playground/validator/v10"

	"github.com/abdulazizuv1/yes-english-center-sub001/internal/services"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/utils"
	"github.com/abdulazizuv1/yes-english-center-sub001/internal/validator"
)

type HandlerManager struct {
	scoringHandler *ScoringHandler
	testHandler    *TestHandler
	resultHandler  *ResultHandler
	logger         utils.Logger
}

func NewHandlerManager(serviceManager services.ServiceManager, logger utils.Logger) *HandlerManager {
	return &HandlerManager{
		scoringHandler: NewScoringHandler(serviceManager.Scoring(), logger),
		testHandler:    NewTestHandler(serviceManager.Test(), logger),
		resultHandler:  NewResultHandler(serviceManager.Result(), serviceManager.Export(), logger),
		logger:         logger,
	}
}

// NewRouter builds the gin engine with middleware and all routes
func (hm *HandlerManager) NewRouter() *gin.Engine {
	// binding tags on request structs may use the custom rules too
	if engine, ok := binding.Validator.Engine().(*playground.Validate); ok {
		validator.RegisterCustomValidators(engine)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.RequestID())
	router.Use(utils.LoggerMiddleware(hm.logger, "/health"))
	router.Use(utils.ContextLogger(hm.logger))

	hm.SetupRoutes(router)
	return router
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Scoring routes
		scoring := v1.Group("/scoring")
		{
			scoring.POST("/preview", hm.scoringHandler.Preview)
			scoring.POST("/bands/overall", hm.scoringHandler.OverallBand)
			scoring.GET("/bands/:module/:correct", hm.scoringHandler.GetBand)
		}

		// Test routes
		tests := v1.Group("/tests")
		{
			tests.POST("", hm.testHandler.CreateTest)
			tests.GET("", hm.testHandler.ListTests)
			tests.GET("/:id", hm.testHandler.GetTest)
			tests.PUT("/:id", hm.testHandler.UpdateTest)
			tests.DELETE("/:id", hm.testHandler.DeleteTest)
		}

		// Result routes
		results := v1.Group("/results")
		{
			results.POST("", hm.resultHandler.SubmitResult)
			results.GET("/:id", hm.resultHandler.GetResult)
			results.GET("/:id/review", hm.resultHandler.ReviewResult)
			results.GET("/:id/export", hm.resultHandler.ExportResult)

			// Student-specific routes
			results.GET("/student/:student_id", hm.resultHandler.GetStudentResults)
			results.GET("/student/:student_id/stats", hm.resultHandler.GetStudentStats)
			results.GET("/student/:student_id/export", hm.resultHandler.ExportStudentResults)
		}
	}
}

// HealthCheck reports that the service is up
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "ielts-scoring-service",
	})
}
