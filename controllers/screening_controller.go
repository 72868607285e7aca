package controllers

import (
	"net/http"

	"spectrumhub/logger"
	"spectrumhub/models"
	"spectrumhub/services"
	"spectrumhub/structs"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Screener runs the questionnaire through every scoring model.
type Screener interface {
	Predict(input models.ScreeningInput) (*models.ScreeningResult, error)
	ModelNames() []string
}

type ScreeningController struct {
	screener Screener
	log      *zap.Logger
}

func NewScreeningController(screener Screener, log *zap.Logger) *ScreeningController {
	return &ScreeningController{screener: screener, log: log}
}

// Models lists the scoring models with their published comparison metrics.
func (s *ScreeningController) Models(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"models":  s.screener.ModelNames(),
		"metrics": services.ModelMetrics(),
	})
}

// Predict scores one questionnaire. Inputs are not stored.
func (s *ScreeningController) Predict(c *gin.Context) {
	var request structs.ScreeningRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondBindingError(c, err)
		return
	}

	result, err := s.screener.Predict(request.ToInput())
	if err != nil {
		logger.FromContext(c, s.log).Error("screening failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to run screening"})
		return
	}

	logger.FromContext(c, s.log).Info("screening completed",
		zap.Int("positiveVotes", result.Summary.PositiveVotes),
		zap.Int("totalModels", result.Summary.TotalModels))
	c.JSON(http.StatusOK, result)
}
