// Package prediction calls the external specialist-prediction service.
package prediction

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	httpclient "doctor-ranking/internal/common/http"
	"doctor-ranking/internal/common/logger"
	"doctor-ranking/internal/models"
)

var (
	ErrPredictionFailed  = errors.New("PREDICTION_SERVICE_FAILED")
	ErrPredictionTimeout = errors.New("PREDICTION_TIMEOUT")
)

const (
	DefaultPath    = "/predict"
	DefaultTimeout = 10 * time.Second
)

type Config struct {
	BaseURL string
	Path    string
	APIKey  string
	Timeout time.Duration
}

type Client struct {
	config Config
	http   *httpclient.Client
	logger logger.Logger
}

type predictRequest struct {
	Symptoms models.Symptoms `json:"symptoms"`
}

func NewClient(config Config, log logger.Logger) *Client {
	if config.Path == "" {
		config.Path = DefaultPath
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	return &Client{
		config: config,
		http:   httpclient.NewClient(config.Timeout),
		logger: log.WithFields(map[string]interface{}{"component": "prediction"}),
	}
}

// Predict posts the normalized symptoms and decodes the prediction. A response without
// diagnoses decodes to an empty list.
func (c *Client) Predict(ctx context.Context, symptoms models.Symptoms) (*models.Prediction, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	headers := map[string]string{}
	if c.config.APIKey != "" {
		headers["api-key"] = c.config.APIKey
	}

	var out models.Prediction
	err := c.http.PostJSON(ctx, c.config.BaseURL+c.config.Path, headers, predictRequest{Symptoms: symptoms}, &out)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, ErrPredictionTimeout
		}
		var status *httpclient.StatusError
		if errors.As(err, &status) {
			c.logger.Warn("prediction service rejected request", map[string]interface{}{
				"status": status.StatusCode,
			})
		}
		return nil, fmt.Errorf("%w: %v", ErrPredictionFailed, err)
	}

	if out.Diagnoses == nil {
		out.Diagnoses = []models.Diagnosis{}
	}
	c.logger.Debug("prediction received", map[string]interface{}{
		"predictedSpecialist": out.PredictedSpecialist,
		"diagnoses":           len(out.Diagnoses),
		"suggestedDiseases":   len(out.SuggestedDiseases),
	})
	return &out, nil
}
