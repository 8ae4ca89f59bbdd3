package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/crypto-identifier/internal/models"
)

var (
	ErrClassifierStatus = errors.New("classifier returned non-success status")
	ErrInvalidResponse  = errors.New("classifier response is not a prediction object")
)

// uploadField is the multipart field the classifier reads the ciphertext from.
const uploadField = "file"

type ClassifierService interface {
	Predict(ctx context.Context, fileName string, content []byte) (*models.ClassifierResponse, error)
	Ping(ctx context.Context) error
}

type classifierService struct {
	baseURL    string
	predictURL string
	timeout    time.Duration
}

func NewClassifierService(baseURL, predictURL string, timeout time.Duration) ClassifierService {
	return &classifierService{
		baseURL:    strings.TrimRight(baseURL, "/"),
		predictURL: predictURL,
		timeout:    timeout,
	}
}

type agentResult struct {
	code int
	body []byte
	errs []error
}

// Predict posts the ciphertext as multipart form data and decodes the prediction.
func (c *classifierService) Predict(ctx context.Context, fileName string, content []byte) (*models.ClassifierResponse, error) {
	agent := fiber.Post(c.predictURL).
		FileData(&fiber.FormFile{
			Fieldname: uploadField,
			Name:      fileName,
			Content:   content,
		}).
		MultipartForm(nil)

	result, err := c.do(ctx, agent)
	if err != nil {
		return nil, fmt.Errorf("failed to call classifier: %w", err)
	}

	if result.code < 200 || result.code > 299 {
		return nil, fmt.Errorf("%w: %d", ErrClassifierStatus, result.code)
	}

	resp, err := decodePrediction(result.body)
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// Ping checks that the classifier's root endpoint answers with a 2xx.
func (c *classifierService) Ping(ctx context.Context) error {
	result, err := c.do(ctx, fiber.Get(c.baseURL+"/"))
	if err != nil {
		return fmt.Errorf("failed to reach classifier: %w", err)
	}
	if result.code < 200 || result.code > 299 {
		return fmt.Errorf("%w: %d", ErrClassifierStatus, result.code)
	}
	return nil
}

// do runs the agent with the configured timeout, abandoning the call if ctx ends first.
func (c *classifierService) do(ctx context.Context, agent *fiber.Agent) (*agentResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout || timeout <= 0 {
			timeout = remaining
		}
	}
	if timeout > 0 {
		agent.Timeout(timeout)
	}

	done := make(chan agentResult, 1)
	go func() {
		code, body, errs := agent.Bytes()
		done <- agentResult{code: code, body: body, errs: errs}
	}()

	select {
	case <-ctx.Done():
		log.Printf("⚠️  Classifier call abandoned: %v\n", ctx.Err())
		return nil, ctx.Err()
	case res := <-done:
		if len(res.errs) > 0 {
			return nil, errors.Join(res.errs...)
		}
		return &res, nil
	}
}

func decodePrediction(body []byte) (*models.ClassifierResponse, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrInvalidResponse
	}

	var resp models.ClassifierResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &resp, nil
}
