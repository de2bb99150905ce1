package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// PrinterService pushes receipt text to the thermal printer bridge, a
// small HTTP daemon next to the printer.
type PrinterService struct {
	client  *http.Client
	baseURL string
}

type printRequest struct {
	Text   string `json:"text"`
	Copies int    `json:"copies"`
}

type printResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func NewPrinterService(baseURL string) *PrinterService {
	return &PrinterService{
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: baseURL,
	}
}

func (s *PrinterService) Print(ctx context.Context, text string) error {
	jsonData, err := json.Marshal(printRequest{Text: text, Copies: 1})
	if err != nil {
		return fmt.Errorf("failed to marshal print request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/print-receipt", bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send print request: %w", err)
	}
	defer resp.Body.Close()

	var pr printResponse
	if err := json.NewDecoder(resp.Body).Decode(&pr); err != nil {
		return fmt.Errorf("failed to decode print response: %w", err)
	}
	if !pr.Success {
		return fmt.Errorf("print failed: %s", pr.Message)
	}
	return nil
}
