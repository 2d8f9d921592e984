// Package ocr adapta el servicio externo de extracción de comprobantes: recibe
// la URL de la imagen escaneada y devuelve la bolsa de campos fiscales que el
// motor de validación tratará como entrada no confiable.
package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/dto"
	"github.com/CarlosHuyghusrl/facturaia-api/internal/application/review"
	"github.com/CarlosHuyghusrl/facturaia-api/pkg/config"
)

// Verificar en tiempo de compilación que Client implementa review.Extractor.
var _ review.Extractor = (*Client)(nil)

// Client adaptador HTTP del servicio de extracción. Usa net/http; el contrato
// es JSON-in/JSON-out con las mismas claves snake_case que CamposFactura.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient construye el adaptador. Si BaseURL está vacío las llamadas
// devuelven error descriptivo en lugar de panic.
func NewClient(cfg config.OCRConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type extraerRequest struct {
	ImagenURL string `json:"imagen_url"`
}

type extraerResponse struct {
	Campos dto.CamposFactura `json:"campos"`
	Error  string            `json:"error,omitempty"`
}

// Extraer envía la imagen al servicio y devuelve los campos extraídos.
func (c *Client) Extraer(ctx context.Context, imagenURL string) (dto.CamposFactura, error) {
	var zero dto.CamposFactura
	if c.baseURL == "" {
		return zero, fmt.Errorf("ocr: OCR_BASE_URL no configurado")
	}

	body, err := json.Marshal(extraerRequest{ImagenURL: imagenURL})
	if err != nil {
		return zero, fmt.Errorf("ocr: serializar request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("ocr: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("ocr: llamada al servicio: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return zero, fmt.Errorf("ocr: leer respuesta: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return zero, fmt.Errorf("ocr: el servicio respondió %d: %s", resp.StatusCode, truncate(raw, 200))
	}

	var out extraerResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, fmt.Errorf("ocr: respuesta no es JSON válido: %w", err)
	}
	if out.Error != "" {
		return zero, fmt.Errorf("ocr: extracción fallida: %s", out.Error)
	}
	return out.Campos, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "…"
}
