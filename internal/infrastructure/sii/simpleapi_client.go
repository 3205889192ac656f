package sii

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/miposra/pos-api/internal/application/dte"
)

var _ dte.Signer = (*SimpleAPIClient)(nil)

// SimpleAPIClient implementa dte.Signer contra el firmador SimpleAPI
// (https://api.simpleapi.cl). El servicio recibe el certificado digital del
// emisor, el CAF vigente y el JSON del documento; devuelve el DTE firmado con
// su TED (timbre electrónico).
type SimpleAPIClient struct {
	httpClient *http.Client
	apiURL     string
	apiKey     string
	certPath   string
}

// NewSimpleAPIClient construye el cliente. El timeout es generoso: la firma
// más el timbraje en el SII pueden tardar varios segundos.
func NewSimpleAPIClient(apiURL, apiKey, certPath string) *SimpleAPIClient {
	// Las API keys pegadas desde .env suelen arrastrar comillas.
	apiKey = strings.Trim(strings.TrimSpace(apiKey), `'"`)
	return &SimpleAPIClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiURL:     apiURL,
		apiKey:     apiKey,
		certPath:   certPath,
	}
}

// signResponse cuerpo de respuesta de SimpleAPI. Según la versión del servicio
// el timbre llega en TED o en Timbre.
type signResponse struct {
	Folio  int64  `json:"Folio"`
	TED    string `json:"TED"`
	Timbre string `json:"Timbre"`
	XML    string `json:"XML"`
}

// Sign envía el documento al firmador como multipart:
//
//	files  = certificado digital .pfx
//	files2 = CAF vigente (byte a byte, tal como lo entregó el SII)
//	input  = JSON del documento y credenciales del certificado
func (c *SimpleAPIClient) Sign(ctx context.Context, boleta *dte.BoletaRequest, cafXML string) (*dte.SignResult, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("simpleapi: falta la API key")
	}
	certBytes, err := os.ReadFile(c.certPath)
	if err != nil {
		return nil, fmt.Errorf("simpleapi: leer certificado %s: %w", c.certPath, err)
	}
	inputJSON, err := json.Marshal(boleta)
	if err != nil {
		return nil, fmt.Errorf("simpleapi: serializar documento: %w", err)
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	certPart, err := w.CreateFormFile("files", filepath.Base(c.certPath))
	if err != nil {
		return nil, fmt.Errorf("simpleapi: armar multipart: %w", err)
	}
	if _, err := certPart.Write(certBytes); err != nil {
		return nil, fmt.Errorf("simpleapi: armar multipart: %w", err)
	}

	cafPart, err := w.CreateFormFile("files2", "caf.xml")
	if err != nil {
		return nil, fmt.Errorf("simpleapi: armar multipart: %w", err)
	}
	if _, err := cafPart.Write([]byte(cafXML)); err != nil {
		return nil, fmt.Errorf("simpleapi: armar multipart: %w", err)
	}

	if err := w.WriteField("input", string(inputJSON)); err != nil {
		return nil, fmt.Errorf("simpleapi: armar multipart: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("simpleapi: armar multipart: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, &body)
	if err != nil {
		return nil, fmt.Errorf("simpleapi: crear request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("simpleapi: enviar documento: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("simpleapi: leer respuesta: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("simpleapi: HTTP %d: %s", resp.StatusCode, truncate(string(respBody), 500))
	}

	var out signResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("simpleapi: respuesta no es JSON: %w", err)
	}
	timbre := out.TED
	if timbre == "" {
		timbre = out.Timbre
	}
	return &dte.SignResult{
		Folio:  out.Folio,
		Timbre: timbre,
		XML:    out.XML,
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
