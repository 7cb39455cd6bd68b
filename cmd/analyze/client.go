package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	foodHandler "food-analyzer/internal/api/handlers/food"
	"food-analyzer/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

const apiPrefix = "/api/v1"

// apiClient 呼叫 food analyzer API
type apiClient struct {
	client *resty.Client
}

func newClient(baseURL string, timeout time.Duration) *apiClient {
	return &apiClient{
		client: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/") + apiPrefix).
			SetTimeout(timeout).
			SetHeader("Accept", "application/json"),
	}
}

func (c *apiClient) analyzeURL() string {
	return c.client.BaseURL + "/analyze_food"
}

// Analyze 上傳圖片並回傳分析結果
func (c *apiClient) Analyze(path string) (*foodHandler.AnalyzeResponse, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("no se encontró la imagen en %s: %w", path, err)
	}

	var result foodHandler.AnalyzeResponse
	resp, err := c.client.R().
		SetFile("file", path).
		SetResult(&result).
		Post("/analyze_food")
	if err != nil {
		return nil, fmt.Errorf("no se pudo conectar a la API: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &result, nil
}

// History 取得最近的分析
func (c *apiClient) History(limit int) (*foodHandler.HistoryResponse, error) {
	var result foodHandler.HistoryResponse
	resp, err := c.client.R().
		SetQueryParam("limit", strconv.Itoa(limit)).
		SetResult(&result).
		Get("/history")
	if err != nil {
		return nil, fmt.Errorf("no se pudo conectar a la API: %w", err)
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &result, nil
}

// apiError 將錯誤響應轉為 error
func apiError(resp *resty.Response) error {
	var body common.ErrorResponse
	if err := common.ParseJSONBytes(resp.Body(), &body); err == nil && body.Message != "" {
		return fmt.Errorf("%d %s: %s", resp.StatusCode(), body.Code, body.Message)
	}
	return fmt.Errorf("%d: %s", resp.StatusCode(), strings.TrimSpace(string(resp.Body())))
}

func printAnalysis(w io.Writer, r *foodHandler.AnalyzeResponse) {
	fmt.Fprintf(w, "✅ Respuesta exitosa! (id %d)\n\n", r.ID)
	fmt.Fprintf(w, "🍽️  Plato: %s\n\n", r.NombrePlato)

	fmt.Fprintln(w, "📝 Ingredientes:")
	for _, ing := range r.Receta.Ingredientes {
		fmt.Fprintf(w, "   • %s\n", ing)
	}

	fmt.Fprintln(w, "\n👨‍🍳 Pasos de preparación:")
	for i, paso := range r.Receta.Pasos {
		fmt.Fprintf(w, "   %d. %s\n", i+1, paso)
	}

	fmt.Fprintln(w, "\n💡 Datos curiosos:")
	for _, dato := range r.DatosCuriosos {
		fmt.Fprintf(w, "   • %s\n", dato)
	}
}

func printHistory(w io.Writer, r *foodHandler.HistoryResponse) {
	if r.Count == 0 {
		fmt.Fprintln(w, "Sin análisis guardados")
		return
	}
	for _, a := range r.History {
		fmt.Fprintf(w, "#%d  %s  %s  (%s)\n",
			a.ID,
			a.CreatedAt.Local().Format("2006-01-02 15:04"),
			a.DishName,
			common.StringSliceToString(a.Ingredients),
		)
	}
}
