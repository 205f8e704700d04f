package bitrix

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// WorkflowClient запускает бизнес-процесс расформирования через
// bizproc.workflow.start. Один вызов — один POST; повторов нет, решение о
// повторе и тексте для пользователя остаётся за обработчиком.
type WorkflowClient struct {
	baseURL    string
	templateID string
	httpClient *http.Client
}

func NewWorkflowClient(baseURL, templateID string) *WorkflowClient {
	return &WorkflowClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		templateID: templateID,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// Start запускает шаблон бизнес-процесса для сделки. date и chls уходят в
// параметры шаблона как есть: для целого автовоза date заполнена, chls
// пустой; для одного автомобиля наоборот.
func (c *WorkflowClient) Start(ctx context.Context, dealID, operatorID int64, date, chls string) error {
	deal := strconv.FormatInt(dealID, 10)

	form := url.Values{}
	form.Set("TEMPLATE_ID", c.templateID)
	form.Set("DOCUMENT_ID[0]", "crm")
	form.Set("DOCUMENT_ID[1]", "CCrmDocumentDeal")
	form.Set("DOCUMENT_ID[2]", "D_"+deal)
	form.Set("PARAMETERS[deal]", deal)
	form.Set("PARAMETERS[user]", strconv.FormatInt(operatorID, 10))
	form.Set("PARAMETERS[date]", date)
	form.Set("PARAMETERS[chls]", chls)

	endpoint := c.baseURL + "/bizproc.workflow.start/"

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build workflow request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	slog.Info("starting bitrix workflow", "deal", deal, "operator", operatorID, "date", date, "chls", chls)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		slog.Error("workflow request failed", "deal", deal, "error", err)
		return fmt.Errorf("workflow request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read workflow response: %w", err)
	}

	if resp.StatusCode >= 300 {
		slog.Error("workflow returned bad status", "deal", deal, "status", resp.StatusCode, "body", string(body))
		return fmt.Errorf("workflow returned status %d", resp.StatusCode)
	}

	var result struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		slog.Error("workflow response is not json", "deal", deal, "body", string(body))
		return fmt.Errorf("failed to decode workflow response: %w", err)
	}
	if result.Error != "" {
		slog.Error("workflow rejected", "deal", deal, "error", result.Error, "description", result.ErrorDescription)
		return fmt.Errorf("workflow rejected: %s", result.Error)
	}

	slog.Info("workflow started", "deal", deal)
	return nil
}
