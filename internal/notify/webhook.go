package notify

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// WebhookSink отправляет намерения уведомлений POST-запросом на внешний адрес
// (например, шлюз push-уведомлений). Доставка — best-effort: ошибки пишутся
// в журнал и не прерывают работу планировщика.
type WebhookSink struct {
	url    string
	client *retryablehttp.Client
	logger *zap.SugaredLogger
}

// NewWebhookSink создаёт приёмник уведомлений для указанного адреса.
func NewWebhookSink(url string, logger *zap.SugaredLogger) *WebhookSink {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = "http://" + url
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.HTTPClient.Timeout = 5 * time.Second
	client.Logger = nil

	return &WebhookSink{
		url:    url,
		client: client,
		logger: logger,
	}
}

// Present отправляет уведомление на настроенный адрес.
func (s *WebhookSink) Present(intent Intent) {
	payload, err := json.Marshal(intent)
	if err != nil {
		s.warn("marshal notification", err)
		return
	}

	req, err := retryablehttp.NewRequest(http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		s.warn("create notification request", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.warn("deliver notification", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		if s.logger != nil {
			s.logger.Warnw("notification endpoint rejected intent", "status", resp.StatusCode)
		}
	}
}

func (s *WebhookSink) warn(msg string, err error) {
	if s.logger != nil {
		s.logger.Warnw(msg, "error", err.Error())
	}
}
