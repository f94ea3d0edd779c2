package kma

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/observability"
)

// Provider result codes.
const (
	resultOK     = "00"
	resultNoData = "03"
)

const maxBodyBytes = 1 << 20

// Client implements domain.ObservationSource against the KMA ultra
// short-term nowcast endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	dataType   string
	clock      clockwork.Clock
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a KMA nowcast client. dataType is XML or JSON.
func NewClient(baseURL string, timeout time.Duration, dataType string, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:  baseURL,
		dataType: dataType,
		clock:    clockwork.NewRealClock(),
		metrics:  metrics,
		logger:   logger,
	}
}

// Observe fetches the latest nowcast for a grid cell. A NO_DATA answer for
// the current base time is retried once against the previous base time.
func (c *Client) Observe(ctx context.Context, serviceKey string, gridX, gridY int) (domain.WeatherObservation, error) {
	slot := domain.LatestBaseSlot(c.clock.Now())

	obs, err := c.fetch(ctx, serviceKey, slot, gridX, gridY)
	if domain.FallbackReasonOf(err) != domain.ReasonNoData {
		return obs, err
	}

	prev := slot.Previous()
	c.metrics.WeatherRetries.Inc()
	c.logger.Debug("no data for base time, retrying previous",
		"base", slot.String(),
		"retry_base", prev.String(),
		"grid_x", gridX,
		"grid_y", gridY,
	)
	return c.fetch(ctx, serviceKey, prev, gridX, gridY)
}

func (c *Client) fetch(ctx context.Context, serviceKey string, slot domain.BaseSlot, gridX, gridY int) (domain.WeatherObservation, error) {
	params := url.Values{
		"serviceKey": {normalizeServiceKey(serviceKey)},
		"pageNo":     {"1"},
		"numOfRows":  {"10"},
		"dataType":   {c.dataType},
		"base_date":  {slot.BaseDate()},
		"base_time":  {slot.BaseTime()},
		"nx":         {strconv.Itoa(gridX)},
		"ny":         {strconv.Itoa(gridY)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return domain.WeatherObservation{}, &domain.FetchError{Reason: domain.ReasonTransport, Err: fmt.Errorf("create request: %w", err)}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.WeatherAPIDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return domain.WeatherObservation{}, &domain.FetchError{Reason: domain.ReasonTransport, Err: fmt.Errorf("nowcast request: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.WeatherObservation{}, &domain.FetchError{Reason: domain.ReasonTransport, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return domain.WeatherObservation{}, &domain.FetchError{
			Reason: domain.ReasonHTTPStatus,
			Code:   strconv.Itoa(resp.StatusCode),
			Err:    fmt.Errorf("KMA API error: status %d: %s", resp.StatusCode, truncate(body, 200)),
		}
	}

	items, err := decodeResponse(body)
	if err != nil {
		return domain.WeatherObservation{}, err
	}
	return domain.NewObservation(items, slot, gridX, gridY), nil
}

// decodeResponse accepts either wire format regardless of the requested
// one; the gateway answers errors in XML even for JSON requests.
func decodeResponse(body []byte) ([]domain.ObservationItem, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, &domain.FetchError{Reason: domain.ReasonMalformed, Err: errors.New("empty response body")}
	}

	var (
		h     header
		items []domain.ObservationItem
		err   error
	)
	if body[0] == '<' {
		h, items, err = decodeXML(body)
	} else {
		h, items, err = decodeJSON(body)
	}
	if err != nil {
		return nil, &domain.FetchError{Reason: domain.ReasonMalformed, Err: err}
	}

	switch h.ResultCode {
	case resultOK:
		return items, nil
	case resultNoData:
		return nil, &domain.FetchError{Reason: domain.ReasonNoData, Code: resultNoData, Err: errors.New(orDefault(h.ResultMsg, "NO_DATA"))}
	case "":
		return nil, &domain.FetchError{Reason: domain.ReasonResultCode, Err: errors.New(orDefault(h.ResultMsg, "missing result code"))}
	default:
		return nil, &domain.FetchError{Reason: domain.ReasonResultCode, Code: h.ResultCode, Err: errors.New(orDefault(h.ResultMsg, "unexpected result code"))}
	}
}

// KMA API response types.

type header struct {
	ResultCode string `xml:"resultCode" json:"resultCode"`
	ResultMsg  string `xml:"resultMsg" json:"resultMsg"`
}

type xmlResponse struct {
	XMLName xml.Name
	Header  header `xml:"header"`
	Body    struct {
		Items []struct {
			Category  string `xml:"category"`
			ObsrValue string `xml:"obsrValue"`
		} `xml:"items>item"`
	} `xml:"body"`
	// Gateway-level failures (bad key, quota) use a different envelope.
	Gateway struct {
		ErrMsg           string `xml:"errMsg"`
		ReturnAuthMsg    string `xml:"returnAuthMsg"`
		ReturnReasonCode string `xml:"returnReasonCode"`
	} `xml:"cmmMsgHeader"`
}

func decodeXML(body []byte) (header, []domain.ObservationItem, error) {
	var r xmlResponse
	if err := xml.Unmarshal(body, &r); err != nil {
		return header{}, nil, fmt.Errorf("decode XML: %w", err)
	}
	if r.Header.ResultCode == "" && r.Gateway.ReturnReasonCode != "" {
		// Not a result code of the nowcast service; surface the gateway
		// reason in the message only.
		return header{ResultMsg: fmt.Sprintf("gateway %s: %s", r.Gateway.ReturnReasonCode, orDefault(r.Gateway.ReturnAuthMsg, r.Gateway.ErrMsg))}, nil, nil
	}

	items := make([]domain.ObservationItem, 0, len(r.Body.Items))
	for _, it := range r.Body.Items {
		items = append(items, domain.ObservationItem{Category: it.Category, Value: it.ObsrValue})
	}
	return r.Header, items, nil
}

type jsonResponse struct {
	Response struct {
		Header header `json:"header"`
		Body   struct {
			// Items is "" when there is no data, an object otherwise.
			Items json.RawMessage `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type jsonItems struct {
	Item []struct {
		Category  string     `json:"category"`
		ObsrValue flexString `json:"obsrValue"`
	} `json:"item"`
}

func decodeJSON(body []byte) (header, []domain.ObservationItem, error) {
	var r jsonResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return header{}, nil, fmt.Errorf("decode JSON: %w", err)
	}
	h := r.Response.Header
	if h.ResultCode != resultOK {
		return h, nil, nil
	}

	raw := bytes.TrimSpace(r.Response.Body.Items)
	if len(raw) == 0 || raw[0] != '{' {
		return h, nil, nil
	}
	var its jsonItems
	if err := json.Unmarshal(raw, &its); err != nil {
		return header{}, nil, fmt.Errorf("decode JSON items: %w", err)
	}

	items := make([]domain.ObservationItem, 0, len(its.Item))
	for _, it := range its.Item {
		items = append(items, domain.ObservationItem{Category: it.Category, Value: string(it.ObsrValue)})
	}
	return h, items, nil
}

// flexString accepts a JSON string or number.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

// normalizeServiceKey accepts both the encoded and decoded forms of a
// portal key; the query encoder applies the encoding exactly once.
func normalizeServiceKey(key string) string {
	key = strings.TrimSpace(key)
	if !strings.Contains(key, "%") {
		return key
	}
	if decoded, err := url.QueryUnescape(key); err == nil {
		return decoded
	}
	return key
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
