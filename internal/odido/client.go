package odido

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/oyaguma3/odido-bridge/internal/config"
	"github.com/oyaguma3/odido-bridge/internal/model"
	"github.com/sony/gobreaker"
)

// Client はOdido APIクライアントの実装
type Client struct {
	httpClient *resty.Client
	cb         *gobreaker.CircuitBreaker
	baseURL    string
	buyingCode string
}

// NewClient は新しいOdido APIクライアントを生成する。
// Bearerトークンはクライアント生成時に一度だけ設定し、呼び出しごとには指定しない。
func NewClient(cfg *config.Config, accessToken string) *Client {
	httpClient := resty.New().
		SetTimeout(config.CAPIRequestTimeout).
		SetHeader(HeaderAccept, ContentTypeJSON).
		SetAuthToken(accessToken).
		SetRetryCount(config.CAPIRetryCount).
		SetRetryWaitTime(config.CAPIRetryWaitTime).
		SetRetryMaxWaitTime(config.CAPIRetryMaxWaitTime)

	// 自動リトライは冪等なGETに限定する
	httpClient.AddRetryCondition(func(r *resty.Response, err error) bool {
		if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
			return false
		}
		return err != nil || r.StatusCode() >= 500
	})

	cbSettings := gobreaker.Settings{
		Name:        config.CBName,
		MaxRequests: config.CBMaxRequests,
		Interval:    config.CBInterval,
		Timeout:     config.CBTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(config.CBFailureThreshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				slog.Warn("circuit breaker opened",
					"event_id", "CB_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateHalfOpen:
				slog.Info("circuit breaker half-open",
					"event_id", "CB_HALF_OPEN",
					"cb_name", name,
				)
			case gobreaker.StateClosed:
				slog.Info("circuit breaker closed",
					"event_id", "CB_CLOSE",
					"cb_name", name,
				)
			}
		},
	}

	return &Client{
		httpClient: httpClient,
		cb:         gobreaker.NewCircuitBreaker(cbSettings),
		baseURL:    strings.TrimRight(cfg.APIBaseURL, "/"),
		buyingCode: cfg.BuyingCode,
	}
}

// Account はGET /account/current のレスポンスを返す。
// セットアップ時のトークン検証に使用する。ボディにErrorCodeが含まれる場合は
// BusinessErrorを返す。
func (c *Client) Account(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.get(ctx, c.baseURL+"/account/current")
	if err != nil {
		return nil, err
	}

	if bizErr := businessMarker(resp.Body()); bizErr != nil {
		return nil, bizErr
	}

	return json.RawMessage(resp.Body()), nil
}

// Subscriptions はリンク済みサブスクリプション一覧を取得してデコードする。
// リソース一覧の取得 → 先頭リソースURLの取得 → 各要素のデコード、の順に進む。
func (c *Client) Subscriptions(ctx context.Context) ([]model.Subscription, error) {
	resp, err := c.get(ctx, c.baseURL+"/account/current?resourcelabel=LinkedSubscriptions")
	if err != nil {
		return nil, err
	}

	var resources resourceListJSON
	if err := json.Unmarshal(resp.Body(), &resources); err != nil {
		return nil, NewDecodeError("Resources", err)
	}
	if len(resources.Resources) == 0 {
		return nil, ErrMissingResources
	}

	listResp, err := c.get(ctx, resources.Resources[0].URL)
	if err != nil {
		return nil, err
	}

	var list subscriptionListJSON
	if err := json.Unmarshal(listResp.Body(), &list); err != nil {
		return nil, NewDecodeError("subscriptions", err)
	}

	subscriptions := make([]model.Subscription, 0, len(list.Subscriptions))
	for _, item := range list.Subscriptions {
		sub, err := DecodeSubscription(item)
		if err != nil {
			return nil, err
		}
		subscriptions = append(subscriptions, sub)
	}

	return subscriptions, nil
}

// SubscriptionDetail は {subscription_url}/{detailType} のレスポンスボディを返す。
func (c *Client) SubscriptionDetail(ctx context.Context, sub model.Subscription, detailType string) (json.RawMessage, error) {
	resp, err := c.get(ctx, sub.SubscriptionURL+"/"+detailType)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(resp.Body()), nil
}

// BuyBundle はPOST {subscription_url}/roamingbundles でバンドルを購入する。
// 成功はステータス202。購入拒否理由付きの非202はBusinessErrorとして返す。
func (c *Client) BuyBundle(ctx context.Context, subscriptionURL, buyingCode string) (json.RawMessage, error) {
	if buyingCode == "" {
		buyingCode = c.buyingCode
	}

	start := time.Now()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader(HeaderContentType, ContentTypeJSON).
		SetBody(purchaseRequestJSON{
			Bundles: []purchaseBundleJSON{{BuyingCode: buyingCode}},
		}).
		Post(subscriptionURL + "/" + DetailTypeRoamingBundles)

	if err != nil {
		return nil, &ConnectionError{Cause: err}
	}

	latencyMs := time.Since(start).Milliseconds()

	if resp.StatusCode() != http.StatusAccepted {
		// Odidoは購入不可をHTTPステータスではなく理由文字列で通知する
		if strings.Contains(resp.Status(), purchaseRejectReason) ||
			strings.Contains(string(resp.Body()), purchaseRejectReason) {
			slog.Warn("bundle purchase rejected",
				"event_id", "BUY_REJECTED",
				"http_status", resp.StatusCode(),
				"buying_code", buyingCode,
				"latency_ms", latencyMs,
			)
			return nil, &BusinessError{Code: "BuyingCodeNotAvailable", Text: purchaseRejectReason}
		}
		return nil, &StatusError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
	}

	slog.Info("bundle purchased",
		"event_id", "BUY_OK",
		"buying_code", buyingCode,
		"latency_ms", latencyMs,
	)

	return json.RawMessage(resp.Body()), nil
}

// get はCircuit Breaker配下でGETリクエストを実行する。
// 5xxと通信エラーのみCB失敗としてカウントする。
func (c *Client) get(ctx context.Context, url string) (*resty.Response, error) {
	start := time.Now()

	result, err := c.cb.Execute(func() (any, error) {
		resp, err := c.httpClient.R().
			SetContext(ctx).
			Get(url)

		if err != nil {
			return nil, &ConnectionError{Cause: err}
		}

		latencyMs := time.Since(start).Milliseconds()
		statusCode := resp.StatusCode()

		if statusCode >= 500 {
			apiErr := &StatusError{StatusCode: statusCode, Body: string(resp.Body())}
			slog.Error("odido api error",
				"event_id", "CAPI_ERR",
				"error", apiErr.Error(),
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			return nil, apiErr
		}

		if statusCode != http.StatusOK {
			apiErr := &StatusError{StatusCode: statusCode, Body: string(resp.Body())}
			slog.Error("odido api error",
				"event_id", "CAPI_ERR",
				"error", apiErr.Error(),
				"http_status", statusCode,
				"latency_ms", latencyMs,
			)
			// 4xxはCBカウントに含めない
			return apiErr, nil
		}

		slog.Debug("odido api success",
			"latency_ms", latencyMs,
		)

		return resp, nil
	})

	if err != nil {
		if err == gobreaker.ErrOpenState || err == gobreaker.ErrTooManyRequests {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}

	if apiErr, ok := result.(*StatusError); ok {
		return nil, apiErr
	}

	resp, ok := result.(*resty.Response)
	if !ok {
		return nil, ErrInvalidResponse
	}

	return resp, nil
}

// businessMarker はボディにErrorCodeマーカーが含まれる場合にBusinessErrorを返す。
func businessMarker(body []byte) *BusinessError {
	var marker struct {
		ErrorCode *string `json:"ErrorCode"`
		ErrorText *string `json:"ErrorText"`
	}
	if err := json.Unmarshal(body, &marker); err != nil {
		return nil
	}
	if marker.ErrorCode == nil {
		return nil
	}
	bizErr := &BusinessError{Code: *marker.ErrorCode}
	if marker.ErrorText != nil {
		bizErr.Text = *marker.ErrorText
	}
	return bizErr
}
