package odido

import (
	"context"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/oyaguma3/odido-bridge/internal/config"
)

// createTokenRequestJSON はcreatetokenリクエストのボディ。
type createTokenRequestJSON struct {
	AuthorizationCode string `json:"AuthorizationCode"`
}

// GenerateAccessToken は認可コードをBearerトークンに交換する。
// 認証前に呼ばれるためクライアントインスタンスを必要としない。
// このエンドポイントは非標準で、成功（Accesstoken）もエラー（ErrorCode/ErrorText）も
// レスポンスボディではなくヘッダで通知する。
func GenerateAccessToken(ctx context.Context, baseURL, authorizationCode string) (string, error) {
	httpClient := resty.New().
		SetTimeout(config.CAPIRequestTimeout)

	resp, err := httpClient.R().
		SetContext(ctx).
		SetHeader("accept", createTokenAccept).
		SetHeader("authorization", createTokenAuthorization).
		SetHeader("grant_type", createTokenGrantType).
		SetBody(createTokenRequestJSON{AuthorizationCode: authorizationCode}).
		Post(strings.TrimRight(baseURL, "/") + "/createtoken")

	if err != nil {
		return "", &ConnectionError{Cause: err}
	}

	if code := resp.Header().Get(headerErrorCode); code != "" {
		text := resp.Header().Get(headerErrorText)
		slog.Error("access token generation failed",
			"event_id", "TOKEN_ERR",
			"error_code", code,
			"error_text", text,
			"http_status", resp.StatusCode(),
		)
		return "", &BusinessError{Code: code, Text: text}
	}

	token := resp.Header().Get(headerAccessToken)
	if token == "" {
		return "", ErrInvalidResponse
	}

	slog.Info("access token generated",
		"event_id", "TOKEN_OK",
		"http_status", resp.StatusCode(),
	)

	return token, nil
}
