// Package server はホスト境界となるHTTPサーバーを提供する。
package server

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oyaguma3/odido-bridge/internal/action"
	"github.com/oyaguma3/odido-bridge/internal/config"
	"github.com/oyaguma3/odido-bridge/internal/coordinator"
	"github.com/oyaguma3/odido-bridge/internal/odido"
	"github.com/oyaguma3/odido-bridge/internal/registry"
	"github.com/oyaguma3/odido-bridge/internal/sensor"
	"github.com/oyaguma3/odido-bridge/internal/store"
	"github.com/oyaguma3/odido-bridge/pkg/apperr"
	"github.com/oyaguma3/odido-bridge/pkg/httputil"
	"github.com/oyaguma3/odido-bridge/pkg/logging"
)

// Handler はブリッジAPIのHTTPハンドラー。
type Handler struct {
	cfg     *config.Config
	coord   *coordinator.Coordinator
	reg     *registry.Registry
	sensors *sensor.Manager
	actions *action.Handler
	tokens  *store.TokenStore
	fields  *logging.CommonFields
}

// NewHandler は新しいHandlerを生成する。
func NewHandler(
	cfg *config.Config,
	coord *coordinator.Coordinator,
	reg *registry.Registry,
	sensors *sensor.Manager,
	actions *action.Handler,
	tokens *store.TokenStore,
	fields *logging.CommonFields,
) *Handler {
	if fields == nil {
		fields = logging.NewCommonFields(nil)
	}
	return &Handler{
		cfg:     cfg,
		coord:   coord,
		reg:     reg,
		sensors: sensors,
		actions: actions,
		tokens:  tokens,
		fields:  fields,
	}
}

// healthResponse はGET /health のレスポンス。
type healthResponse struct {
	Status        string    `json:"status"`
	State         string    `json:"state"`
	LastRefresh   time.Time `json:"last_refresh"`
	LastError     string    `json:"last_error,omitempty"`
	Subscriptions int       `json:"subscriptions"`
}

// HandleHealth はGET /health のハンドラー。
func (h *Handler) HandleHealth(c *gin.Context) {
	resp := healthResponse{
		Status:      "ok",
		State:       string(h.coord.State()),
		LastRefresh: h.coord.LastRefresh(),
	}

	if snap := h.coord.Snapshot(); snap != nil {
		resp.Subscriptions = snap.Len()
	}
	if err := h.coord.LastError(); err != nil {
		resp.LastError = err.Error()
	}

	c.JSON(http.StatusOK, resp)
}

// HandleDevices はGET /api/v1/devices のハンドラー。
func (h *Handler) HandleDevices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"devices": h.reg.Devices()})
}

// HandleDeviceSensors はGET /api/v1/devices/:id/sensors のハンドラー。
func (h *Handler) HandleDeviceSensors(c *gin.Context) {
	views, err := h.sensors.ViewsForDevice(c.Param("id"))
	if err != nil {
		httputil.WriteError(c, httputil.NotFound("Unknown device id"))
		return
	}

	h.writeReadings(c, views)
}

// HandleSensors はGET /api/v1/sensors のハンドラー。
func (h *Handler) HandleSensors(c *gin.Context) {
	h.writeReadings(c, h.sensors.AllViews())
}

// writeReadings はビュー一覧を評価してJSONで返す。
func (h *Handler) writeReadings(c *gin.Context, views []*sensor.View) {
	readings := make([]sensor.Reading, 0, len(views))
	for _, view := range views {
		reading, err := view.Read()
		if err != nil {
			if errors.Is(err, apperr.ErrSnapshotNotReady) {
				httputil.WriteError(c, httputil.ServiceUnavailable("First refresh has not completed yet"))
				return
			}
			// 古いデバイスのMSISDNがスナップショットから消えた場合はスキップ
			slog.Debug("stale sensor view skipped",
				h.fields.WithMSISDN(view.MSISDN),
				logging.WithError(err),
			)
			continue
		}
		readings = append(readings, reading)
	}

	c.JSON(http.StatusOK, gin.H{"sensors": readings})
}

// HandleRefresh はPOST /api/v1/refresh のハンドラー。
// 強制リフレッシュはタイマー起点のサイクルと直列化される。
func (h *Handler) HandleRefresh(c *gin.Context) {
	if err := h.coord.Refresh(c.Request.Context()); err != nil {
		h.writeUpstreamError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"state":         string(h.coord.State()),
		"subscriptions": h.coord.Snapshot().Len(),
	})
}

// buyBundleRequest はPOST /api/v1/actions/buy_bundle のリクエスト。
type buyBundleRequest struct {
	DeviceID   string `json:"device_id" binding:"required"`
	BuyingCode string `json:"buying_code"`
}

// HandleBuyBundle はPOST /api/v1/actions/buy_bundle のハンドラー。
func (h *Handler) HandleBuyBundle(c *gin.Context) {
	var req buyBundleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.WriteError(c, httputil.BadRequest("Invalid request body"))
		return
	}

	body, err := h.actions.BuyBundle(c.Request.Context(), req.DeviceID, req.BuyingCode)
	if err != nil {
		var purchaseErr *apperr.PurchaseError
		switch {
		case errors.Is(err, apperr.ErrNoMatchingDevice):
			httputil.WriteError(c, httputil.NotFound("No matching sensor for device id"))
		case errors.As(err, &purchaseErr):
			httputil.WriteError(c, httputil.UnprocessableEntity(
				"The buying code was rejected by Odido").WithCode(purchaseErr.Code))
		default:
			h.writeUpstreamError(c, err)
		}
		return
	}

	c.Data(http.StatusAccepted, "application/json", body)
}

// tokenRequest はPOST /api/v1/token のリクエスト。
type tokenRequest struct {
	AuthorizationCode string `json:"authorization_code" binding:"required"`
}

// HandleToken はPOST /api/v1/token のハンドラー。
// 認可コードをBearerトークンに交換して保存する。交換後のトークンは
// 次回起動時のクライアント生成から使われる。
func (h *Handler) HandleToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.WriteError(c, httputil.BadRequest("Invalid request body"))
		return
	}

	token, err := odido.GenerateAccessToken(c.Request.Context(), h.cfg.APIBaseURL, req.AuthorizationCode)
	if err != nil {
		var bizErr *odido.BusinessError
		if errors.As(err, &bizErr) {
			httputil.WriteError(c, httputil.Unauthorized(
				"Odido rejected the authorization code").WithCode(bizErr.Code))
			return
		}
		h.writeUpstreamError(c, err)
		return
	}

	if err := h.tokens.Save(c.Request.Context(), token); err != nil {
		slog.Error("failed to persist access token",
			"event_id", "TOKEN_SAVE_ERR",
			"error", err.Error(),
		)
		httputil.WriteError(c, httputil.InternalServerError("Failed to persist access token"))
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// writeUpstreamError は上流エラーをProblemDetailへ写す。
func (h *Handler) writeUpstreamError(c *gin.Context, err error) {
	var statusErr *odido.StatusError
	switch {
	case errors.Is(err, odido.ErrCircuitOpen):
		httputil.WriteError(c, httputil.ServiceUnavailable("Odido API is temporarily unavailable"))
	case errors.As(err, &statusErr):
		httputil.WriteError(c, httputil.BadGateway(statusErr.Error()))
	default:
		httputil.WriteError(c, httputil.BadGateway("Failed to communicate with Odido API"))
	}
}
