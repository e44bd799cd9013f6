package server

import "github.com/gin-gonic/gin"

// SetupRouter はルーティングを設定する。
func SetupRouter(engine *gin.Engine, h *Handler) {
	// ヘルスチェック
	engine.GET("/health", h.HandleHealth)

	// API v1
	v1 := engine.Group("/api/v1")
	{
		v1.GET("/devices", h.HandleDevices)
		v1.GET("/devices/:id/sensors", h.HandleDeviceSensors)
		v1.GET("/sensors", h.HandleSensors)
		v1.POST("/refresh", h.HandleRefresh)
		v1.POST("/actions/buy_bundle", h.HandleBuyBundle)
		v1.POST("/token", h.HandleToken)
	}
}
