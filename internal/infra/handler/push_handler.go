package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-reminder/internal/app"
)

type PushHandler struct {
	devices app.PushDeviceUseCase
}

func NewPushHandler(devices app.PushDeviceUseCase) *PushHandler {
	useJSONFieldNames()

	return &PushHandler{devices: devices}
}

func (h *PushHandler) RegisterToken(c *gin.Context) {
	var req RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)

		return
	}

	slog.InfoContext(c.Request.Context(), "registering push token",
		"user_id", req.UserID,
		"platform", req.Platform,
	)

	output, err := h.devices.RegisterToken(c.Request.Context(), req.ToInput())
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, RegisterTokenResponseFromOutput(output))
}

func (h *PushHandler) RegisterRoutes(router *gin.RouterGroup) {
	push := router.Group("/push")
	{
		push.POST("/register-token", h.RegisterToken)
	}
}
