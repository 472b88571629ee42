package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KasumiMercury/primind-task-reminder/internal/app"
)

const DispatchSecretHeader = "X-Dispatch-Secret"

type ReminderHandler struct {
	jobs     app.ReminderJobUseCase
	dispatch app.DispatchUseCase
}

func NewReminderHandler(jobs app.ReminderJobUseCase, dispatch app.DispatchUseCase) *ReminderHandler {
	useJSONFieldNames()

	return &ReminderHandler{
		jobs:     jobs,
		dispatch: dispatch,
	}
}

func (h *ReminderHandler) SyncUser(c *gin.Context) {
	var req SyncUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)

		return
	}

	slog.InfoContext(c.Request.Context(), "syncing reminder jobs",
		"user_id", req.UserID,
		"task_count", len(req.Tasks),
	)

	output, err := h.jobs.SyncUserJobs(c.Request.Context(), req.ToInput())
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, SyncUserResponseFromOutput(output))
}

func (h *ReminderHandler) DispatchDue(c *gin.Context) {
	secret := c.Query("secret")
	if secret == "" {
		secret = c.GetHeader(DispatchSecretHeader)
	}

	output, err := h.dispatch.DispatchDue(c.Request.Context(), app.DispatchDueInput{Secret: secret})
	if err != nil {
		handleError(c, err)

		return
	}

	c.JSON(http.StatusOK, DispatchDueResponseFromOutput(output))
}

func (h *ReminderHandler) RegisterRoutes(router *gin.RouterGroup) {
	reminders := router.Group("/reminders")
	{
		reminders.POST("/sync-user", h.SyncUser)
		reminders.POST("/dispatch-due", h.DispatchDue)
	}
}
