package v1

import (
	"net/http"

	"go-studio-backend/internal/delivery/http/middleware"
	"go-studio-backend/internal/delivery/http/response"
	"go-studio-backend/internal/domain"

	"github.com/gin-gonic/gin"
)

type MessageHandler struct {
	messageUC domain.MessageUsecase
}

func NewMessageHandler(protected *gin.RouterGroup, messageUC domain.MessageUsecase) {
	handler := &MessageHandler{messageUC: messageUC}

	messages := protected.Group("/messages")
	{
		messages.GET("", handler.Inbox)
		messages.GET("/unread-count", handler.UnreadCount)
		messages.POST("/:id/read", handler.MarkRead)
	}

	staff := protected.Group("/messages")
	staff.Use(middleware.RequireRoles(domain.RoleAdmin, domain.RoleTrainer))
	{
		staff.POST("", handler.Send)
	}
}

// Send godoc
// @Summary      Send a message
// @Description  Staff-to-client message. Sender name and role are stamped server-side.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Param        message  body      domain.SendMessageRequest  true  "Message details"
// @Success      201      {object}  response.Response{data=domain.ClientMessage}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /messages [post]
// @Security     BearerAuth
func (h *MessageHandler) Send(c *gin.Context) {
	senderID := c.GetInt64(string(domain.KeyUserID))

	var req domain.SendMessageRequest
	if !bindAndValidate(c, &req) {
		return
	}

	msg, err := h.messageUC.Send(c, senderID, &req)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusCreated, "Message sent", msg)
}

// Inbox godoc
// @Summary      Inbox
// @Tags         messages
// @Produce      json
// @Param        unread_only  query     bool  false  "Only unread messages"
// @Success      200          {object}  response.Response{data=[]domain.ClientMessage}
// @Failure      401          {object}  response.Response
// @Router       /messages [get]
// @Security     BearerAuth
func (h *MessageHandler) Inbox(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	unreadOnly := c.Query("unread_only") == "true"

	messages, err := h.messageUC.Inbox(c, userID, unreadOnly)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Messages retrieved", messages)
}

// UnreadCount godoc
// @Summary      Unread count
// @Tags         messages
// @Produce      json
// @Success      200  {object}  response.Response
// @Failure      401  {object}  response.Response
// @Router       /messages/unread-count [get]
// @Security     BearerAuth
func (h *MessageHandler) UnreadCount(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))

	count, err := h.messageUC.UnreadCount(c, userID)
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Unread count retrieved", gin.H{"unread_count": count})
}

// MarkRead godoc
// @Summary      Mark message read
// @Description  Only the recipient can mark their own message as read
// @Tags         messages
// @Produce      json
// @Param        id   path      int  true  "Message ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /messages/{id}/read [post]
// @Security     BearerAuth
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := c.GetInt64(string(domain.KeyUserID))
	messageID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.messageUC.MarkRead(c, userID, messageID); err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Message marked as read", nil)
}
