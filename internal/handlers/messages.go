package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"message-service/internal/middleware"
	"message-service/internal/models"
	"message-service/internal/query"
	"message-service/internal/repositories"
)

// MessageHandler serves the message endpoints.
type MessageHandler struct {
	messageRepo repositories.MessageRepository
	directory   repositories.DirectoryRepository
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(messageRepo repositories.MessageRepository, directory repositories.DirectoryRepository) *MessageHandler {
	return &MessageHandler{
		messageRepo: messageRepo,
		directory:   directory,
	}
}

type messageResponse struct {
	ID           string `json:"id"`
	Content      string `json:"content"`
	CreatorName  string `json:"creator_name"`
	CreatorEmail string `json:"creator_email"`
	CreateDate   int64  `json:"create_date"`
}

// GetMessages handles GET /messages. For DIRECT it returns both directions of the
// conversation between the caller and the target; for GROUP every message sent to the group.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	actorID := c.GetString(middleware.UserIDKey)

	targetName := c.Query("target_name")
	if targetName == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target_name is required"})
		return
	}
	msgType, err := models.ParseMessageType(c.Query("type"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sort, err := parseSort(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetID, ok := h.resolveTarget(c, actorID, targetName, msgType)
	if !ok {
		return
	}

	criteria := query.NewCriteria().WithTargetIDs(targetID).WithType(msgType)
	if msgType == models.MessageTypeDirect {
		criteria = criteria.WithSenderID(actorID)
	}

	entries, err := h.messageRepo.FindByCriteria(c.Request.Context(), criteria, sort)
	if err != nil {
		zap.L().Error("load messages failed", zap.Error(err), zap.String("target_id", targetID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	resp := make([]messageResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, messageResponse{
			ID:           e.ID,
			Content:      e.Content,
			CreatorName:  e.SenderName,
			CreatorEmail: e.SenderEmail,
			CreateDate:   e.CreatedAt.UnixMilli(),
		})
	}

	c.JSON(http.StatusOK, gin.H{"messages": resp})
}

// SendMessage handles PUT /messages. The sender is always the authenticated caller.
func (h *MessageHandler) SendMessage(c *gin.Context) {
	actorID := c.GetString(middleware.UserIDKey)

	var req struct {
		TargetName string `form:"target_name" json:"target_name" binding:"required"`
		Type       string `form:"type" json:"type" binding:"required"`
		Content    string `form:"content" json:"content" binding:"required,max=4000"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	msgType, err := models.ParseMessageType(req.Type)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	targetID, ok := h.resolveTarget(c, actorID, req.TargetName, msgType)
	if !ok {
		return
	}

	msg := &models.Message{
		Content:  req.Content,
		Type:     msgType,
		TargetID: targetID,
		SenderID: actorID,
	}
	if _, err := h.messageRepo.Create(c.Request.Context(), msg, actorID); err != nil {
		zap.L().Error("store message failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// DeleteMessage handles DELETE /messages/:message_id. Unknown, already deleted and
// foreign messages all answer ok so callers learn nothing about other users' messages.
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	actorID := c.GetString(middleware.UserIDKey)

	messageID := c.Param("message_id")
	if _, err := uuid.Parse(messageID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	msg, found, err := h.messageRepo.GetByID(c.Request.Context(), messageID)
	if err != nil {
		zap.L().Error("load message failed", zap.Error(err), zap.String("message_id", messageID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}
	if !found || msg.IsDeleted() || msg.SenderID != actorID {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	if err := h.messageRepo.Delete(c.Request.Context(), messageID, actorID); err != nil {
		zap.L().Error("delete message failed", zap.Error(err), zap.String("message_id", messageID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// resolveTarget writes the error response itself and reports whether to continue.
func (h *MessageHandler) resolveTarget(c *gin.Context, actorID, name string, msgType models.MessageType) (string, bool) {
	targetID, found, err := h.directory.ResolveTargetID(c.Request.Context(), name, msgType.TargetKind())
	if err != nil {
		zap.L().Error("resolve target failed", zap.Error(err), zap.String("target_name", name))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve target"})
		return "", false
	}
	if !found {
		c.JSON(http.StatusBadRequest, gin.H{"error": "target not found: " + name})
		return "", false
	}
	if msgType == models.MessageTypeDirect && targetID == actorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "you cannot chat with yourself"})
		return "", false
	}
	return targetID, true
}

var errInvalidAsc = errors.New("asc must be a boolean")

func parseSort(c *gin.Context) (*query.Sort, error) {
	column := c.Query("sort")
	if column == "" {
		return nil, nil
	}
	col, err := query.ParseSortColumn(column)
	if err != nil {
		return nil, err
	}
	sort := &query.Sort{Column: col, Asc: true}
	if raw := c.Query("asc"); raw != "" {
		asc, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, errInvalidAsc
		}
		sort.Asc = asc
	}
	return sort, nil
}
