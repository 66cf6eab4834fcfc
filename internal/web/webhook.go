package web

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// telegramWebhook is the bridge between the request-serving domain and the
// bot's dispatch goroutine: the update is validated, enqueued, and the
// transport gets its acknowledgment immediately, independent of how long
// processing takes.
func (s *Server) telegramWebhook(c *gin.Context) {
	var update tgbotapi.Update
	if err := json.NewDecoder(c.Request.Body).Decode(&update); err != nil {
		s.log.Error().Err(err).Msg("failed to decode webhook update")
		c.String(http.StatusInternalServerError, "FAIL")
		return
	}
	s.sink.Enqueue(update)
	c.String(http.StatusOK, "OK")
}
