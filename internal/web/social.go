package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"cooknet/internal/store"
)

const chatBoardLimit = 100

func (s *Server) chatBoard(c *gin.Context) {
	msgs, err := s.store.ListChatMessages(c.Request.Context(), chatBoardLimit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

func (s *Server) postChatMessage(c *gin.Context) {
	if !s.gate.Allow(c.ClientIP()) {
		c.Redirect(http.StatusSeeOther, "/chat")
		return
	}
	if strings.TrimSpace(c.PostForm("captcha")) != s.challenge {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ответ. Попробуйте ещё раз."})
		return
	}
	text := truncate(strings.TrimSpace(c.PostForm("text")), 500)
	if text == "" {
		c.Redirect(http.StatusSeeOther, "/chat")
		return
	}
	author := commentAuthor(c)
	if _, err := s.store.AddChatMessage(c.Request.Context(), author, text); err != nil {
		s.storeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/chat")
}

// redeemInvite consumes a code. Codes are single-use: an unknown code is an
// invalid link, an exhausted one is gone for good.
func (s *Server) redeemInvite(c *gin.Context) {
	code := c.Param("code")
	redeemer := authedUser(c)
	if redeemer == "" {
		redeemer = c.ClientIP()
	}
	inv, err := s.store.UseInvite(c.Request.Context(), code, redeemer)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Недействительная ссылка-приглашение."})
		return
	}
	if errors.Is(err, store.ErrInviteUsed) {
		c.JSON(http.StatusGone, gin.H{"error": "Эта ссылка-приглашение уже использована."})
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Приглашение принято! Открой бота и отправь /start, чтобы завершить активацию.",
		"owner":   inv.Owner,
	})
}
