package web

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"cooknet/internal/caption"
	"cooknet/internal/store"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func limitParam(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("limit"))
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func recipeID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) listRecipes(c *gin.Context) {
	recipes, err := s.store.ListRecipes(c.Request.Context(), limitParam(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (s *Server) topRecipes(c *gin.Context) {
	recipes, err := s.store.TopRecipes(c.Request.Context(), limitParam(c))
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (s *Server) recipeDetail(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	r, err := s.store.GetRecipe(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	comments, err := s.store.ListComments(c.Request.Context(), id, maxListLimit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipe": r, "comments": comments})
}

// likeRecipe increments the counter unless the address is cooling down; a
// blocked duplicate click just redirects without incrementing.
func (s *Server) likeRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	back := "/recipes/" + c.Param("id")
	if !s.gate.Allow(c.ClientIP()) {
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	err := s.store.LikeRecipe(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, back)
}

func (s *Server) addComment(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	back := "/recipes/" + c.Param("id")
	if !s.gate.Allow(c.ClientIP()) {
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	if strings.TrimSpace(c.PostForm("captcha")) != s.challenge {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Неверный ответ. Попробуйте ещё раз."})
		return
	}
	text := truncate(strings.TrimSpace(c.PostForm("text")), 500)
	if text == "" {
		// Empty bodies are dropped silently.
		c.Redirect(http.StatusSeeOther, back)
		return
	}
	author := commentAuthor(c)
	_, err := s.store.AddComment(c.Request.Context(), id, author, text)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, back)
}

func commentAuthor(c *gin.Context) string {
	if name := authedUser(c); name != "" {
		return name
	}
	if name := truncate(strings.TrimSpace(c.PostForm("username")), 32); name != "" {
		return name
	}
	return "webuser"
}

func (s *Server) addRecipeForm(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"fields": []string{"title", "description", "photo_url", "video_url"},
	})
}

// addRecipe commits a recipe submitted over the web form. Authorship comes
// from the authenticated identity; title and description are required.
func (s *Server) addRecipe(c *gin.Context) {
	username := authedUser(c)
	title := strings.TrimSpace(c.PostForm("title"))
	description := strings.TrimSpace(c.PostForm("description"))
	if title == "" || description == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and description are required"})
		return
	}

	r := &store.Recipe{
		Username:    username,
		Title:       title,
		Description: description,
		PhotoURL:    strings.TrimSpace(c.PostForm("photo_url")),
		VideoURL:    strings.TrimSpace(c.PostForm("video_url")),
		Caption:     s.captionOrFallback(c.Request.Context(), title, description),
	}
	if err := s.store.CreateRecipe(c.Request.Context(), r); err != nil {
		s.storeError(c, err)
		return
	}
	c.Redirect(http.StatusSeeOther, "/recipes/"+strconv.FormatUint(uint64(r.ID), 10))
}

func (s *Server) captionOrFallback(ctx context.Context, title, description string) string {
	cctx, cancel := context.WithTimeout(ctx, s.captionTimeout)
	defer cancel()
	text, err := s.captioner.Caption(cctx, title, description)
	if err != nil || strings.TrimSpace(text) == "" {
		s.log.Warn().Err(err).Msg("captioning failed, using local fallback")
		return caption.Fallback(title, description)
	}
	return text
}

func (s *Server) profile(c *gin.Context) {
	username := c.Param("username")
	u, err := s.store.GetUserByName(c.Request.Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		s.storeError(c, err)
		return
	}
	recipes, err := s.store.UserRecipes(c.Request.Context(), username, maxListLimit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": u, "recipes": recipes})
}

// storeError is the one fatal class: a failed durable write or read is never
// masked as success.
func (s *Server) storeError(c *gin.Context, err error) {
	s.log.Error().Err(err).Str("path", c.FullPath()).Msg("store operation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
