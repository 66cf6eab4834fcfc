// Package web is the HTTP front end: stateless handlers over the shared
// store, plus the webhook intake that bridges transport updates to the bot's
// dispatch goroutine.
package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"cooknet/internal/antispam"
	"cooknet/internal/caption"
	"cooknet/internal/store"
)

// UpdateSink receives validated transport updates for asynchronous
// processing. Enqueue must not block.
type UpdateSink interface {
	Enqueue(update tgbotapi.Update) bool
}

type Server struct {
	store          *store.Store
	gate           *antispam.Gate
	captioner      caption.Client
	captionTimeout time.Duration
	challenge      string
	jwtSecret      []byte
	sink           UpdateSink
	webhookPath    string
	log            zerolog.Logger
}

func NewServer(
	st *store.Store,
	gate *antispam.Gate,
	captioner caption.Client,
	captionTimeout time.Duration,
	challenge string,
	jwtSecret string,
	sink UpdateSink,
	webhookPath string,
	logger zerolog.Logger,
) *Server {
	return &Server{
		store:          st,
		gate:           gate,
		captioner:      captioner,
		captionTimeout: captionTimeout,
		challenge:      challenge,
		jwtSecret:      []byte(jwtSecret),
		sink:           sink,
		webhookPath:    webhookPath,
		log:            logger.With().Str("component", "web").Logger(),
	}
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger(), metrics())
	r.Use(s.identity())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/recipes")
	})
	r.GET("/recipes", s.listRecipes)
	r.GET("/top", s.topRecipes)
	r.GET("/recipes/:id", s.recipeDetail)
	r.POST("/recipes/:id/like", s.likeRecipe)
	r.POST("/recipes/:id/comment", s.addComment)

	r.POST("/login", s.login)
	r.GET("/add", s.requireAuth(), s.addRecipeForm)
	r.POST("/add", s.requireAuth(), s.addRecipe)
	r.GET("/profile/:username", s.profile)

	r.GET("/chat", s.chatBoard)
	r.POST("/chat", s.postChatMessage)

	r.GET("/invite/:code", s.redeemInvite)

	if s.sink != nil && s.webhookPath != "" {
		r.POST(s.webhookPath, s.telegramWebhook)
	}

	return r
}
