package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/assets"
	"github.com/youruser/deckbuilder/internal/cards"
	"github.com/youruser/deckbuilder/internal/deck"
	imagepkg "github.com/youruser/deckbuilder/internal/image"
	"github.com/youruser/deckbuilder/internal/session"
)

// Server exposes a session over HTTP and a websocket.
type Server struct {
	sess   *session.Session
	assets *assets.Cacher
	ws     *melody.Melody
	log    *zap.Logger
	unsub  func()
}

// New wires the server to sess. cacher may be nil, which disables /assets
// and the image-caching messages.
func New(sess *session.Session, cacher *assets.Cacher, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		sess:   sess,
		assets: cacher,
		ws:     melody.New(),
		log:    logger,
	}
	s.ws.HandleConnect(s.onConnect)
	s.ws.HandleMessage(s.onMessage)
	s.unsub = sess.Subscribe(s.broadcast)
	return s
}

// Close drops the websocket clients and the session subscription.
func (s *Server) Close() error {
	s.unsub()
	return s.ws.Close()
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, cards.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, deck.ErrMissingLeader),
		errors.Is(err, deck.ErrUnknownLeader),
		errors.Is(err, deck.ErrInvalidEncoding):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, assets.ErrQueueFull):
		status = http.StatusServiceUnavailable
	}
	c.Error(err)
	c.JSON(status, gin.H{"error": err.Error()})
}

// health
func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listCards(c *gin.Context) {
	all := s.sess.Catalog().All()
	c.JSON(http.StatusOK, gin.H{"count": len(all), "cards": all})
}

func (s *Server) getCard(c *gin.Context) {
	card, err := s.sess.Catalog().Get(c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) facets(c *gin.Context) {
	c.JSON(http.StatusOK, cards.BuildFacets(s.sess.Catalog().All()))
}

func (s *Server) filterHandler(c *gin.Context) {
	var q cards.FilterQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	out := s.sess.ApplyFilter(q)
	c.JSON(http.StatusOK, gin.H{"count": len(out), "cards": out})
}

func (s *Server) getDeck(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.View())
}

func (s *Server) addCard(c *gin.Context) {
	var req struct {
		CardID string `json:"card_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	outcome, v, err := s.sess.AddCard(c.Request.Context(), req.CardID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"outcome": outcome,
		"message": outcome.Message(),
		"deck":    v,
	})
}

func (s *Server) removeCard(c *gin.Context) {
	v, err := s.sess.RemoveCard(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (s *Server) clearDeck(c *gin.Context) {
	c.JSON(http.StatusOK, s.sess.Clear(c.Request.Context()))
}

func (s *Server) encodeDeck(c *gin.Context) {
	code, err := s.sess.Encode()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": code})
}

func (s *Server) loadDeckCode(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	v, skipped, err := s.sess.LoadCode(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}
	if skipped == nil {
		skipped = []deck.Skip{}
	}
	c.JSON(http.StatusOK, gin.H{"deck": v, "skipped": skipped})
}

// qr endpoint returns a PNG of a QR for the current deck code
func (s *Server) qrHandler(c *gin.Context) {
	code, err := s.sess.Encode()
	if err != nil {
		writeError(c, err)
		return
	}
	size := 0
	if sizeStr := c.Query("size"); sizeStr != "" {
		if v, err := strconv.Atoi(sizeStr); err == nil {
			size = v
		}
	}
	b, err := imagepkg.DeckQRPNG(code, size)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

// assetHandler serves an image through the offline cache.
func (s *Server) assetHandler(c *gin.Context) {
	if s.assets == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "asset cache disabled"})
		return
	}
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}
	b, err := s.assets.Get(c.Request.Context(), url)
	if err != nil {
		s.log.Warn("asset unavailable", zap.String("url", url), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, http.DetectContentType(b), b)
}
