package api

import "github.com/gin-gonic/gin"

func (s *Server) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/health", health)
		api.GET("/cards", s.listCards)
		api.GET("/cards/:id", s.getCard)
		api.GET("/facets", s.facets)
		api.POST("/filter", s.filterHandler)

		api.GET("/deck", s.getDeck)
		api.POST("/deck/cards", s.addCard)
		api.DELETE("/deck/cards/:id", s.removeCard)
		api.POST("/deck/clear", s.clearDeck)
		api.GET("/deck/code", s.encodeDeck)
		api.POST("/deck/code", s.loadDeckCode)
		api.GET("/deck/qr", s.qrHandler)
	}
	r.GET("/assets", s.assetHandler)
	r.GET("/ws", s.wsHandler)
}
