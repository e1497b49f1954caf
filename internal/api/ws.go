package api

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/olahol/melody"
	"go.uber.org/zap"

	"github.com/youruser/deckbuilder/internal/assets"
	"github.com/youruser/deckbuilder/internal/session"
)

// Websocket message types of the offline cache protocol.
const (
	MsgCacheImages   = "CACHE_IMAGES"
	MsgCacheProgress = "CACHE_PROGRESS"
	MsgCacheComplete = "CACHE_COMPLETE"
	MsgError         = "ERROR"
)

type inbound struct {
	Type    string   `json:"type"`
	Payload []string `json:"payload"`
}

type outbound struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (s *Server) wsHandler(c *gin.Context) {
	if err := s.ws.HandleRequest(c.Writer, c.Request); err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
	}
}

// onConnect sends the current deck so a fresh client can render at once.
func (s *Server) onConnect(ms *melody.Session) {
	s.log.Info("websocket connected", zap.String("remote_address", ms.RemoteAddr().String()))
	v := s.sess.View()
	s.send(ms, session.Event{Type: session.EventDeck, Deck: &v})
}

func (s *Server) onMessage(ms *melody.Session, data []byte) {
	var msg inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		s.send(ms, outbound{Type: MsgError, Payload: "malformed message"})
		return
	}
	switch msg.Type {
	case MsgCacheImages:
		s.cacheImages(ms, msg.Payload)
	default:
		s.log.Debug("ignoring websocket message", zap.String("type", msg.Type))
	}
}

// cacheImages queues urls, or every catalog image when urls is empty.
func (s *Server) cacheImages(ms *melody.Session, urls []string) {
	if s.assets == nil {
		s.send(ms, outbound{Type: MsgError, Payload: "asset cache disabled"})
		return
	}
	if len(urls) == 0 {
		for _, c := range s.sess.Catalog().All() {
			if c.ImageURL != "" {
				urls = append(urls, c.ImageURL)
			}
		}
	}
	_, err := s.assets.Enqueue(urls, func(p assets.Progress) {
		typ := MsgCacheProgress
		if p.Done {
			typ = MsgCacheComplete
		}
		s.send(ms, outbound{Type: typ, Payload: p})
	})
	if err != nil {
		s.send(ms, outbound{Type: MsgError, Payload: err.Error()})
	}
}

func (s *Server) send(ms *melody.Session, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		s.log.Error("failed to encode websocket message", zap.Error(err))
		return
	}
	if err := ms.Write(b); err != nil {
		s.log.Debug("websocket write dropped", zap.Error(err))
	}
}

// broadcast forwards session events to every connected client.
func (s *Server) broadcast(e session.Event) {
	b, err := json.Marshal(e)
	if err != nil {
		s.log.Error("failed to encode event", zap.Error(err))
		return
	}
	if err := s.ws.Broadcast(b); err != nil {
		s.log.Debug("broadcast dropped", zap.Error(err))
	}
}
