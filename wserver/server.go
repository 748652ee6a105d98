// Package wserver provides building simple websocket server with message push.
package wserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/annchain/bondledger/eventlog"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

const (
	serverDefaultWSPath   = "/ws"
	serverDefaultPushPath = "/push"

	// every connection is attached to the base channel
	messageTypeBaseWs = "base"
	// channel carrying every ledger event
	messageTypeNewEvent = "new_event"

	eventChanSize = 1024
)

var defaultUpgrader = &websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(*http.Request) bool {
		return true
	},
}

// Server defines parameters for running websocket server.
type Server struct {
	// Address for server to listen on
	Addr string

	// Path for websocket request, default "/ws".
	WSPath string

	// Path for push message, default "/push".
	PushPath string

	// Upgrader is for upgrade connection to websocket connection using
	// "github.com/gorilla/websocket".
	//
	// If Upgrader is nil, default upgrader will be used. Default upgrader is
	// set ReadBufferSize and WriteBufferSize to 1024, and CheckOrigin always
	// returns true.
	Upgrader *websocket.Upgrader

	// Authorize push request. Message will be sent if it returns true,
	// otherwise the request will be discarded. Default nil and push request
	// will always be accepted.
	PushAuth func(r *http.Request) bool

	// To receive sequenced ledger events
	EventChan chan *eventlog.EventRecord

	wh     *websocketHandler
	ph     *pushHandler
	engine *gin.Engine
	server *http.Server
	quit   chan bool
}

func (s *Server) GetBenchmarks() map[string]interface{} {
	return map[string]interface{}{
		"events": len(s.EventChan),
	}
}

// ListenAndServe listens on the TCP network address and handle websocket
// request.
func (s *Server) Serve() {
	if err := s.server.ListenAndServe(); err != nil {
		// cannot panic, because this probably is an intentional close
		log.WithError(err).Info("websocket server")
	}
}

// Push filters connections by event, then write message
func (s *Server) Push(event, message string) (int, error) {
	return s.ph.push(event, message)
}

// NewServer creates a new Server.
func NewServer(addr string) *Server {
	s := &Server{
		Addr:      addr,
		WSPath:    serverDefaultWSPath,
		PushPath:  serverDefaultPushPath,
		EventChan: make(chan *eventlog.EventRecord, eventChanSize),
		quit:      make(chan bool),
	}

	e2c := NewEvent2Cons()

	// websocket request handler
	wh := websocketHandler{
		upgrader:   defaultUpgrader,
		event2Cons: e2c,
	}
	if s.Upgrader != nil {
		wh.upgrader = s.Upgrader
	}
	s.wh = &wh

	// push request handler
	ph := pushHandler{
		event2Cons: e2c,
	}
	if s.PushAuth != nil {
		ph.authFunc = s.PushAuth
	}
	s.ph = &ph

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.GET(s.WSPath, wh.Handle)
	engine.POST(s.PushPath, ph.Handle)
	s.engine = engine

	s.server = &http.Server{
		Addr:    s.Addr,
		Handler: engine,
	}
	return s
}

func (s *Server) Start() {
	go s.Serve()
	go s.WatchEvents()
}

func (s *Server) Stop() {
	s.quit <- true
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		log.WithError(err).Info("server Shutdown")
	}
	log.Info("server exiting")
}

func (s *Server) Name() string {
	return fmt.Sprintf("websocket Server at %s", s.Addr)
}

// WatchEvents drains EventChan and publishes batches on a short tick so
// bursts collapse into one frame.
func (s *Server) WatchEvents() {
	ticker := time.NewTicker(time.Millisecond * 300)
	defer ticker.Stop()
	var uidata *UIData
	for {
		select {
		case rec := <-s.EventChan:
			if uidata == nil {
				uidata = &UIData{
					Type: messageTypeNewEvent,
				}
			}
			uidata.AddEvent(rec)
		case <-ticker.C:
			s.publishEvents(uidata)
			uidata = nil
		case <-s.quit:
			return
		}
	}
}

func (s *Server) publishEvents(uidata *UIData) {
	if uidata == nil {
		return
	}
	log.WithField("eventCount", len(uidata.Events)).Debug("push to ws")
	bs, err := json.Marshal(uidata)
	if err != nil {
		log.WithError(err).Error("Failed to marshal ws message")
		return
	}
	s.Push(messageTypeNewEvent, string(bs))

	// per kind channels
	for kind, batch := range uidata.byKind() {
		bs, err := json.Marshal(batch)
		if err != nil {
			log.WithError(err).Error("Failed to marshal ws message")
			continue
		}
		s.Push(kind, string(bs))
	}
}
