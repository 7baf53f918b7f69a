// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package subscriptions streams operation receipts over websocket.
package subscriptions

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/vechain/revpool/api/operations"
	"github.com/vechain/revpool/api/utils"
	"github.com/vechain/revpool/log"
	"github.com/vechain/revpool/pool"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 7) / 10

	listenerBuffer = 64
)

type Subscriptions struct {
	pool      *pool.Pool
	upgrader  *websocket.Upgrader
	listeners map[chan *pool.Receipt]struct{}
	mu        sync.RWMutex
	done      chan struct{}
	wg        sync.WaitGroup
}

func New(p *pool.Pool, allowedOrigins []string) *Subscriptions {
	s := &Subscriptions{
		pool:      p,
		listeners: make(map[chan *pool.Receipt]struct{}),
		done:      make(chan struct{}),
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == strings.ToLower(origin) {
						return true
					}
				}
				return false
			},
		},
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.dispatchLoop()
	}()
	return s
}

func (s *Subscriptions) subscribe(ch chan *pool.Receipt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners[ch] = struct{}{}
}

func (s *Subscriptions) unsubscribe(ch chan *pool.Receipt) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listeners, ch)
}

// dispatchLoop fans receipts out to every connection. A slow connection drops
// receipts rather than holding up the pool.
func (s *Subscriptions) dispatchLoop() {
	ch := make(chan *pool.Receipt)
	sub := s.pool.SubscribeReceipt(ch)
	defer sub.Unsubscribe()

	for {
		select {
		case r := <-ch:
			s.mu.RLock()
			for lsn := range s.listeners {
				select {
				case lsn <- r:
				default:
				}
			}
			s.mu.RUnlock()
		case <-sub.Err():
			return
		case <-s.done:
			return
		}
	}
}

func (s *Subscriptions) handleSubscribeReceipts(w http.ResponseWriter, req *http.Request) error {
	s.wg.Add(1)
	defer s.wg.Done()

	// subscribed before the upgrade completes, so nothing committed after the
	// handshake is missed
	ch := make(chan *pool.Receipt, listenerBuffer)
	s.subscribe(ch)
	defer s.unsubscribe(ch)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already responded
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		s.readLoop(conn)
	}()
	defer func() {
		conn.Close()
		<-closed
	}()

	if err := s.pipe(conn, ch, closed); err != nil {
		logger.Debug("subscription closed", "err", err)
	}
	return nil
}

// readLoop discards client messages and keeps the read deadline fresh. It
// returns once the connection is gone.
func (s *Subscriptions) readLoop(conn *websocket.Conn) {
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Subscriptions) pipe(conn *websocket.Conn, ch <-chan *pool.Receipt, closed <-chan struct{}) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case r := <-ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(operations.ConvertReceipt(r)); err != nil {
				return err
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		case <-closed:
			return nil
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down")
			return conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		}
	}
}

// Close ends the dispatch loop and every open subscription.
func (s *Subscriptions) Close() {
	close(s.done)
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/receipts").
		Methods(http.MethodGet).
		Name("subscriptions_receipts").
		HandlerFunc(utils.WrapHandlerFunc(s.handleSubscribeReceipts))
}
