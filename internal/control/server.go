// Package control implements LDB's local HTTP control surface:
// /stats, /reset, /recent, and /ws. Built around a
// mutex+map+atomic.Bool "run" guard, with live websocket subscribers
// in place of registered codecs and ServeHTTP as the single dispatch
// point.
package control

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/ldb-go/ldb/internal/logx"
)

// StatsSource is whatever the owning process wants exposed at
// /stats — goroutine counts, ring drop counts, and so on. Kept
// abstract so this package has no dependency on shim/monitor/logger.
type StatsSource interface {
	Stats() map[string]interface{}
}

// Server is LDB's control surface. Like rpc.Server, it tracks live
// long-lived connections (there: codecs; here: websocket
// subscribers) under a mutex, and gates accepting new ones with an
// atomic "run" flag so Stop() is race-free against concurrent
// ServeHTTP calls.
type Server struct {
	stats StatsSource
	reset func()
	recent *lru.Cache

	mutex sync.Mutex
	conns map[*subscriber]struct{}
	run   atomic.Bool

	limiter *rate.Limiter
	httpSrv *http.Server
}

type subscriber struct {
	closed chan struct{}
}

// New builds a control Server. recentCap bounds the /recent ring's
// introspection cache (hashicorp/golang-lru backs it, per DESIGN.md's
// note on why it was chosen over a second caching library).
func New(stats StatsSource, reset func(), recentCap int) (*Server, error) {
	cache, err := lru.New(recentCap)
	if err != nil {
		return nil, err
	}
	s := &Server{
		stats:   stats,
		reset:   reset,
		recent:  cache,
		conns:   make(map[*subscriber]struct{}),
		limiter: rate.NewLimiter(rate.Limit(50), 10),
	}
	s.run.Store(true)
	return s, nil
}

// PushRecent records one recent event for /recent introspection,
// keyed by an ever-increasing sequence number so the LRU naturally
// evicts the oldest entries once Cap is exceeded.
func (s *Server) PushRecent(seq uint64, v interface{}) {
	s.recent.Add(seq, v)
}

func (s *Server) router() http.Handler {
	r := httprouter.New()
	r.GET("/stats", s.handleStats)
	r.POST("/reset", s.handleReset)
	r.GET("/recent", s.handleRecent)
	r.GET("/ws", s.handleWS)

	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(r)
}

func (s *Server) allow(w http.ResponseWriter) bool {
	if !s.limiter.Allow() {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return false
	}
	return true
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.allow(w) {
		return
	}
	if !s.run.Load() {
		http.Error(w, "server stopped", http.StatusServiceUnavailable)
		return
	}
	snapshot := s.stats.Stats()
	json.NewEncoder(w).Encode(map[string]interface{}{
		"ldb":     snapshot,
		"process": CollectProcessStats(snapshot),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.allow(w) {
		return
	}
	if !s.run.Load() {
		http.Error(w, "server stopped", http.StatusServiceUnavailable)
		return
	}
	s.reset()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	if !s.allow(w) {
		return
	}
	out := make([]interface{}, 0, s.recent.Len())
	for _, key := range s.recent.Keys() {
		if v, ok := s.recent.Get(key); ok {
			out = append(out, v)
		}
	}
	json.NewEncoder(w).Encode(out)
}

// Listen starts serving on addr until Stop is called.
func (s *Server) Listen(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.httpSrv = &http.Server{Handler: s.router()}
	logx.Info("control: listening", "addr", addr)
	return s.httpSrv.Serve(ln)
}

// Stop stops accepting new requests and closes every live websocket
// subscriber, mirroring rpc.Server.Stop's CompareAndSwap-guarded
// single-fire shutdown.
func (s *Server) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.run.CompareAndSwap(true, false) {
		logx.Debug("control: shutting down")
		for c := range s.conns {
			close(c.closed)
		}
		if s.httpSrv != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			s.httpSrv.Shutdown(ctx)
		}
	}
}

func (s *Server) trackConn(c *subscriber) bool {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	if !s.run.Load() {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrackConn(c *subscriber) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.conns, c)
}
