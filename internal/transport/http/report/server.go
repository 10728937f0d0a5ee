package reporthttp

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"tradereports/internal/analytics"
	"tradereports/internal/charts"
	"tradereports/internal/event"
	"tradereports/internal/logger"
)

// ReportData is one fully computed report, swapped in atomically when
// a re-parse finishes.
type ReportData struct {
	Date     string
	Stats    analytics.OverallStats
	Events   []event.TradeEvent
	Bots     []analytics.BotSummary
	Assets   []analytics.AssetSummary
	Penny    []analytics.PennySummary
	Charts   []charts.ContractChart
	LoadedAt time.Time
}

// Server serves the current report over HTTP. Rendering is left to
// whatever front end consumes the JSON.
type Server struct {
	addr   string
	router *gin.Engine

	mu   sync.RWMutex
	data *ReportData
}

func NewServer(addr string) *Server {
	if addr == "" {
		addr = ":8091"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	s := &Server{addr: addr, router: router}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	api := router.Group("/api/report")
	api.GET("/stats", s.handleStats)
	api.GET("/events", s.handleEvents)
	api.GET("/fills", s.handleFills)
	api.GET("/bots", s.handleBots)
	api.GET("/assets", s.handleAssets)
	api.GET("/penny", s.handlePenny)
	router.GET("/charts", s.handleChartList)
	router.GET("/charts/:name", s.handleChart)
	return s
}

// SetData publishes a freshly computed report.
func (s *Server) SetData(data *ReportData) {
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
}

func (s *Server) snapshot() *ReportData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// Start blocks until ctx is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("report http server listening on %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("http %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

func (s *Server) handleStats(c *gin.Context) {
	data := s.snapshot()
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report loaded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"date":      data.Date,
		"loaded_at": data.LoadedAt,
		"stats":     data.Stats,
	})
}

func (s *Server) handleEvents(c *gin.Context) {
	data := s.snapshot()
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report loaded"})
		return
	}
	rows := make([]eventRow, 0, len(data.Events))
	for i := range data.Events {
		e := &data.Events[i]
		if kind := c.Query("kind"); kind != "" && e.Kind.String() != kind {
			continue
		}
		if bot := c.Query("bot"); bot != "" && e.Bot != bot {
			continue
		}
		if asset := c.Query("asset"); asset != "" && e.Asset != asset {
			continue
		}
		rows = append(rows, toEventRow(e))
	}
	c.JSON(http.StatusOK, rows)
}

func (s *Server) handleFills(c *gin.Context) {
	data := s.snapshot()
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report loaded"})
		return
	}
	c.JSON(http.StatusOK, analytics.FlattenFills(data.Events))
}

func (s *Server) handleBots(c *gin.Context) {
	data := s.snapshot()
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report loaded"})
		return
	}
	c.JSON(http.StatusOK, data.Bots)
}

func (s *Server) handleAssets(c *gin.Context) {
	data := s.snapshot()
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report loaded"})
		return
	}
	c.JSON(http.StatusOK, data.Assets)
}

func (s *Server) handlePenny(c *gin.Context) {
	data := s.snapshot()
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report loaded"})
		return
	}
	c.JSON(http.StatusOK, data.Penny)
}

func (s *Server) handleChartList(c *gin.Context) {
	data := s.snapshot()
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report loaded"})
		return
	}
	names := make([]string, 0, len(data.Charts))
	for i := range data.Charts {
		names = append(names, data.Charts[i].Name)
	}
	c.JSON(http.StatusOK, names)
}

func (s *Server) handleChart(c *gin.Context) {
	data := s.snapshot()
	if data == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no report loaded"})
		return
	}
	name := c.Param("name")
	for i := range data.Charts {
		if data.Charts[i].Name == name {
			c.Data(http.StatusOK, "text/html; charset=utf-8", data.Charts[i].HTML)
			return
		}
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "chart not found"})
}
