package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Fergus4506/olca-ipc-container/internal/errors"
	"github.com/Fergus4506/olca-ipc-container/internal/olcaipc/calc"
)

func (s *Service) initRouter() {
	s.initBaseRouter()
	s.initAPIRouter()
	s.initMCPRouter()
}

func (s *Service) initBaseRouter() {
	s.router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	s.router.NoRoute(s.NoRoute)
}

func (s *Service) initAPIRouter() {
	s.router.POST("/calculate", s.handleCalculate)
}

func (s *Service) initMCPRouter() {
	s.router.Any("/mcp", func(c *gin.Context) {
		s.mcpStreamableServer.ServeHTTP(c.Writer, c.Request)
	})
	s.router.Any("/sse", func(c *gin.Context) {
		s.mcpSSEServer.ServeHTTP(c.Writer, c.Request)
	})
	s.router.Any("/message", func(c *gin.Context) {
		s.mcpSSEServer.ServeHTTP(c.Writer, c.Request)
	})
}

func (s *Service) NoRoute(c *gin.Context) {
	errors.Err(c, errors.NotFound(strings.TrimPrefix(c.Request.URL.Path, "/"), nil))
}

// CalculateRequest uses pointers so a missing field can be told from a zero.
type CalculateRequest struct {
	Distance *float64 `json:"distance"`
	Factor   *float64 `json:"factor"`
	Load     *float64 `json:"load"`
	Amount   *float64 `json:"amount"`
}

func (r CalculateRequest) Input() (calc.Input, bool) {
	if r.Distance == nil || r.Factor == nil || r.Load == nil || r.Amount == nil {
		return calc.Input{}, false
	}
	return calc.Input{
		Distance: *r.Distance,
		Factor:   *r.Factor,
		Load:     *r.Load,
		Amount:   *r.Amount,
	}, true
}

func (s *Service) handleCalculate(c *gin.Context) {
	var req CalculateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "invalid request body"})
		return
	}

	in, ok := req.Input()
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"status": "error", "message": "missing parameters"})
		return
	}

	impacts, err := s.calc.Calculate(c.Request.Context(), in)
	if err != nil {
		// The body is already checked, anything failing now is on the server side.
		code := errors.GetCode(err)
		if code < http.StatusInternalServerError {
			code = http.StatusInternalServerError
		}
		log.Err(err).
			Str("request_id", c.GetString("RequestID")).
			Str("type", errors.GetType(err)).
			Msg("calculation failed")
		c.JSON(code, gin.H{"status": "error", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"inputs":  in,
		"impacts": impacts,
	})
}
