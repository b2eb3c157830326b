package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lightyen/ipv6-checker/zok/log"
)

const notFoundText = "Could not find IPv6 address"

func (s *Server) buildRouter() {
	e := gin.New()
	e.Use(gin.Recovery(), accessLog())

	g := e.Group("/", Compress())
	g.GET("/", s.ipv6)
	g.GET("/ipv6", s.ipv6)
	g.GET("/health", health)

	e.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.engine = e
	s.srv.Handler = e
}

func (s *Server) ipv6(c *gin.Context) {
	r := s.race.Run(c.Request.Context(), s.conf.Endpoints)
	if !r.Found() {
		log.Warn("Could not find IPv6 address from any URL")
		c.String(http.StatusNotFound, notFoundText)
		return
	}
	log.Infof("Found IPv6: %s (%s, %s)", r.Address, r.Endpoint, r.Elapsed)
	c.String(http.StatusOK, r.Address)
}

func health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
