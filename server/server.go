package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lightyen/ipv6-checker/config"
	"github.com/lightyen/ipv6-checker/discovery"
	"github.com/lightyen/ipv6-checker/metrics"
	"github.com/lightyen/ipv6-checker/zok/log"
)

type Server struct {
	srv  *http.Server
	ctx  context.Context
	stop context.CancelCauseFunc

	conf    config.Configuration
	client  *http.Client
	prober  *discovery.HTTPProber
	race    *discovery.Race
	metrics *metrics.Collector
	engine  *gin.Engine
}

func New(conf config.Configuration) *Server {
	s := &Server{
		conf:    conf,
		client:  NewClient(conf.ForceIPv6),
		metrics: metrics.New(),
		srv: &http.Server{
			Addr:              net.JoinHostPort("", strconv.FormatInt(int64(conf.ServerPort), 10)),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	s.prober = discovery.NewHTTPProber(s.client, conf.ProbeTimeout.Std())
	s.prober.UserAgent = "ipv6-checker/" + config.Version
	s.race = discovery.NewRace(s.prober, conf.RaceDeadline.Std())
	s.race.Observer = s.metrics

	s.buildRouter()
	return s
}

// Handler returns the router, for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(ctx context.Context) error {
	log.Info("server startup...")
	log.Infof("server configured with %d endpoints, probe timeout %s, race deadline %s",
		len(s.conf.Endpoints), s.prober.Timeout, s.race.Deadline)

	s.ctx, s.stop = context.WithCancelCause(ctx)
	defer s.stop(nil)

	go func() {
		<-s.ctx.Done()
		log.Info("server shutdown because:", context.Cause(s.ctx).Error())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(shutdownCtx)
	}()

	for {
		select {
		default:
		case <-s.ctx.Done():
			return nil
		}

		log.Info("server listen:", s.srv.Addr)
		err := s.srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		var err2 *os.SyscallError
		if errors.As(err, &err2) { // like: errors.Is(err, syscall.EADDRINUSE)
			log.Error(err)
			s.stop(err)
			return err
		}

		log.Warn("server:", err)
		time.Sleep(1000 * time.Millisecond)
	}
}
