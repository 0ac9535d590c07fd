package server

import (
	"net/http"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartPprofServer runs a pprof endpoint on its own port so profiling
// traffic never mixes with the API listener.
func StartPprofServer(addr string, logger *zap.Logger) {
	go func() {
		r := gin.New()
		pprof.Register(r)

		logger.Info("Starting pprof server", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, r); err != nil && err != http.ErrServerClosed {
			logger.Error("pprof server failed", zap.Error(err))
		}
	}()
}
