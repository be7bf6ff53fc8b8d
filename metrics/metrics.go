package metrics

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// preCollectFns are invoked right before a scrape so gauges that mirror
// internal state (cache sizes, visitor counts) can refresh themselves.
var (
	preCollectMutex sync.Mutex
	preCollectFns   []func()
)

func AddPreCollectFn(fn func()) {
	preCollectMutex.Lock()
	preCollectFns = append(preCollectFns, fn)
	preCollectMutex.Unlock()
}

type collectHandler struct {
	handler         http.Handler
	lastCollectTime time.Time
}

func GetMetricsHandler() http.Handler {
	return &collectHandler{
		handler:         promhttp.Handler(),
		lastCollectTime: time.Now(),
	}
}

func (ch *collectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if time.Since(ch.lastCollectTime) > 1*time.Second {
		preCollectMutex.Lock()
		fns := preCollectFns
		preCollectMutex.Unlock()

		for _, fn := range fns {
			fn()
		}
		ch.lastCollectTime = time.Now()
	}

	ch.handler.ServeHTTP(w, r)
}

// StartMetricsServer serves the prometheus scrape endpoint on its own listener.
func StartMetricsServer(logger logrus.FieldLogger, host string, port string) error {
	if host == "" {
		host = "127.0.0.1"
	}
	if port == "" {
		port = "9090"
	}

	srv := &http.Server{
		Addr:    host + ":" + port,
		Handler: GetMetricsHandler(),
	}

	listener, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return err
	}

	go func() {
		logger.Infof("metrics server listening on %v", srv.Addr)
		if err := srv.Serve(listener); err != nil {
			logger.WithError(err).Fatal("Error serving metrics")
		}
	}()

	return nil
}
