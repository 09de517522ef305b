package obwire

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"time"

	"github.com/gorilla/mux"
	"github.com/pingcap/fn"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hugozhu/obclient/config"
	"github.com/hugozhu/obclient/errors"
	"github.com/hugozhu/obclient/logutil"
)

// status reported on the /status endpoint.
type status struct {
	PID       int    `json:"pid"`
	Target    string `json:"target"`
	StartedAt string `json:"started_at"`
}

var processStart = time.Now()

// StartStatusServer starts the HTTP status listener exposing prometheus
// metrics, pprof and the effective config. It returns the server so the
// caller can shut it down.
func StartStatusServer(cfg *config.Config) *http.Server {
	router := mux.NewRouter()

	// HTTP path for prometheus.
	router.Handle("/metrics", promhttp.Handler()).Name("Metrics")

	// HTTP path for the effective client config.
	router.Handle("/config", fn.Wrap(func() (*config.Config, error) {
		return config.GetGlobalConfig(), nil
	}))

	router.HandleFunc("/status", func(w http.ResponseWriter, _ *http.Request) {
		st := status{
			PID:       os.Getpid(),
			Target:    cfg.Addr(),
			StartedAt: processStart.Format(time.RFC3339),
		}
		w.Header().Set("Content-Type", "application/json")
		errors.Log(errors.Trace(json.NewEncoder(w).Encode(st)))
	})

	serverMux := http.NewServeMux()
	serverMux.Handle("/", router)

	serverMux.HandleFunc("/debug/pprof/", pprof.Index)
	serverMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	serverMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	serverMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	serverMux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	addr := fmt.Sprintf("%s:%d", cfg.Status.StatusHost, cfg.Status.StatusPort)
	srv := &http.Server{Addr: addr, Handler: serverMux}
	go func() {
		logutil.BgLogger().Info("status server is running", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logutil.BgLogger().Error("status server exited", zap.Error(err))
		}
	}()
	return srv
}
