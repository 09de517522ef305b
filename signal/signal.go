package signal

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/hugozhu/obclient/logutil"
	"go.uber.org/zap"
)

// SetupSignalHandler installs a handler for the process exit signals.
func SetupSignalHandler(shudownFunc func(bool)) {
	closeSignalChan := make(chan os.Signal, 1)
	signal.Notify(closeSignalChan,
		syscall.SIGHUP,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT)

	go func() {
		sig := <-closeSignalChan
		logutil.BgLogger().Info("got signal to exit", zap.Stringer("signal", sig))
		shudownFunc(sig == syscall.SIGQUIT)
	}()
}
