package cmd

import (
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/AdguardTeam/golibs/log"
	"github.com/getsentry/sentry-go"
	"golang.org/x/sys/unix"
)

// sentryFlushTimeout is how long the shutdown waits for buffered error
// reports.
const sentryFlushTimeout = 2 * time.Second

// service is a named part of the program that is closed on shutdown.
type service struct {
	io.Closer

	name string
}

// signalHandler processes incoming signals and shuts services down.
type signalHandler struct {
	signal chan os.Signal

	// services are closed in order before the application exits, so the
	// ones that use others go first.
	services []service
}

// Exit status constants.
const (
	statusSuccess = 0
	statusError   = 1
)

// handle processes OS signals.  status is [statusSuccess] on success and
// [statusError] on error.
func (h *signalHandler) handle() (status int) {
	defer log.OnPanic("signalHandler.handle")

	for sig := range h.signal {
		log.Info("sighdlr: received signal %q", sig)

		switch sig {
		case
			unix.SIGINT,
			unix.SIGQUIT,
			unix.SIGTERM:
			return h.shutdown()
		}
	}

	// Shouldn't happen, since h.signal is currently never closed.
	return statusError
}

// shutdown closes all services and flushes error reports.  status is
// [statusSuccess] on success and [statusError] on error.
func (h *signalHandler) shutdown() (status int) {
	log.Info("sighdlr: shutting down services")
	for _, svc := range h.services {
		err := svc.Close()
		if err != nil {
			log.Error("sighdlr: shutting down %s: %s", svc.name, err)
			sentry.CaptureException(err)
			status = statusError
		}
	}

	if !sentry.Flush(sentryFlushTimeout) {
		log.Debug("sighdlr: not all error reports were sent")
	}

	log.Info("sighdlr: shutting down")

	return status
}

// newSignalHandler returns a new signalHandler that shuts down svcs.
func newSignalHandler(svcs ...service) (h signalHandler) {
	h = signalHandler{
		signal:   make(chan os.Signal, 1),
		services: svcs,
	}

	signal.Notify(h.signal, unix.SIGINT, unix.SIGQUIT, unix.SIGTERM)

	return h
}
