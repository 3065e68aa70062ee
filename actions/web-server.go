package actions

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/helper"
	"github.com/relloyd/tablesync/logger"
	"github.com/robfig/cron/v3"
)

const (
	urlContextRuns       = "/runs"
	runShutdownWaitTime  = 30 * time.Second
	httpShutdownWaitTime = 15 * time.Second
)

type WebServerConfig struct {
	LogLevel                  string `errorTxt:"log level" mandatory:"yes"`
	Scheme                    string
	Addr                      net.IP
	Port                      int
	Schedule                  string           // optional cron expression used to start runs.
	Run                       *TableSyncConfig `errorTxt:"run config" mandatory:"yes"`
	StatsDumpFrequencySeconds int
	StackDumpOnPanic          bool
}

func RunWebServer(web *WebServerConfig) error {
	if web == nil {
		return errors.New("nil pointer to web server config supplied")
	}
	// Check if we have valid input params.
	err := helper.ValidateStructIsPopulated(web)
	if err != nil {
		return err
	}
	log := logger.NewLogger("tablesync", web.LogLevel, web.StackDumpOnPanic)
	reg := newRunRegistry(log, getJobFactory(web.Run), web.StatsDumpFrequencySeconds)
	// Start the scheduler.
	var c *cron.Cron
	if web.Schedule != "" {
		if c, err = startScheduler(log, web.Schedule, reg); err != nil {
			return err
		}
	}
	// Start the web server.
	srv, chanStopServer := runServer(log, web, reg)
	// Block & wait for completion.
	return waitForServer(log, srv, chanStopServer, reg, c)
}

// startScheduler starts runs on the cron schedule.
// A scheduled run is skipped while another run is in progress.
func startScheduler(log logger.Logger, schedule string, reg *runRegistry) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		runId, err := reg.StartRun()
		if errors.Is(err, errRunInProgress) {
			log.Info("Skipping scheduled run since a run is already in progress")
			return
		} else if err != nil {
			log.Error("Unable to start scheduled run: ", err)
			return
		}
		log.Info("Started scheduled run ", runId)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule %q", schedule)
	}
	c.Start()
	log.Info("Runs scheduled using cron expression ", schedule)
	return c, nil
}

func newRouter(log logger.Logger, reg *runRegistry, chanStopServer chan string) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/stop", GetHandlerStopServer(log, chanStopServer))
	r.Path("/health").HandlerFunc(GetHandlerHealth(log))
	r.Path(urlContextRuns).Methods(http.MethodPost).HandlerFunc(GetHandlerRunStart(log, reg))
	r.Path(urlContextRuns).Methods(http.MethodGet).HandlerFunc(GetHandlerRunList(log, reg))
	r.Path(urlContextRuns + "/{runId}").Methods(http.MethodGet).HandlerFunc(GetHandlerRunStatus(log, reg))
	r.Path(urlContextRuns + "/{runId}/stats").Methods(http.MethodGet).HandlerFunc(GetHandlerRunStats(log, reg))
	r.Path(urlContextRuns + "/{runId}/stop").Methods(http.MethodPost).HandlerFunc(GetHandlerRunStop(log, reg))
	return r
}

// runServer starts a web server and returns:
// 1) the server; and
// 2) a channel that can be used to stop the web server
func runServer(log logger.Logger, web *WebServerConfig, reg *runRegistry) (*http.Server, chan string) {
	chanStopServer := make(chan string, 1)
	// Configure HTTP server.
	srv := &http.Server{ // Good practice to set timeouts to avoid Slowloris attacks.
		Addr:         fmt.Sprintf("%v:%v", web.Addr, web.Port),
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      newRouter(log, reg, chanStopServer), // supply our instance of gorilla/mux.
	}
	// Run HTTP server non-blocking.
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			if err == http.ErrServerClosed {
				log.Info(err)
			} else {
				log.Panic(err)
			}
		}
	}()
	scheme := strings.ToLower(web.Scheme)
	if scheme == "" {
		scheme = "http"
	}
	log.Info(fmt.Sprintf("Listening on %v://%v:%v", scheme, web.Addr, web.Port))
	return srv, chanStopServer
}

func waitForServer(log logger.Logger, srv *http.Server, chanStopServer chan string, reg *runRegistry, c *cron.Cron) error {
	// Block & wait for shutdown signals.
	// Accept graceful shutdowns when quit via SIGINT (Ctrl+C)
	// SIGKILL, SIGQUIT or SIGTERM (Ctrl+\) will not be caught.
	chanOS := make(chan os.Signal, 1)
	signal.Notify(chanOS, os.Interrupt) // request signals be sent to chanOS.
	defer signal.Stop(chanOS)
	select {
	case <-chanStopServer:
	case <-chanOS:
	}
	fmt.Println() // print new line char for clean looking CLI.
	log.Info("Shutting down web server...")
	if c != nil { // if there is a scheduler...
		<-c.Stop().Done() // wait for scheduled jobs to be started.
	}
	// Stop the run in progress and refuse new ones.
	if !reg.Shutdown(runShutdownWaitTime) {
		log.Warn("Timeout waiting for the current run to stop")
	}
	// Shutdown web server now.
	ctx, cancel := context.WithTimeout(context.Background(), httpShutdownWaitTime) // create a timeout to wait for.
	defer cancel()
	return srv.Shutdown(ctx) // Doesn't block if no connections, but will otherwise wait until the timeout deadline.
}
