package actions

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/relloyd/tablesync/logger"
	"github.com/relloyd/tablesync/stats"
)

type WebServerResponse uint32

const (
	Okay WebServerResponse = iota + 1
	Error
)

func (w WebServerResponse) MarshalJSON() ([]byte, error) {
	var retval string
	switch w {
	case Okay:
		retval = "ok"
	case Error:
		retval = "error"
	default:
		err := fmt.Errorf("unhandled WebServerResponse value in MarshalJSON() conversion")
		return nil, err
	}
	return json.Marshal(retval)
}

type ResponseSimple struct {
	ServerStatus WebServerResponse `json:"status"`
}

type ResponseRunList struct {
	Status  WebServerResponse `json:"status"`
	RunList []RunInfo         `json:"runs"`
}

type ResponseRunStats struct {
	Status       WebServerResponse `json:"status"`
	Message      string            `json:"message"`
	StatsSummary *stats.RunStats   `json:"runStats,omitempty"`
}

type ResponseRunStatus struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	Run     *RunInfo          `json:"run,omitempty"`
}

type ResponseRunAction struct {
	Status  WebServerResponse `json:"status"`
	Message string            `json:"message"`
	RunId   string            `json:"runId"`
}

func GetHandlerHealth(log logger.Logger) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerStopServer(log logger.Logger, chanStop chan string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		select {
		case chanStop <- "stop":
			log.Info("Stop signal sent")
		default: // a stop is already pending.
		}
		respond(log, w, http.StatusOK, ResponseSimple{ServerStatus: Okay})
	}
}

func GetHandlerRunStart(log logger.Logger, reg *runRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := reg.StartRun()
		switch {
		case errors.Is(err, errRunInProgress), errors.Is(err, errServerStopping):
			log.Info("HTTP request to start a run refused: ", err)
			respond(log, w, http.StatusConflict, ResponseRunAction{Status: Error, Message: err.Error()})
		case err != nil:
			log.Error("Unable to start run: ", err)
			respond(log, w, http.StatusInternalServerError, ResponseRunAction{Status: Error, Message: err.Error()})
		default:
			log.Info("Started run ", id)
			respond(log, w, http.StatusOK, ResponseRunAction{Status: Okay, Message: "run started", RunId: id})
		}
	}
}

func GetHandlerRunStop(log logger.Logger, reg *runRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		err := reg.Stop(id)
		switch {
		case errors.Is(err, errRunNotFound):
			log.Info("HTTP request to stop run ", id, " that doesn't exist.")
			respond(log, w, http.StatusNotFound, ResponseRunAction{Status: Error, Message: err.Error(), RunId: id})
		case errors.Is(err, errRunNotRunning):
			log.Info("HTTP request to stop run ", id, " which has already finished.")
			respond(log, w, http.StatusOK, ResponseRunAction{Status: Error, Message: err.Error(), RunId: id})
		default:
			log.Info("Stopping run ", id)
			respond(log, w, http.StatusOK, ResponseRunAction{Status: Okay, Message: "stopping after the current table", RunId: id})
		}
	}
}

func GetHandlerRunList(log logger.Logger, reg *runRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		respond(log, w, http.StatusOK, ResponseRunList{Status: Okay, RunList: reg.List()})
	}
}

func GetHandlerRunStats(log logger.Logger, reg *runRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		s, err := reg.GetStats(id)
		if err != nil { // if the run doesn't exist...
			log.Info("HTTP request to fetch stats for run ", id, " that doesn't exist.")
			respond(log, w, http.StatusNotFound, ResponseRunStats{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		respond(log, w, http.StatusOK, ResponseRunStats{Status: Okay, StatsSummary: &s})
	}
}

func GetHandlerRunStatus(log logger.Logger, reg *runRegistry) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["runId"]
		ri, err := reg.Get(id)
		if err != nil { // if the run doesn't exist...
			log.Info("HTTP request for status of run ", id, " that doesn't exist.")
			respond(log, w, http.StatusNotFound, ResponseRunStatus{Status: Error, Message: fmt.Sprintf("run %v does not exist", id)})
			return
		}
		respond(log, w, http.StatusOK, ResponseRunStatus{Status: Okay, Run: &ri})
	}
}

// respond will write the status code and the JSON form of i to w.
func respond(log logger.Logger, w http.ResponseWriter, statusCode int, i interface{}) {
	j, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		log.Error("Unable to marshal HTTP response: ", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err = w.Write(j); err != nil {
		log.Error("Unable to write HTTP response: ", err)
	}
}
