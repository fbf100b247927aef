// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package extapitest provides an in-process Extensions API for tests.
//
// The server hands out queued events in order on /extension/event/next and
// answers with a spindown SHUTDOWN once the queue is drained, so that an
// event loop under test always terminates. See Server.HoldNext for a
// server that waits instead.
package extapitest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/corp-demo/lambda-extensions/lambda/extapi/model"
	"github.com/corp-demo/lambda-extensions/lambda/fatalerror"
	"github.com/go-chi/chi"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	errAgentNameInvalid       string = "Extension.InvalidExtensionName"
	errAgentIdentifierUnknown string = "Extension.UnknownExtensionIdentifier"
	errAgentMissingHeader     string = "Extension.MissingHeader"
	errInvalidEventType       string = "Extension.InvalidEventType"
	errInvalidRequestFormat   string = "InvalidRequestFormat"
)

type ctxKey int

const agentIDCtxKey ctxKey = iota

// Registration is a successful /extension/register call
type Registration struct {
	Name   string
	ID     uuid.UUID
	Events []model.EventType
}

// ErrorReport is a call to /extension/init/error or /extension/exit/error.
// ErrorType is the header value, reduced to Unknown when it is not an
// Extension.* error type.
type ErrorReport struct {
	ExtensionID uuid.UUID
	ErrorType   string
	Body        model.ErrorRequest
}

// Server is a fake Extensions API backed by httptest
type Server struct {
	FunctionName    string
	FunctionVersion string
	Handler         string

	httpServer *httptest.Server
	closed     chan struct{}
	closeOnce  sync.Once

	mu            sync.Mutex
	holdNext      bool
	events        []interface{}
	registrations []Registration
	initErrors    []ErrorReport
	exitErrors    []ErrorReport
	nextCalls     int
}

// NewServer starts a server which delivers events in order. Each event is
// a *model.AgentInvokeEvent, *model.AgentShutdownEvent or json.RawMessage.
func NewServer(events ...interface{}) *Server {
	s := &Server{
		FunctionName:    "test_function",
		FunctionVersion: "$LATEST",
		Handler:         "bootstrap",
		events:          events,
		closed:          make(chan struct{}),
	}
	s.httpServer = httptest.NewServer(s.router())
	return s
}

// RuntimeAPI is the host:port value for AWS_LAMBDA_RUNTIME_API
func (s *Server) RuntimeAPI() string {
	return strings.TrimPrefix(s.httpServer.URL, "http://")
}

// Close shuts the server down, releasing held /extension/event/next requests
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closed) })
	s.httpServer.Close()
}

// HoldNext makes /extension/event/next block, once the queue is drained,
// until the request is cancelled instead of answering with a SHUTDOWN.
func (s *Server) HoldNext() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holdNext = true
}

// Registrations returns successful registrations
func (s *Server) Registrations() []Registration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Registration(nil), s.registrations...)
}

// InitErrors returns reports received on /extension/init/error
func (s *Server) InitErrors() []ErrorReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ErrorReport(nil), s.initErrors...)
}

// ExitErrors returns reports received on /extension/exit/error
func (s *Server) ExitErrors() []ErrorReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ErrorReport(nil), s.exitErrors...)
}

// NextCalls is the number of served /extension/event/next requests
func (s *Server) NextCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextCalls
}

// InvokeEvent builds an INVOKE event
func InvokeEvent(requestID, invokedFunctionArn string, deadlineMs uint64) *model.AgentInvokeEvent {
	return &model.AgentInvokeEvent{
		AgentEvent: &model.AgentEvent{
			EventType:  model.InvokeEventType,
			DeadlineMs: deadlineMs,
		},
		RequestID:          requestID,
		InvokedFunctionArn: invokedFunctionArn,
	}
}

// TracedInvokeEvent is InvokeEvent with an X-Ray trace header value
func TracedInvokeEvent(requestID, invokedFunctionArn string, deadlineMs uint64, traceID string) *model.AgentInvokeEvent {
	event := InvokeEvent(requestID, invokedFunctionArn, deadlineMs)
	event.Tracing = model.NewXRayTracing(traceID)
	return event
}

// ShutdownEvent builds a SHUTDOWN event
func ShutdownEvent(reason model.ShutdownReason, deadlineMs uint64) *model.AgentShutdownEvent {
	return &model.AgentShutdownEvent{
		AgentEvent: &model.AgentEvent{
			EventType:  model.ShutdownEventType,
			DeadlineMs: deadlineMs,
		},
		ShutdownReason: reason,
	}
}

func (s *Server) router() http.Handler {
	router := chi.NewRouter()
	router.Use(accessLogMiddleware)

	router.Route(model.APIVersion+"/extension", func(r chi.Router) {
		r.Post("/register", s.register)

		r.With(s.agentIdentifierValidator).Get("/event/next", s.next)
		r.With(s.agentIdentifierValidator).Post("/init/error", s.reportHandler(&s.initErrors))
		r.With(s.agentIdentifierValidator).Post("/exit/error", s.reportHandler(&s.exitErrors))
	})

	return router
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	agentName := r.Header.Get(model.LambdaAgentName)
	if agentName == "" {
		renderForbidden(w, r, errAgentNameInvalid, "Empty extension name")
		return
	}

	var registerRequest model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&registerRequest); err != nil {
		renderForbidden(w, r, errInvalidRequestFormat, err.Error())
		return
	}

	for _, e := range registerRequest.Events {
		if e != model.InvokeEventType && e != model.ShutdownEventType {
			renderForbidden(w, r, errInvalidEventType, "%s: ErrorInvalidEventType", e)
			return
		}
	}

	agentID := uuid.New()

	s.mu.Lock()
	s.registrations = append(s.registrations, Registration{Name: agentName, ID: agentID, Events: registerRequest.Events})
	s.mu.Unlock()

	w.Header().Set(model.LambdaAgentIdentifier, agentID.String())
	render.JSON(w, r, &model.ExtensionRegisterResponse{
		FunctionName:    s.FunctionName,
		FunctionVersion: s.FunctionVersion,
		Handler:         s.Handler,
	})
	log.Debugf("External agent %s(%s) registered, subscribed to %v", agentName, agentID, registerRequest.Events)
}

func (s *Server) next(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.nextCalls++
	var event interface{}
	hold := false
	if len(s.events) > 0 {
		event, s.events = s.events[0], s.events[1:]
	} else if s.holdNext {
		hold = true
	} else {
		event = ShutdownEvent(model.ShutdownReasonSpindown, 0)
	}
	s.mu.Unlock()

	if hold {
		select {
		case <-r.Context().Done():
		case <-s.closed:
		}
		return
	}

	if raw, ok := event.(json.RawMessage); ok {
		w.Header().Set("Content-Type", "application/json")
		w.Write(raw)
		return
	}

	render.JSON(w, r, event)
}

func (s *Server) reportHandler(reports *[]ErrorReport) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		errorType := r.Header.Get(model.LambdaAgentFunctionErrorType)
		if errorType == "" {
			renderForbidden(w, r, errAgentMissingHeader, "%s not found", model.LambdaAgentFunctionErrorType)
			return
		}

		report := ErrorReport{
			ExtensionID: r.Context().Value(agentIDCtxKey).(uuid.UUID),
			ErrorType:   string(fatalerror.GetValidExtensionErrorType(errorType)),
		}
		if body, err := io.ReadAll(r.Body); err == nil && len(body) > 0 {
			if err := json.Unmarshal(body, &report.Body); err != nil {
				renderForbidden(w, r, errInvalidRequestFormat, err.Error())
				return
			}
		}

		s.mu.Lock()
		*reports = append(*reports, report)
		s.mu.Unlock()

		render.Status(r, http.StatusAccepted)
		render.JSON(w, r, &model.StatusResponse{Status: "OK"})
	}
}

// agentIdentifierValidator validates that the request contains a registered
// agent identifier in the headers
func (s *Server) agentIdentifierValidator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		agentIdentifier := r.Header.Get(model.LambdaAgentIdentifier)
		if len(agentIdentifier) == 0 {
			renderForbidden(w, r, model.ErrAgentIdentifierMissing, "Missing Lambda-Extension-Identifier header")
			return
		}
		agentID, err := uuid.Parse(agentIdentifier)
		if err != nil {
			renderForbidden(w, r, model.ErrAgentIdentifierInvalid, "Invalid Lambda-Extension-Identifier")
			return
		}
		if !s.isRegistered(agentID) {
			renderForbidden(w, r, errAgentIdentifierUnknown, "Unknown extension %s", agentID)
			return
		}

		r = r.WithContext(context.WithValue(r.Context(), agentIDCtxKey, agentID))
		next.ServeHTTP(w, r)
	})
}

func (s *Server) isRegistered(agentID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, registration := range s.registrations {
		if registration.ID == agentID {
			return true
		}
	}
	return false
}

func accessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Debug("API request - ", r.Method, " ", r.URL, ", Headers:", r.Header)
		next.ServeHTTP(w, r)
	})
}

func renderForbidden(w http.ResponseWriter, r *http.Request, errorType string, format string, args ...interface{}) {
	render.Status(r, http.StatusForbidden)
	render.JSON(w, r, &model.ErrorResponse{
		ErrorType:    errorType,
		ErrorMessage: fmt.Sprintf(format, args...),
	})
}
