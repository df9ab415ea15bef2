// Package http provides HTTP handlers for the privileged print-management
// operations. Every route funnels through the gate dispatcher, so no handler
// can reach the backend without passing the credential and permission checks.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	"github.com/printops/printserver/internal/gate"
	"github.com/printops/printserver/internal/httputil"
	"github.com/printops/printserver/internal/printer/backend"
	printerDomain "github.com/printops/printserver/internal/printer/domain"
	"github.com/printops/printserver/internal/printer/http/dto"
	customValidation "github.com/printops/printserver/internal/validation"
)

// PrinterHandler handles HTTP requests for print-management operations.
type PrinterHandler struct {
	dispatcher *gate.Dispatcher
	backend    backend.PrinterBackend
	service    string
	logger     *slog.Logger
}

// NewPrinterHandler creates a new printer handler with required dependencies.
// The service name becomes the route prefix under /v1.
func NewPrinterHandler(
	dispatcher *gate.Dispatcher,
	printerBackend backend.PrinterBackend,
	service string,
	logger *slog.Logger,
) *PrinterHandler {
	return &PrinterHandler{
		dispatcher: dispatcher,
		backend:    printerBackend,
		service:    service,
		logger:     logger,
	}
}

// RegisterRoutes registers one POST route per operation plus the discovery
// endpoint under /v1/<service>.
func (h *PrinterHandler) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/v1/" + h.service)

	group.POST("/print", h.PrintHandler)
	group.POST("/queue", h.QueueHandler)
	group.POST("/topQueue", h.TopQueueHandler)
	group.POST("/start", h.StartHandler)
	group.POST("/stop", h.StopHandler)
	group.POST("/restart", h.RestartHandler)
	group.POST("/status", h.StatusHandler)
	group.POST("/readConfig", h.ReadConfigHandler)
	group.POST("/setConfig", h.SetConfigHandler)

	group.GET("/operations", h.OperationsHandler)
}

// OperationsHandler lists the operation surface.
// GET /v1/<service>/operations - No authentication required; the set is
// static and public, only invoking an operation is gated.
func (h *PrinterHandler) OperationsHandler(c *gin.Context) {
	operations := printerDomain.Operations()
	names := make([]string, len(operations))
	for i, op := range operations {
		names[i] = string(op)
	}

	c.JSON(http.StatusOK, dto.OperationsResponse{
		Service:    h.service,
		Operations: names,
	})
}

// PrintHandler submits a file to a printer.
// POST /v1/<service>/print
func (h *PrinterHandler) PrintHandler(c *gin.Context) {
	var req dto.PrintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	h.dispatch(c, printerDomain.OperationPrint, req.Credentials,
		func(ctx context.Context) (string, error) {
			return "", h.backend.Print(ctx, req.Filename, req.Printer)
		})
}

// QueueHandler lists the jobs queued on a printer.
// POST /v1/<service>/queue
func (h *PrinterHandler) QueueHandler(c *gin.Context) {
	var req dto.QueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	h.dispatch(c, printerDomain.OperationQueue, req.Credentials,
		func(ctx context.Context) (string, error) {
			return h.backend.Queue(ctx, req.Printer)
		})
}

// TopQueueHandler moves a job to the head of a printer's queue.
// POST /v1/<service>/topQueue
func (h *PrinterHandler) TopQueueHandler(c *gin.Context) {
	var req dto.TopQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	h.dispatch(c, printerDomain.OperationTopQueue, req.Credentials,
		func(ctx context.Context) (string, error) {
			return "", h.backend.TopQueue(ctx, req.Printer, req.Job)
		})
}

// StartHandler starts the print service.
// POST /v1/<service>/start
func (h *PrinterHandler) StartHandler(c *gin.Context) {
	h.serviceOperation(c, printerDomain.OperationStart, h.backend.Start)
}

// StopHandler stops the print service.
// POST /v1/<service>/stop
func (h *PrinterHandler) StopHandler(c *gin.Context) {
	h.serviceOperation(c, printerDomain.OperationStop, h.backend.Stop)
}

// RestartHandler restarts the print service, clearing all queues.
// POST /v1/<service>/restart
func (h *PrinterHandler) RestartHandler(c *gin.Context) {
	h.serviceOperation(c, printerDomain.OperationRestart, h.backend.Restart)
}

// StatusHandler reports the status of a printer.
// POST /v1/<service>/status
func (h *PrinterHandler) StatusHandler(c *gin.Context) {
	var req dto.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	h.dispatch(c, printerDomain.OperationStatus, req.Credentials,
		func(ctx context.Context) (string, error) {
			return h.backend.Status(ctx, req.Printer)
		})
}

// ReadConfigHandler reads a configuration parameter.
// POST /v1/<service>/readConfig
func (h *PrinterHandler) ReadConfigHandler(c *gin.Context) {
	var req dto.ReadConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	h.dispatch(c, printerDomain.OperationReadConfig, req.Credentials,
		func(ctx context.Context) (string, error) {
			return h.backend.ReadConfig(ctx, req.Parameter)
		})
}

// SetConfigHandler sets a configuration parameter.
// POST /v1/<service>/setConfig
func (h *PrinterHandler) SetConfigHandler(c *gin.Context) {
	var req dto.SetConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	h.dispatch(c, printerDomain.OperationSetConfig, req.Credentials,
		func(ctx context.Context) (string, error) {
			return "", h.backend.SetConfig(ctx, req.Parameter, req.Value)
		})
}

// serviceOperation handles the operations that carry only credentials.
func (h *PrinterHandler) serviceOperation(
	c *gin.Context,
	operation printerDomain.Operation,
	call func(ctx context.Context) error,
) {
	var req dto.ServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	h.dispatch(c, operation, req.Credentials,
		func(ctx context.Context) (string, error) {
			return "", call(ctx)
		})
}

// dispatch runs the gate pipeline and writes the response. The secret travels
// no further than the gate.Request; the backend call closes over the already
// validated payload only.
func (h *PrinterHandler) dispatch(
	c *gin.Context,
	operation printerDomain.Operation,
	credentials dto.Credentials,
	call gate.BackendCall,
) {
	result, err := h.dispatcher.Dispatch(c.Request.Context(), gate.Request{
		Operation: operation,
		Username:  credentials.Username,
		Secret:    credentials.Password,
		RequestID: requestid.Get(c),
	}, call)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.OperationResponse{
		Operation: string(operation),
		Result:    result,
	})
}
