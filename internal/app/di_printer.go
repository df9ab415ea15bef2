package app

import (
	"github.com/printops/printserver/internal/gate"
	"github.com/printops/printserver/internal/printer/backend"
	printerHTTP "github.com/printops/printserver/internal/printer/http"
)

// PrinterBackend returns the printer backend. The simulated in-memory backend
// stands in for real spooler integration; it honors the full operation
// surface so the gate and transport are exercised end to end.
func (c *Container) PrinterBackend() backend.PrinterBackend {
	c.backendInit.Do(func() {
		c.printerBackend = backend.NewMemoryBackend()
	})
	return c.printerBackend
}

// Dispatcher returns the gate dispatcher shared by every operation route.
func (c *Container) Dispatcher() (*gate.Dispatcher, error) {
	c.dispatcherInit.Do(func() {
		credentialUC, err := c.CredentialUseCase()
		if err != nil {
			c.initErrors["dispatcher"] = err
			return
		}

		accessUC, err := c.AccessUseCase()
		if err != nil {
			c.initErrors["dispatcher"] = err
			return
		}

		recorder, err := c.AuditRecorder()
		if err != nil {
			c.initErrors["dispatcher"] = err
			return
		}

		bm, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["dispatcher"] = err
			return
		}

		c.dispatcher = gate.NewDispatcher(credentialUC, accessUC, recorder, bm, c.Logger())
	})
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// PrinterHandler returns the HTTP handler for the operation surface.
func (c *Container) PrinterHandler() (*printerHTTP.PrinterHandler, error) {
	c.printerHandlerInit.Do(func() {
		dispatcher, err := c.Dispatcher()
		if err != nil {
			c.initErrors["printerHandler"] = err
			return
		}

		c.printerHandler = printerHTTP.NewPrinterHandler(
			dispatcher,
			c.PrinterBackend(),
			c.config.ServiceName,
			c.Logger(),
		)
	})
	if storedErr, exists := c.initErrors["printerHandler"]; exists {
		return nil, storedErr
	}
	return c.printerHandler, nil
}
