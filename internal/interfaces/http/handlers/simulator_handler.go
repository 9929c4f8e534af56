package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/turtacn/naps/internal/application/dto"
	"github.com/turtacn/naps/internal/domain/models"
	"github.com/turtacn/naps/internal/simulator"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/errors"
	"github.com/turtacn/naps/pkg/logger"
)

// SimulatorHandler controls the simulation loop and exposes its state.
type SimulatorHandler struct {
	sim    *simulator.Simulator
	pool   *simulator.DevicePool
	events *simulator.EventGenerator
	logger logger.Logger
}

// NewSimulatorHandler creates the simulator control handler.
func NewSimulatorHandler(sim *simulator.Simulator, pool *simulator.DevicePool, events *simulator.EventGenerator, log logger.Logger) *SimulatorHandler {
	return &SimulatorHandler{
		sim:    sim,
		pool:   pool,
		events: events,
		logger: log.WithComponent(constants.ComponentHTTP),
	}
}

// Status returns a snapshot of the simulation loop.
func (h *SimulatorHandler) Status(c *gin.Context) {
	respond(c, http.StatusOK, h.sim.Status())
}

// Start launches the simulation loop.
func (h *SimulatorHandler) Start(c *gin.Context) {
	h.sim.Start(c.Request.Context())
	respond(c, http.StatusOK, h.sim.Status())
}

// Stop halts the simulation loop.
func (h *SimulatorHandler) Stop(c *gin.Context) {
	h.sim.Stop()
	respond(c, http.StatusOK, h.sim.Status())
}

// Configure updates simulation parameters at runtime.
func (h *SimulatorHandler) Configure(c *gin.Context) {
	var req dto.SimulatorConfigureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	status := h.sim.Status()
	cfg := h.sim.Config()
	if req.Interval != nil {
		cfg.Interval = *req.Interval
	}
	if req.Devices != nil {
		cfg.Devices = *req.Devices
	}
	if req.Scenario != nil {
		cfg.Scenario = *req.Scenario
	}

	if cfg.TickInterval() < constants.MinTickInterval {
		respondError(c, errors.ErrInvalidConfig("interval below minimum"))
		return
	}
	if cfg.Devices < constants.MinDeviceCount || cfg.Devices > constants.MaxDeviceCount {
		respondError(c, errors.ErrInvalidConfig("device count out of range"))
		return
	}

	h.sim.Configure(cfg)
	h.logger.Info(c.Request.Context(), "simulator reconfigured via API", logger.Fields{
		"previous_scenario": status.Scenario,
		"scenario":          cfg.Scenario,
		"devices":           cfg.Devices,
	})
	respond(c, http.StatusOK, h.sim.Status())
}

// ListDevices returns the simulated device pool, optionally filtered by risk
// level.
func (h *SimulatorHandler) ListDevices(c *gin.Context) {
	var devices []*models.SimulatedDevice
	if level := c.Query("risk_level"); level != "" {
		devices = h.pool.DevicesByRiskLevel(models.DeviceRiskLevel(level))
	} else {
		devices = h.pool.Devices()
	}
	respond(c, http.StatusOK, gin.H{
		"devices": devices,
		"count":   len(devices),
	})
}

// GetDevice returns one simulated device.
func (h *SimulatorHandler) GetDevice(c *gin.Context) {
	deviceID := c.Param("device_id")
	device, ok := h.pool.DeviceByID(deviceID)
	if !ok {
		respondError(c, errors.ErrNotFound("device", deviceID))
		return
	}
	respond(c, http.StatusOK, device)
}

// ListEvents returns generated events, optionally filtered by severity.
func (h *SimulatorHandler) ListEvents(c *gin.Context) {
	var events []*models.NetworkEvent
	if severity := c.Query("severity"); severity != "" {
		events = h.events.EventsBySeverity(models.EventSeverity(severity))
	} else {
		events = h.events.Events()
	}
	respond(c, http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}
