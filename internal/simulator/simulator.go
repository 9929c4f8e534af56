package simulator

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/naps/internal/config"
	"github.com/turtacn/naps/internal/infrastructure/monitoring"
	"github.com/turtacn/naps/pkg/constants"
	"github.com/turtacn/naps/pkg/logger"
)

// Status is a point-in-time snapshot of the simulation loop.
type Status struct {
	Running         bool      `json:"running"`
	Scenario        string    `json:"scenario"`
	IntervalSeconds int       `json:"interval_seconds"`
	TargetDevices   int       `json:"target_devices"`
	PoolSize        int       `json:"pool_size"`
	CyclesCompleted uint64    `json:"cycles_completed"`
	LastCycleAt     time.Time `json:"last_cycle_at,omitempty"`
	LastCycleMillis int64     `json:"last_cycle_millis"`
}

// Simulator drives the simulation loop: it keeps the device pool at its
// target size, advances device state, generates events and incidents, and
// feeds sessions into the analysis pipeline on every tick.
type Simulator struct {
	pool    *DevicePool
	gen     *EventGenerator
	metrics *monitoring.Metrics
	log     logger.Logger

	mu      sync.Mutex
	cfg     config.SimulatorConfig
	running bool
	cancel  context.CancelFunc
	done    chan struct{}

	cycles        uint64
	lastCycleAt   time.Time
	lastCycleTime time.Duration
}

// New creates a simulator from the given configuration.
func New(cfg config.SimulatorConfig, pool *DevicePool, gen *EventGenerator, metrics *monitoring.Metrics, log logger.Logger) *Simulator {
	return &Simulator{
		pool:    pool,
		gen:     gen,
		metrics: metrics,
		log:     log.WithComponent(constants.ComponentSimulator),
		cfg:     cfg,
	}
}

// Start launches the simulation loop. It is a no-op when the simulator is
// disabled or already running.
func (s *Simulator) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	if !s.cfg.Enabled {
		s.log.Info(ctx, "simulator is disabled")
		return
	}

	loopCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})
	s.running = true

	s.log.Info(ctx, "starting network simulator", logger.Fields{
		"interval_seconds": s.cfg.Interval,
		"devices":          s.cfg.Devices,
		"scenario":         s.cfg.Scenario,
	})

	go s.run(loopCtx)
}

// Stop halts the simulation loop and waits for the current cycle to finish.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	cancel := s.cancel
	done := s.done
	s.mu.Unlock()

	cancel()
	<-done
	s.log.Info(context.Background(), "network simulator stopped")
}

// Running reports whether the loop is active.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Status returns a snapshot of the loop's state.
func (s *Simulator) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:         s.running,
		Scenario:        s.cfg.Scenario,
		IntervalSeconds: s.cfg.Interval,
		TargetDevices:   s.cfg.Devices,
		PoolSize:        s.pool.Size(),
		CyclesCompleted: s.cycles,
		LastCycleAt:     s.lastCycleAt,
		LastCycleMillis: s.lastCycleTime.Milliseconds(),
	}
}

// Config returns a copy of the current simulator configuration.
func (s *Simulator) Config() config.SimulatorConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// Configure applies a new simulator configuration. Interval changes take
// effect on the next tick.
func (s *Simulator) Configure(cfg config.SimulatorConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	s.log.Info(context.Background(), "simulator reconfigured", logger.Fields{
		"interval_seconds": cfg.Interval,
		"devices":          cfg.Devices,
		"scenario":         cfg.Scenario,
	})
}

func (s *Simulator) run(ctx context.Context) {
	defer close(s.done)

	// First cycle fires immediately so the pool is populated at startup.
	s.tick(ctx)

	timer := time.NewTimer(s.interval())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.tick(ctx)
			timer.Reset(s.interval())
		}
	}
}

func (s *Simulator) interval() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg.TickInterval()
}

// tick runs one full simulation cycle.
func (s *Simulator) tick(ctx context.Context) {
	s.mu.Lock()
	cfg := s.cfg
	s.mu.Unlock()

	started := time.Now()
	s.log.Debug(ctx, "starting simulation cycle", logger.Fields{"scenario": cfg.Scenario})

	s.pool.Reconcile(ctx, cfg.Devices, cfg.Scenario, cfg.DistributionFor(cfg.Scenario))
	devices := s.pool.Tick(ctx, cfg.Scenario)

	sessions := s.gen.SubmitSessions(ctx, devices)
	events := s.gen.GenerateNetworkEvents(ctx, devices, cfg.Scenario, &cfg)

	incidents := 0
	if cfg.ThreatDetection {
		incidents = s.gen.GenerateSecurityIncidents(ctx, devices, cfg.SecurityIncidentProbability)
	}

	riskUpdates := 0
	if cfg.RiskScoreUpdates {
		riskUpdates = s.pool.UpdateRiskScores(ctx, devices)
	}

	triggered := 0
	if cfg.PolicyRecommendations {
		triggered = s.gen.TriggerAnalysis(ctx, devices, events)
	}

	elapsed := time.Since(started)
	s.metrics.SimulationCycles.Inc()

	s.mu.Lock()
	s.cycles++
	s.lastCycleAt = started
	s.lastCycleTime = elapsed
	s.mu.Unlock()

	s.log.Info(ctx, "simulation cycle completed", logger.Fields{
		"devices":      len(devices),
		"sessions":     sessions,
		"events":       len(events),
		"incidents":    incidents,
		"risk_updates": riskUpdates,
		"triggered":    triggered,
		"elapsed_ms":   elapsed.Milliseconds(),
	})
}
