package simulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/turtacn/naps/internal/config"
	"github.com/turtacn/naps/internal/infrastructure/publish"
	"github.com/turtacn/naps/pkg/logger"
)

func testSimulatorConfig() config.SimulatorConfig {
	return config.SimulatorConfig{
		Enabled:                     true,
		Interval:                    60,
		Devices:                     8,
		Scenario:                    "office",
		RiskScoreUpdates:            true,
		ThreatDetection:             true,
		PolicyRecommendations:       true,
		SecurityIncidentProbability: 0.3,
		NetworkEventProbability:     0.1,
		MaxEventsPerCycle:           10,
		Distributions: map[string]config.DeviceDistribution{
			"office": officeDistribution(),
		},
	}
}

func newTestSimulator(cfg config.SimulatorConfig, sink SessionSink) *Simulator {
	log := logger.NewNoopLogger()
	pool := NewDevicePool(testMetrics, log)
	gen := NewEventGenerator(publish.NewNoopPublisher(), sink, testMetrics, log)
	return New(cfg, pool, gen, testMetrics, log)
}

func TestTickPopulatesPoolAndAdvancesCounters(t *testing.T) {
	sim := newTestSimulator(testSimulatorConfig(), &recordingSink{})

	sim.tick(context.Background())

	status := sim.Status()
	assert.Equal(t, 8, status.PoolSize)
	assert.Equal(t, uint64(1), status.CyclesCompleted)
	assert.False(t, status.LastCycleAt.IsZero())

	sim.tick(context.Background())
	assert.Equal(t, uint64(2), sim.Status().CyclesCompleted)
}

func TestTickSubmitsSessionForEveryDevice(t *testing.T) {
	sink := &recordingSink{}
	sim := newTestSimulator(testSimulatorConfig(), sink)

	sim.tick(context.Background())

	// Incident and analysis triggers can add more, never fewer.
	assert.GreaterOrEqual(t, sink.count(), 8)
}

func TestStartIsNoopWhenDisabled(t *testing.T) {
	cfg := testSimulatorConfig()
	cfg.Enabled = false
	sim := newTestSimulator(cfg, &recordingSink{})

	sim.Start(context.Background())

	assert.False(t, sim.Running())
}

func TestStartAndStop(t *testing.T) {
	sim := newTestSimulator(testSimulatorConfig(), &recordingSink{})

	sim.Start(context.Background())
	assert.True(t, sim.Running())

	// Starting twice is safe.
	sim.Start(context.Background())
	assert.True(t, sim.Running())

	sim.Stop()
	assert.False(t, sim.Running())

	// Stopping twice is safe.
	sim.Stop()
	assert.False(t, sim.Running())

	// The initial cycle ran before shutdown.
	assert.GreaterOrEqual(t, sim.Status().CyclesCompleted, uint64(1))
}

func TestConfigureChangesTickParameters(t *testing.T) {
	sim := newTestSimulator(testSimulatorConfig(), &recordingSink{})
	sim.tick(context.Background())
	assert.Equal(t, 8, sim.Status().PoolSize)

	cfg := testSimulatorConfig()
	cfg.Devices = 3
	cfg.Scenario = "datacenter"
	sim.Configure(cfg)

	sim.tick(context.Background())

	status := sim.Status()
	assert.Equal(t, 3, status.PoolSize)
	assert.Equal(t, "datacenter", status.Scenario)
	assert.Equal(t, 3, status.TargetDevices)
}

func TestStageFlagsDisableWork(t *testing.T) {
	cfg := testSimulatorConfig()
	cfg.RiskScoreUpdates = false
	cfg.ThreatDetection = false
	cfg.PolicyRecommendations = false
	cfg.NetworkEventProbability = 0.0
	cfg.SecurityIncidentProbability = 1.0
	sink := &recordingSink{}
	sim := newTestSimulator(cfg, sink)

	sim.tick(context.Background())

	// With threat detection and recommendations off, nothing reaches the
	// pipeline even at full incident probability.
	assert.Zero(t, sink.count())
}
