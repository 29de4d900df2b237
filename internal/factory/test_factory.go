package factory

import (
	"time"

	"github.com/mcoot/rpschat/internal/api"
	"github.com/mcoot/rpschat/internal/dependencies/mocks"
	"github.com/mcoot/rpschat/internal/events"
	"github.com/mcoot/rpschat/internal/storage/memory"
	"github.com/mcoot/rpschat/internal/testutil"
	"github.com/mcoot/rpschat/internal/transport/tcp"
)

// TestInstanceID is the instance ID of every TestApp
const TestInstanceID = "test-instance"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// Both listeners bind ephemeral loopback ports.
func NewTestApp() *TestApp {
	store := memory.New(0)
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	tcpCfg := tcp.DefaultConfig()
	tcpCfg.Addr = "127.0.0.1:0"
	httpCfg := api.DefaultServerConfig()
	httpCfg.Addr = "127.0.0.1:0"
	httpCfg.ShutdownTimeout = time.Second

	cfg := Config{TCP: tcpCfg, HTTP: httpCfg}
	app := newWithDependencies(cfg, TestInstanceID, store, events.NopPublisher{}, mockClock, mockRandom, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
