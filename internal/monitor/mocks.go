package monitor

import "context"

// MockInspector implements ContainerInspector for testing.
type MockInspector struct {
	Containers []Container
	Err        error
	Calls      int
}

var _ ContainerInspector = (*MockInspector)(nil)

// ListRunning returns the configured containers.
func (m *MockInspector) ListRunning(_ context.Context) ([]Container, error) {
	m.Calls++
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Containers, nil
}
