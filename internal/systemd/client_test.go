package systemd

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaseUnit(t *testing.T) {
	tests := []struct {
		name        string
		unitName    string
		unitType    string
		serviceName string
	}{
		{name: "compose service", unitName: "web", unitType: UnitTypeService, serviceName: "portinus-web.service"},
		{name: "restart action", unitName: "web-restart", unitType: UnitTypeService, serviceName: "portinus-web-restart.service"},
		{name: "restart timer", unitName: "web-restart", unitType: UnitTypeTimer, serviceName: "portinus-web-restart.timer"},
		{name: "monitor timer", unitName: "web-monitor", unitType: UnitTypeTimer, serviceName: "portinus-web-monitor.timer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unit := NewBaseUnit(tt.unitName, tt.unitType, "/etc/systemd/system")
			assert.Equal(t, tt.serviceName, unit.GetServiceName())
			assert.Equal(t, tt.unitName, unit.GetUnitName())
			assert.Equal(t, tt.unitType, unit.GetUnitType())
			assert.Equal(t, "/etc/systemd/system/"+tt.serviceName, unit.GetPath())
		})
	}
}

func TestEnsureOptions(t *testing.T) {
	assert.Equal(t, EnsureOptions{Restart: true, Enable: true}, NewEnsureOptions())
	assert.Equal(t, EnsureOptions{}, NewEnsureOptions(InstallOnly()))
}

func TestMockUnitManagerJournal(t *testing.T) {
	m := &MockUnitManager{}

	svc := m.GetUnit("web", UnitTypeService)
	timer := m.GetUnit("web-restart", UnitTypeTimer)
	_ = svc.Ensure(context.Background(), "a")
	_ = timer.Remove(context.Background())

	assert.Same(t, m.Unit("web", UnitTypeService), svc)
	assert.Equal(t, []string{"portinus-web.service:Ensure", "portinus-web-restart.timer:Remove"}, m.Calls())
	assert.Equal(t, "a", m.Unit("web", UnitTypeService).Content)
}
