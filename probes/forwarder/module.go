package forwarder

import (
	"github.com/vk/chainprobe/internal/runtime"
)

// Module registers this probe's handlers with the engine's handler table.
type Module struct{}

// Register implements the probe module interface.
func (m *Module) Register(table *runtime.Table) {
	table.Register(HandlerCall, OnCall)
	table.Register(HandlerExt, Ext)
}
