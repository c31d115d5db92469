package app

import (
	"github.com/vk/chainprobe/internal/runtime"
	"github.com/vk/chainprobe/probes/forwarder"
)

// coreModules is the definitive list of all probe modules that are compiled
// into the chainprobe binary.
var coreModules = []runtime.Module{
	&forwarder.Module{},
}
