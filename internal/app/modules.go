package app

import (
	"github.com/ConnectedSystems/openwater/internal/registry"
	"github.com/ConnectedSystems/openwater/models/depthtorate"
	"github.com/ConnectedSystems/openwater/models/emcdwc"
	"github.com/ConnectedSystems/openwater/models/lumpedrouting"
	"github.com/ConnectedSystems/openwater/models/muskingum"
	"github.com/ConnectedSystems/openwater/models/simhyd"
)

// coreModules is the definitive list of all model modules that are compiled
// into the openwater binary.
var coreModules = []registry.Module{
	&simhyd.Module{},
	&depthtorate.Module{},
	&muskingum.Module{},
	&emcdwc.Module{},
	&lumpedrouting.Module{},
}
