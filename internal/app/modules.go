package app

import (
	"github.com/specialistvlad/extforge/internal/registry"
	"github.com/specialistvlad/extforge/modules/celmatch"
	"github.com/specialistvlad/extforge/modules/envvars"
	"github.com/specialistvlad/extforge/modules/identity"
	"github.com/specialistvlad/extforge/modules/sample"
)

// coreModules is the definitive list of all modules that are compiled into
// the extforge binary.
func coreModules() []registry.Module {
	return []registry.Module{
		&sample.Module{},
		&envvars.Module{},
		&identity.Module{},
		&celmatch.Module{},
	}
}
