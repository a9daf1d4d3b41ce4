package app

import (
	"github.com/taskrig/taskrig/internal/registry"
	"github.com/taskrig/taskrig/modules/clean"
	"github.com/taskrig/taskrig/modules/copyfiles"
	"github.com/taskrig/taskrig/modules/coverage"
	"github.com/taskrig/taskrig/modules/execstep"
	"github.com/taskrig/taskrig/modules/globfiles"
	"github.com/taskrig/taskrig/modules/notify"
	"github.com/taskrig/taskrig/modules/publish"
)

// coreModules is the definitive list of all step modules that are compiled
// into the taskrig binary.
var coreModules = []registry.Module{
	&execstep.Module{},
	&globfiles.Module{},
	&clean.Module{},
	&copyfiles.Module{},
	&coverage.Module{},
	&publish.Module{},
	&notify.Module{},
}
