package app_test

import (
	"time"

	"github.com/artpar/formgate/adapters/clock"
	"github.com/artpar/formgate/adapters/idgen"
	"github.com/artpar/formgate/adapters/memory"
	"github.com/artpar/formgate/app"
	"github.com/artpar/formgate/domain/field"
	"github.com/rs/zerolog"
)

// env wires the services over in-memory stores with a sequential ID
// generator and a fixed clock.
type env struct {
	fields      *memory.FieldStore
	placements  *memory.PlacementStore
	forms       *memory.FormStore
	submissions *memory.SubmissionStore
	profiles    *memory.ProfileStore
	ids         *idgen.Sequential
	clk         *clock.Fake

	catalog   *app.CatalogService
	placement *app.PlacementService
	sync      *app.SyncService
	validator *app.ValidatorService
	form      *app.FormService
}

func newEnv() *env {
	e := &env{
		fields:      memory.NewFieldStore(),
		forms:       memory.NewFormStore(),
		submissions: memory.NewSubmissionStore(),
		profiles:    memory.NewProfileStore(),
		ids:         idgen.NewSequential("id-"),
		clk:         clock.NewFake(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	}
	e.placements = memory.NewPlacementStore(e.fields)

	logger := zerolog.Nop()
	e.catalog = app.NewCatalogService(e.fields, e.placements, e.ids, e.clk, logger)
	e.placement = app.NewPlacementService(e.catalog, e.placements, e.ids, logger, nil)
	e.sync = app.NewSyncService(e.catalog, e.placements, e.ids, logger, nil)
	e.validator = app.NewValidatorService(e.placements, e.profiles, logger, nil)
	e.form = app.NewFormService(e.forms, e.submissions, e.profiles, e.validator, e.ids, e.clk, logger, nil)
	return e
}

func strPtr(s string) *string              { return &s }
func boolPtr(b bool) *bool                 { return &b }
func intPtr(i int) *int                    { return &i }
func typePtr(t field.Type) *field.Type     { return &t }
func writePtr(w field.WriteTo) *field.WriteTo { return &w }
