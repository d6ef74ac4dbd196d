package app_test

import (
	"context"
	"testing"

	"github.com/artpar/formgate/domain/field"
	"github.com/artpar/formgate/domain/placement"
	"github.com/artpar/formgate/pkg/faults"
)

func scopeContainers(ss ...placement.Scope) []placement.Container {
	out := make([]placement.Container, len(ss))
	for i, s := range ss {
		out[i] = placement.ForScope(s)
	}
	return out
}

func TestSyncEmptyDesiredRejected(t *testing.T) {
	e := newEnv()

	_, err := e.sync.Sync(context.Background(), "bio", nil, field.Patch{}, nil)
	if !faults.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
	issues := faults.ValidationIssues(err)
	if len(issues) != 1 || issues[0] != "select at least one scope" {
		t.Errorf("issues = %v", issues)
	}
}

func TestSyncMixedNamespacesRejected(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	f, err := e.form.Create(ctx, "contact", "Contact", "", true, true)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	desired := []placement.Container{
		placement.ForScope(placement.ScopeProfile),
		placement.ForForm(f.ID),
	}
	if _, err := e.sync.Sync(ctx, "bio", desired, field.Patch{}, nil); !faults.IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestSyncCreatesFieldAndPlacements(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	res, err := e.sync.Sync(ctx, "newsletter_opt_in",
		scopeContainers(placement.ScopeRegistration, placement.ScopeProfile),
		field.Patch{Type: typePtr(field.TypeCheckbox), Label: strPtr("Subscribe to newsletter")},
		nil)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if res.Field.Key != "newsletter_opt_in" {
		t.Errorf("key = %q", res.Field.Key)
	}
	if len(res.Added) != 2 || len(res.Removed) != 0 {
		t.Fatalf("added = %v, removed = %v", res.Added, res.Removed)
	}

	for _, s := range []placement.Scope{placement.ScopeRegistration, placement.ScopeProfile} {
		listed, err := e.placement.List(ctx, placement.ForScope(s))
		if err != nil {
			t.Fatalf("list %s: %v", s, err)
		}
		if len(listed) != 1 || listed[0].Field.Key != "newsletter_opt_in" {
			t.Errorf("%s placements = %+v", s, listed)
		}
	}
}

func TestSyncIsIdempotent(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	desired := scopeContainers(placement.ScopeRegistration, placement.ScopeProfile)

	if _, err := e.sync.Sync(ctx, "bio", desired, field.Patch{}, nil); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	res, err := e.sync.Sync(ctx, "bio", desired, field.Patch{}, nil)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if len(res.Added) != 0 || len(res.Removed) != 0 {
		t.Errorf("second sync changed placements: added = %v, removed = %v", res.Added, res.Removed)
	}
	for _, c := range desired {
		listed, err := e.placement.List(ctx, c)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(listed) != 1 {
			t.Errorf("%s placements = %d, want exactly 1", c, len(listed))
		}
	}
}

func TestSyncNarrowingRemovesOnlyUndesired(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	if _, err := e.sync.Sync(ctx, "newsletter_opt_in",
		scopeContainers(placement.ScopeRegistration, placement.ScopeProfile),
		field.Patch{Type: typePtr(field.TypeCheckbox)}, nil); err != nil {
		t.Fatalf("first sync: %v", err)
	}

	// A neighbouring placement in profile, so we can see order survive.
	if _, err := e.placement.Place(ctx, placement.ForScope(placement.ScopeProfile), "", "bio", field.Patch{}, placement.Overrides{}); err != nil {
		t.Fatalf("place bio: %v", err)
	}

	res, err := e.sync.Sync(ctx, "newsletter_opt_in",
		scopeContainers(placement.ScopeProfile), field.Patch{}, nil)
	if err != nil {
		t.Fatalf("narrowing sync: %v", err)
	}
	if len(res.Added) != 0 {
		t.Errorf("added = %v, want none", res.Added)
	}
	if len(res.Removed) != 1 || res.Removed[0] != placement.ForScope(placement.ScopeRegistration) {
		t.Errorf("removed = %v, want registration only", res.Removed)
	}

	reg, err := e.placement.List(ctx, placement.ForScope(placement.ScopeRegistration))
	if err != nil {
		t.Fatalf("list registration: %v", err)
	}
	if len(reg) != 0 {
		t.Errorf("registration still has %d placements", len(reg))
	}
	prof, err := e.placement.List(ctx, placement.ForScope(placement.ScopeProfile))
	if err != nil {
		t.Fatalf("list profile: %v", err)
	}
	if len(prof) != 2 || prof[0].Field.Key != "newsletter_opt_in" {
		t.Errorf("profile order disturbed: %+v", prof)
	}
	if prof[0].Placement.OrderIndex != 0 {
		t.Errorf("kept placement order = %d, want original 0", prof[0].Placement.OrderIndex)
	}
}

func TestSyncScopeNamespaceLeavesFormsAlone(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	f, err := e.form.Create(ctx, "contact", "Contact", "", true, true)
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	if _, err := e.sync.Sync(ctx, "bio", []placement.Container{placement.ForForm(f.ID)}, field.Patch{}, nil); err != nil {
		t.Fatalf("form sync: %v", err)
	}

	// Scope sync of the same key must not remove the form placement.
	if _, err := e.sync.Sync(ctx, "bio", scopeContainers(placement.ScopeProfile), field.Patch{}, nil); err != nil {
		t.Fatalf("scope sync: %v", err)
	}
	formList, err := e.placement.List(ctx, placement.ForForm(f.ID))
	if err != nil {
		t.Fatalf("list form: %v", err)
	}
	if len(formList) != 1 {
		t.Errorf("form placements = %d, scope sync crossed namespaces", len(formList))
	}
}

func TestSyncAppliesOverridesOnAdd(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	reg := placement.ForScope(placement.ScopeRegistration)

	_, err := e.sync.Sync(ctx, "bio", []placement.Container{reg}, field.Patch{},
		map[placement.Container]placement.Overrides{
			reg: {Required: boolPtr(true), HelpText: strPtr("short intro")},
		})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	listed, err := e.placement.List(ctx, reg)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !listed[0].Placement.Required || listed[0].Placement.HelpText != "short intro" {
		t.Errorf("overrides not applied: %+v", listed[0].Placement)
	}
}

func TestSyncAppliesOverridesToKeptPlacements(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	reg := placement.ForScope(placement.ScopeRegistration)

	if _, err := e.sync.Sync(ctx, "bio", []placement.Container{reg}, field.Patch{}, nil); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if _, err := e.sync.Sync(ctx, "bio", []placement.Container{reg}, field.Patch{},
		map[placement.Container]placement.Overrides{reg: {Visible: boolPtr(false)}}); err != nil {
		t.Fatalf("second sync: %v", err)
	}

	listed, err := e.placement.List(ctx, reg)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listed[0].Placement.Visible {
		t.Error("visible override not applied to existing placement")
	}
}

func TestSyncAppendsAfterExistingFields(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	reg := placement.ForScope(placement.ScopeRegistration)

	if _, err := e.placement.Place(ctx, reg, "", "first", field.Patch{}, placement.Overrides{}); err != nil {
		t.Fatalf("place: %v", err)
	}
	if _, err := e.sync.Sync(ctx, "second", []placement.Container{reg}, field.Patch{}, nil); err != nil {
		t.Fatalf("sync: %v", err)
	}

	listed, err := e.placement.List(ctx, reg)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if listed[1].Field.Key != "second" || listed[1].Placement.OrderIndex != 10 {
		t.Errorf("synced placement = %+v, want appended at 10", listed[1].Placement)
	}
}
