package store

import (
	"testing"

	"starboard/internal/database"
	"starboard/internal/model"
)

func setupScheduleTestDB(t *testing.T) (*ScheduleStore, *FamilyMemberStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewScheduleStore(db), NewFamilyMemberStore(db)
}

func TestTemplateCRUD(t *testing.T) {
	ss, ms := setupScheduleTestDB(t)
	m, _ := ms.Create("Ben", model.RoleChild, "#fff", "🐢")

	tpl, err := ss.CreateTemplate("School day", m.ID, []string{"monday", "tuesday", "wednesday", "thursday", "friday"})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	if tpl.Name != "School day" {
		t.Errorf("name = %q", tpl.Name)
	}
	if len(tpl.DayTypes) != 5 || tpl.DayTypes[0] != "monday" {
		t.Errorf("day_types = %v", tpl.DayTypes)
	}
	if !tpl.AppliesTo("friday") || tpl.AppliesTo("saturday") {
		t.Error("AppliesTo mismatch")
	}

	updated, err := ss.UpdateTemplate(tpl.ID, "School day v2", []string{"monday"})
	if err != nil {
		t.Fatalf("update template: %v", err)
	}
	if updated.Name != "School day v2" || len(updated.DayTypes) != 1 {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := ss.DeleteTemplate(tpl.ID); err != nil {
		t.Fatalf("delete template: %v", err)
	}
	got, err := ss.GetTemplateByID(tpl.ID)
	if err != nil {
		t.Fatalf("get deleted template: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted template")
	}
}

func TestTemplateForMemberDay(t *testing.T) {
	ss, ms := setupScheduleTestDB(t)
	ben, _ := ms.Create("Ben", model.RoleChild, "#fff", "🐢")
	cal, _ := ms.Create("Cal", model.RoleChild, "#fff", "🐸")

	school, _ := ss.CreateTemplate("School day", ben.ID, []string{"monday", "tuesday"})
	weekend, _ := ss.CreateTemplate("Weekend", ben.ID, []string{"saturday", "sunday"})
	ss.CreateTemplate("Cal's day", cal.ID, []string{"monday"})

	got, err := ss.TemplateForMemberDay(ben.ID, "monday")
	if err != nil {
		t.Fatalf("template for monday: %v", err)
	}
	if got == nil || got.ID != school.ID {
		t.Errorf("monday template = %+v, want %d", got, school.ID)
	}

	got, _ = ss.TemplateForMemberDay(ben.ID, "saturday")
	if got == nil || got.ID != weekend.ID {
		t.Errorf("saturday template = %+v, want %d", got, weekend.ID)
	}

	got, _ = ss.TemplateForMemberDay(ben.ID, "wednesday")
	if got != nil {
		t.Errorf("expected nil for uncovered day, got %+v", got)
	}
}

func TestTemplateForMemberDayNewestWins(t *testing.T) {
	ss, ms := setupScheduleTestDB(t)
	ben, _ := ms.Create("Ben", model.RoleChild, "#fff", "🐢")

	ss.CreateTemplate("Old monday", ben.ID, []string{"monday"})
	newer, _ := ss.CreateTemplate("New monday", ben.ID, []string{"monday"})

	got, err := ss.TemplateForMemberDay(ben.ID, "monday")
	if err != nil {
		t.Fatalf("template for monday: %v", err)
	}
	if got == nil || got.ID != newer.ID {
		t.Errorf("got %+v, want newest template %d", got, newer.ID)
	}
}

func TestTemplateDayTypeNoPartialMatch(t *testing.T) {
	ss, ms := setupScheduleTestDB(t)
	ben, _ := ms.Create("Ben", model.RoleChild, "#fff", "🐢")

	// "sunday" must not match a template that only declares "saturday",
	// and "monday" must not match inside "monday-ish" style values.
	ss.CreateTemplate("Weekend", ben.ID, []string{"saturday"})

	got, err := ss.TemplateForMemberDay(ben.ID, "sunday")
	if err != nil {
		t.Fatalf("template for sunday: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}

	got, _ = ss.TemplateForMemberDay(ben.ID, "satur")
	if got != nil {
		t.Errorf("expected nil for substring day type, got %+v", got)
	}
}

func TestBlockCRUDAndOrdering(t *testing.T) {
	ss, ms := setupScheduleTestDB(t)
	ben, _ := ms.Create("Ben", model.RoleChild, "#fff", "🐢")
	tpl, _ := ss.CreateTemplate("School day", ben.ID, []string{"monday"})

	for _, tc := range []struct {
		label      string
		start, end int
		order      int
	}{
		{"Lunch", 720, 750, 0},
		{"Morning routine", 420, 450, 0},
		{"Quiet reading", 420, 450, 1},
	} {
		_, err := ss.CreateBlock(&model.ScheduleBlock{
			TemplateID: tpl.ID,
			Label:      tc.label,
			BlockType:  model.BlockRoutine,
			Start:      tc.start,
			End:        tc.end,
			SortOrder:  tc.order,
		})
		if err != nil {
			t.Fatalf("create block %q: %v", tc.label, err)
		}
	}

	blocks, err := ss.ListBlocksByTemplate(tpl.ID)
	if err != nil {
		t.Fatalf("list blocks: %v", err)
	}
	want := []string{"Morning routine", "Quiet reading", "Lunch"}
	if len(blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(blocks), len(want))
	}
	for i, label := range want {
		if blocks[i].Label != label {
			t.Errorf("blocks[%d] = %q, want %q", i, blocks[i].Label, label)
		}
	}

	first := blocks[0]
	first.Label = "Wake up"
	first.End = 460
	updated, err := ss.UpdateBlock(first.ID, &first)
	if err != nil {
		t.Fatalf("update block: %v", err)
	}
	if updated.Label != "Wake up" || updated.End != 460 {
		t.Errorf("update not applied: %+v", updated)
	}

	if err := ss.DeleteBlock(first.ID); err != nil {
		t.Fatalf("delete block: %v", err)
	}
	blocks, _ = ss.ListBlocksByTemplate(tpl.ID)
	if len(blocks) != 2 {
		t.Errorf("expected 2 blocks after delete, got %d", len(blocks))
	}
}

func TestDaySectionSeedData(t *testing.T) {
	ss, _ := setupScheduleTestDB(t)

	sections, err := ss.ListSections()
	if err != nil {
		t.Fatalf("list sections: %v", err)
	}
	if len(sections) != 3 {
		t.Fatalf("expected 3 seed sections, got %d", len(sections))
	}

	want := []struct {
		label      string
		start, end string
	}{
		{"morning", "06:30", "12:00"},
		{"afternoon", "12:00", "17:30"},
		{"evening", "17:30", "20:30"},
	}
	for i, w := range want {
		if sections[i].Label != w.label {
			t.Errorf("sections[%d].Label = %q, want %q", i, sections[i].Label, w.label)
		}
		if sections[i].StartTime != w.start || sections[i].EndTime != w.end {
			t.Errorf("%s window = %s-%s, want %s-%s", w.label, sections[i].StartTime, sections[i].EndTime, w.start, w.end)
		}
	}
}

func TestDaySectionUpdate(t *testing.T) {
	ss, _ := setupScheduleTestDB(t)

	morning, err := ss.GetSectionByLabel("morning")
	if err != nil {
		t.Fatalf("get morning: %v", err)
	}
	if morning == nil {
		t.Fatal("expected seeded morning section")
	}

	updated, err := ss.UpdateSection(morning.ID, "07:00", "11:30")
	if err != nil {
		t.Fatalf("update section: %v", err)
	}
	if updated.StartTime != "07:00" || updated.EndTime != "11:30" {
		t.Errorf("window = %s-%s, want 07:00-11:30", updated.StartTime, updated.EndTime)
	}
}
