package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"tableflip.dev/apptcal/pkg/app"
	"tableflip.dev/apptcal/pkg/appointment"
	"tableflip.dev/apptcal/pkg/store"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	p, err := store.Open(store.Path(t.TempDir()), nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	a := app.New(app.Options{Persistence: p})
	a.LoadFromStorage()
	t.Cleanup(a.Close)
	return NewService(a)
}

func TestServiceCreateValidates(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	if _, err := svc.Create(ctx, CreateOptions{Title: " ", Date: "2026-02-01", Category: "home"}); !errors.Is(err, appointment.ErrTitleRequired) {
		t.Fatalf("blank title err = %v", err)
	}
	if _, err := svc.Create(ctx, CreateOptions{Title: "x", Date: "02/01/2026", Category: "home"}); !errors.Is(err, appointment.ErrInvalidDate) {
		t.Fatalf("bad date err = %v", err)
	}
	if _, err := svc.Create(ctx, CreateOptions{Title: "x", Date: "2026-02-01", Category: "garden"}); !errors.Is(err, appointment.ErrInvalidCategory) {
		t.Fatalf("bad category err = %v", err)
	}

	dto, err := svc.Create(ctx, CreateOptions{Title: "Dentist", Date: "2026-02-01", Time: "09:30", Category: "home", AllDay: true})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.ID == "" || dto.Time != "" || dto.CategoryLabel != "Home" {
		t.Fatalf("dto = %+v", dto)
	}
	if svc.App.PendingCount() != 1 {
		t.Fatalf("pending = %d", svc.App.PendingCount())
	}
}

func TestServiceListKeepsViewFilter(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	svc.App.SetCategoryFilter(appointment.FilterHome)

	work, err := svc.ListAppointments(ctx, "work")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(work) != 3 {
		t.Fatalf("work appointments = %d, want 3", len(work))
	}
	if svc.App.Status().Filter != appointment.FilterHome {
		t.Fatalf("filter changed to %s", svc.App.Status().Filter)
	}

	all, err := svc.ListAppointments(ctx, "")
	if err != nil || len(all) != 6 {
		t.Fatalf("all = %d, err %v", len(all), err)
	}
	if _, err := svc.ListAppointments(ctx, "garden"); err == nil {
		t.Fatal("expected error for unknown filter")
	}
}

func TestServiceAppointmentsOnSortsForPlanner(t *testing.T) {
	svc := newTestService(t)
	list, err := svc.AppointmentsOn(context.Background(), "2026-01-05", "")
	if err != nil {
		t.Fatalf("appointments on: %v", err)
	}
	if len(list) != 4 || list[0].Title != "Gym Session" {
		t.Fatalf("list = %+v", list)
	}
}

func TestServiceUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)

	title := "Weekly sync"
	dto, err := svc.Update(ctx, UpdateOptions{ID: "apt-1", Title: &title})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Title != title {
		t.Fatalf("title = %q", dto.Title)
	}
	if _, err := svc.Update(ctx, UpdateOptions{ID: "missing", Title: &title}); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("missing update err = %v", err)
	}
	if _, err := svc.Update(ctx, UpdateOptions{ID: "apt-1"}); err == nil {
		t.Fatal("expected error for empty update")
	}

	deleted, err := svc.Delete(ctx, "apt-1")
	if err != nil || !deleted {
		t.Fatalf("delete = %v, %v", deleted, err)
	}
	deleted, err = svc.Delete(ctx, "apt-1")
	if err != nil || deleted {
		t.Fatalf("second delete = %v, %v", deleted, err)
	}
	if _, err := svc.AppointmentByID(ctx, "apt-1"); !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("get deleted err = %v", err)
	}
}

func TestServiceSetOnlineDrains(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t)
	svc.App.Start(ctx)

	if _, err := svc.Create(ctx, CreateOptions{Title: "Dentist", Date: "2026-02-01", Category: "home"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	st, err := svc.SyncStatus(ctx)
	if err != nil || st.Online || st.PendingCount != 1 || len(st.Queue) != 1 {
		t.Fatalf("status = %+v, err %v", st, err)
	}

	if _, err := svc.SetOnline(ctx, true); err != nil {
		t.Fatalf("set online: %v", err)
	}
	deadline := time.Now().Add(3 * time.Second)
	for svc.App.PendingCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("queue never drained: %+v", svc.App.Status())
		}
		time.Sleep(20 * time.Millisecond)
	}
}

func TestServiceAgenda(t *testing.T) {
	svc := newTestService(t)
	agenda, err := svc.Agenda(context.Background(), "2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("agenda: %v", err)
	}
	if agenda.Total != 6 {
		t.Fatalf("total = %d", agenda.Total)
	}
	if _, err := svc.Agenda(context.Background(), "soon", "2026-01-31"); err == nil {
		t.Fatal("expected error for bad date")
	}
}

func TestTemplateArg(t *testing.T) {
	args := map[string]any{"a": "x", "b": []string{"y"}, "c": 3}
	if templateArg(args, "a") != "x" || templateArg(args, "b") != "y" || templateArg(args, "c") != "" || templateArg(args, "d") != "" {
		t.Fatal("templateArg mismatch")
	}
}
