package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sahilchouksey/campus-portal-api/model"
)

func TestEventRegistrationCapacity(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	s1 := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")
	s2 := mustCreateUser(t, db, "STU0002", model.RoleStudent, "Computer Science")
	s3 := mustCreateUser(t, db, "STU0003", model.RoleStudent, "Computer Science")

	event := model.Event{
		Title:           "Workshop",
		Date:            time.Now().AddDate(0, 0, 7),
		OrganizerID:     faculty.ID,
		Status:          model.EventStatusApproved,
		MaxParticipants: 2,
	}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	if err := svc.Register(ctx, event.ID, s1.ID); err != nil {
		t.Fatalf("Register(s1) error = %v", err)
	}
	if err := svc.Register(ctx, event.ID, s2.ID); err != nil {
		t.Fatalf("Register(s2) error = %v", err)
	}
	if err := svc.Register(ctx, event.ID, s3.ID); !errors.Is(err, ErrEventFull) {
		t.Errorf("Register(s3) error = %v, want ErrEventFull", err)
	}

	// Freeing a slot lets the next student in
	if err := svc.Unregister(ctx, event.ID, s1.ID); err != nil {
		t.Fatalf("Unregister(s1) error = %v", err)
	}
	if err := svc.Register(ctx, event.ID, s3.ID); err != nil {
		t.Errorf("Register(s3) after a slot opened error = %v", err)
	}
}

func TestEventRegistrationRules(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	student := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")

	pending := model.Event{Title: "Pending", Date: time.Now().AddDate(0, 0, 7), OrganizerID: faculty.ID, Status: model.EventStatusPending}
	unlimited := model.Event{Title: "Open House", Date: time.Now().AddDate(0, 0, 7), OrganizerID: faculty.ID, Status: model.EventStatusApproved, MaxParticipants: 0}
	if err := db.Create(&pending).Error; err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}
	if err := db.Create(&unlimited).Error; err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	if err := svc.Register(ctx, pending.ID, student.ID); !errors.Is(err, ErrEventNotOpen) {
		t.Errorf("Register(pending event) error = %v, want ErrEventNotOpen", err)
	}
	if err := svc.Register(ctx, 99999, student.ID); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("Register(missing event) error = %v, want ErrEventNotFound", err)
	}

	// MaxParticipants of 0 means unlimited
	if err := svc.Register(ctx, unlimited.ID, student.ID); err != nil {
		t.Fatalf("Register(unlimited) error = %v", err)
	}
	if err := svc.Register(ctx, unlimited.ID, student.ID); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("Register() twice error = %v, want ErrAlreadyRegistered", err)
	}
	if err := svc.Unregister(ctx, unlimited.ID, student.ID); err != nil {
		t.Fatalf("Unregister() error = %v", err)
	}
	if err := svc.Unregister(ctx, unlimited.ID, student.ID); !errors.Is(err, ErrNotRegistered) {
		t.Errorf("Unregister() twice error = %v, want ErrNotRegistered", err)
	}
}

func TestUpdateCapacityFloor(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	s1 := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")
	s2 := mustCreateUser(t, db, "STU0002", model.RoleStudent, "Computer Science")

	event := model.Event{Title: "Seminar", Date: time.Now().AddDate(0, 0, 7), OrganizerID: faculty.ID, Status: model.EventStatusApproved, MaxParticipants: 10}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	if err := svc.Register(ctx, event.ID, s1.ID); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := svc.Register(ctx, event.ID, s2.ID); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := svc.UpdateCapacity(ctx, event.ID, 1); !errors.Is(err, ErrCapacityBelowCurrent) {
		t.Errorf("UpdateCapacity(1) with 2 registered error = %v, want ErrCapacityBelowCurrent", err)
	}
	if err := svc.UpdateCapacity(ctx, event.ID, 2); err != nil {
		t.Errorf("UpdateCapacity(2) error = %v", err)
	}
	// Raising to unlimited is always allowed
	if err := svc.UpdateCapacity(ctx, event.ID, 0); err != nil {
		t.Errorf("UpdateCapacity(0) error = %v", err)
	}
}

func TestSetStatus(t *testing.T) {
	db := setupTestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	event := model.Event{Title: "Seminar", Date: time.Now().AddDate(0, 0, 7), OrganizerID: faculty.ID, Status: model.EventStatusPending}
	if err := db.Create(&event).Error; err != nil {
		t.Fatalf("Failed to create event: %v", err)
	}

	updated, err := svc.SetStatus(ctx, event.ID, model.EventStatusApproved)
	if err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	if updated.Status != model.EventStatusApproved {
		t.Errorf("Status = %q, want approved", updated.Status)
	}

	if _, err := svc.SetStatus(ctx, event.ID, "cancelled"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("SetStatus(cancelled) error = %v, want ErrInvalidStatus", err)
	}
	if _, err := svc.SetStatus(ctx, 99999, model.EventStatusApproved); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("SetStatus(missing) error = %v, want ErrEventNotFound", err)
	}
}
