package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sahilchouksey/campus-portal-api/model"
)

func TestNotificationVisibilityFiltersLists(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	csFaculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	csStudent := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")
	ecStudent := mustCreateUser(t, db, "STU0002", model.RoleStudent, "Electronics")

	seed := []CreateNotificationRequest{
		{Title: "All hands", Message: "m", SenderID: admin.ID, Audience: model.AudienceAll},
		{Title: "Students only", Message: "m", SenderID: admin.ID, Audience: model.AudienceStudents},
		{Title: "Faculty only", Message: "m", SenderID: admin.ID, Audience: model.AudienceFaculty},
		{Title: "CS dept", Message: "m", SenderID: csFaculty.ID, Audience: model.AudienceDepartment, Department: "Computer Science"},
		{Title: "Admin eyes", Message: "m", SenderID: admin.ID, Audience: model.AudienceAdmin},
	}
	for _, req := range seed {
		if _, err := svc.CreateNotification(ctx, req); err != nil {
			t.Fatalf("CreateNotification(%s) error = %v", req.Title, err)
		}
	}

	tests := []struct {
		name string
		user *model.User
		want int
	}{
		{"admin sees everything", admin, 5},
		{"cs faculty sees all+faculty+cs dept", csFaculty, 3},
		{"cs student sees all+students+cs dept", csStudent, 3},
		{"ec student sees all+students", ecStudent, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := svc.ListVisible(ctx, tt.user, ListNotificationsOptions{Limit: 50})
			if err != nil {
				t.Fatalf("ListVisible() error = %v", err)
			}
			if len(list) != tt.want || total != int64(tt.want) {
				t.Errorf("got %d notifications (total %d), want %d", len(list), total, tt.want)
			}

			// The list projection and the point check must agree
			for _, n := range list {
				if !CanSeeNotification(tt.user, &n) {
					t.Errorf("listed notification %q fails the point check", n.Title)
				}
			}
		})
	}
}

func TestGetVisibleHidesLikeMissing(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	student := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")

	hidden, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "Faculty only", Message: "m", SenderID: admin.ID, Audience: model.AudienceFaculty,
	})
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	// Invisible and nonexistent produce the same error
	if _, err := svc.GetVisible(ctx, hidden.ID, student); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("GetVisible(invisible) error = %v, want ErrNotificationNotFound", err)
	}
	if _, err := svc.GetVisible(ctx, 99999, student); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("GetVisible(missing) error = %v, want ErrNotificationNotFound", err)
	}
}

func TestCreateNotificationDepartmentRule(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")

	// Department audience without a department
	_, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "x", Message: "m", SenderID: admin.ID, Audience: model.AudienceDepartment,
	})
	if !errors.Is(err, ErrDepartmentAudience) {
		t.Errorf("error = %v, want ErrDepartmentAudience", err)
	}

	// Department set with a non-department audience
	_, err = svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "x", Message: "m", SenderID: admin.ID, Audience: model.AudienceAll, Department: "Computer Science",
	})
	if !errors.Is(err, ErrDepartmentAudience) {
		t.Errorf("error = %v, want ErrDepartmentAudience", err)
	}
}

func TestMarkAsReadIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	student := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")

	n, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "Notice", Message: "m", SenderID: admin.ID, Audience: model.AudienceStudents,
	})
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	if err := svc.MarkAsRead(ctx, n.ID, student); err != nil {
		t.Fatalf("MarkAsRead() error = %v", err)
	}
	// Second mark succeeds and leaves a single receipt
	if err := svc.MarkAsRead(ctx, n.ID, student); err != nil {
		t.Fatalf("MarkAsRead() second call error = %v", err)
	}

	var receipts int64
	db.Model(&model.NotificationRead{}).Where("user_id = ?", student.ID).Count(&receipts)
	if receipts != 1 {
		t.Errorf("read receipts = %d, want 1", receipts)
	}

	count, err := svc.GetUnreadCount(ctx, student)
	if err != nil {
		t.Fatalf("GetUnreadCount() error = %v", err)
	}
	if count != 0 {
		t.Errorf("unread count = %d, want 0", count)
	}
}

func TestMarkAllAsRead(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	student := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")

	for _, title := range []string{"a", "b", "c"} {
		if _, err := svc.CreateNotification(ctx, CreateNotificationRequest{
			Title: title, Message: "m", SenderID: admin.ID, Audience: model.AudienceStudents,
		}); err != nil {
			t.Fatalf("CreateNotification() error = %v", err)
		}
	}
	// An invisible one must not be counted
	if _, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "hidden", Message: "m", SenderID: admin.ID, Audience: model.AudienceFaculty,
	}); err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	marked, err := svc.MarkAllAsRead(ctx, student)
	if err != nil {
		t.Fatalf("MarkAllAsRead() error = %v", err)
	}
	if marked != 3 {
		t.Errorf("marked = %d, want 3", marked)
	}

	// Idempotent: nothing left to mark
	marked, err = svc.MarkAllAsRead(ctx, student)
	if err != nil {
		t.Fatalf("MarkAllAsRead() second call error = %v", err)
	}
	if marked != 0 {
		t.Errorf("second run marked = %d, want 0", marked)
	}
}

func TestDeleteNotificationSenderOnly(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	otherFaculty := mustCreateUser(t, db, "FAC0002", model.RoleFaculty, "Computer Science")

	n, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "Mine", Message: "m", SenderID: faculty.ID, Audience: model.AudienceStudents,
	})
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	// Another faculty cannot delete it; to them it may as well not exist
	if err := svc.DeleteNotification(ctx, n.ID, otherFaculty); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("DeleteNotification(other faculty) error = %v, want ErrNotificationNotFound", err)
	}

	// Admins can delete anything
	if err := svc.DeleteNotification(ctx, n.ID, admin); err != nil {
		t.Errorf("DeleteNotification(admin) error = %v", err)
	}
}

func TestSingleStudentNotification(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	recipient := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Computer Science")
	other := mustCreateUser(t, db, "STU0002", model.RoleStudent, "Computer Science")

	n, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "Fee reminder", Message: "m", SenderID: admin.ID,
		Audience: model.AudienceStudent, RecipientID: &recipient.ID,
	})
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	// Only the recipient (and admins) can reach it
	if _, err := svc.GetVisible(ctx, n.ID, recipient); err != nil {
		t.Errorf("GetVisible(recipient) error = %v", err)
	}
	if _, err := svc.GetVisible(ctx, n.ID, other); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("GetVisible(other student) error = %v, want ErrNotificationNotFound", err)
	}
	if _, err := svc.GetVisible(ctx, n.ID, faculty); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("GetVisible(faculty) error = %v, want ErrNotificationNotFound", err)
	}

	list, total, err := svc.ListVisible(ctx, other, ListNotificationsOptions{Limit: 50})
	if err != nil {
		t.Fatalf("ListVisible() error = %v", err)
	}
	if len(list) != 0 || total != 0 {
		t.Errorf("other student lists %d notifications, want 0", len(list))
	}
}

func TestCreateNotificationRecipientRule(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")

	// Student audience without a recipient
	_, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "x", Message: "m", SenderID: admin.ID, Audience: model.AudienceStudent,
	})
	if !errors.Is(err, ErrRecipientRequired) {
		t.Errorf("error = %v, want ErrRecipientRequired", err)
	}

	// Recipient set with a non-student audience
	_, err = svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "x", Message: "m", SenderID: admin.ID, Audience: model.AudienceAll, RecipientID: &faculty.ID,
	})
	if !errors.Is(err, ErrRecipientRequired) {
		t.Errorf("error = %v, want ErrRecipientRequired", err)
	}

	// The recipient must be a student
	_, err = svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "x", Message: "m", SenderID: admin.ID, Audience: model.AudienceStudent, RecipientID: &faculty.ID,
	})
	if !errors.Is(err, ErrRecipientNotStudent) {
		t.Errorf("error = %v, want ErrRecipientNotStudent", err)
	}
}

func TestBroadcastReachesEveryRole(t *testing.T) {
	db := setupTestDB(t)
	svc := NewNotificationService(db)
	ctx := context.Background()

	admin := mustCreateUser(t, db, "ADM0001", model.RoleAdmin, "")
	faculty := mustCreateUser(t, db, "FAC0001", model.RoleFaculty, "Computer Science")
	student := mustCreateUser(t, db, "STU0001", model.RoleStudent, "Electronics")

	n, err := svc.CreateNotification(ctx, CreateNotificationRequest{
		Title: "Campus closed tomorrow", Message: "m", SenderID: admin.ID, Audience: model.AudienceAll,
	})
	if err != nil {
		t.Fatalf("CreateNotification() error = %v", err)
	}

	for _, user := range []*model.User{admin, faculty, student} {
		if _, err := svc.GetVisible(ctx, n.ID, user); err != nil {
			t.Errorf("GetVisible(%s) error = %v", user.UserCode, err)
		}
	}
}
