package services

import (
	"testing"

	"github.com/sahilchouksey/campus-portal-api/model"
)

func TestCanSeeNotification(t *testing.T) {
	admin := &model.User{Role: model.RoleAdmin}
	csFaculty := &model.User{Role: model.RoleFaculty, Department: "Computer Science"}
	csStudent := &model.User{ID: 7, Role: model.RoleStudent, Department: "Computer Science"}
	ecStudent := &model.User{ID: 8, Role: model.RoleStudent, Department: "Electronics"}

	recipientID := csStudent.ID

	tests := []struct {
		name         string
		user         *model.User
		notification *model.Notification
		want         bool
	}{
		{
			name:         "admin sees admin-only",
			user:         admin,
			notification: &model.Notification{Audience: model.AudienceAdmin},
			want:         true,
		},
		{
			name:         "admin sees department notices for any department",
			user:         admin,
			notification: &model.Notification{Audience: model.AudienceDepartment, Department: "Electronics"},
			want:         true,
		},
		{
			name:         "everyone sees all",
			user:         csStudent,
			notification: &model.Notification{Audience: model.AudienceAll},
			want:         true,
		},
		{
			name:         "student sees students",
			user:         csStudent,
			notification: &model.Notification{Audience: model.AudienceStudents},
			want:         true,
		},
		{
			name:         "student does not see faculty",
			user:         csStudent,
			notification: &model.Notification{Audience: model.AudienceFaculty},
			want:         false,
		},
		{
			name:         "student does not see admin-only",
			user:         csStudent,
			notification: &model.Notification{Audience: model.AudienceAdmin},
			want:         false,
		},
		{
			name:         "faculty sees faculty",
			user:         csFaculty,
			notification: &model.Notification{Audience: model.AudienceFaculty},
			want:         true,
		},
		{
			name:         "faculty does not see students",
			user:         csFaculty,
			notification: &model.Notification{Audience: model.AudienceStudents},
			want:         false,
		},
		{
			name:         "department notice visible to matching student",
			user:         csStudent,
			notification: &model.Notification{Audience: model.AudienceDepartment, Department: "Computer Science"},
			want:         true,
		},
		{
			name:         "department notice hidden from other department",
			user:         ecStudent,
			notification: &model.Notification{Audience: model.AudienceDepartment, Department: "Computer Science"},
			want:         false,
		},
		{
			name:         "department notice visible to matching faculty",
			user:         csFaculty,
			notification: &model.Notification{Audience: model.AudienceDepartment, Department: "Computer Science"},
			want:         true,
		},
		{
			name:         "single-student notice visible to its recipient",
			user:         csStudent,
			notification: &model.Notification{Audience: model.AudienceStudent, RecipientID: &recipientID},
			want:         true,
		},
		{
			name:         "single-student notice hidden from other students",
			user:         ecStudent,
			notification: &model.Notification{Audience: model.AudienceStudent, RecipientID: &recipientID},
			want:         false,
		},
		{
			name:         "single-student notice hidden from faculty",
			user:         csFaculty,
			notification: &model.Notification{Audience: model.AudienceStudent, RecipientID: &recipientID},
			want:         false,
		},
		{
			name:         "admin sees single-student notices",
			user:         admin,
			notification: &model.Notification{Audience: model.AudienceStudent, RecipientID: &recipientID},
			want:         true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CanSeeNotification(tt.user, tt.notification); got != tt.want {
				t.Errorf("CanSeeNotification() = %v, want %v", got, tt.want)
			}
		})
	}
}
