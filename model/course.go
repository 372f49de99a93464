package model

import (
	"time"

	"gorm.io/gorm"
)

// Course represents a department course owned by a faculty member
type Course struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Title       string         `gorm:"not null" json:"title"`
	Code        string         `gorm:"type:varchar(20);uniqueIndex;not null" json:"code"` // e.g., "CS301"
	Description string         `gorm:"type:text" json:"description"`
	Department  string         `gorm:"type:varchar(100);not null;index" json:"department"`
	FacultyID   uint           `gorm:"not null;index" json:"faculty_id"`
	Credits     int            `gorm:"default:4" json:"credits"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`

	// Relationships
	Faculty     User               `gorm:"foreignKey:FacultyID" json:"faculty,omitempty"`
	Enrollments []CourseEnrollment `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
	Materials   []CourseMaterial   `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"materials,omitempty"`
	Assignments []Assignment       `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"assignments,omitempty"`
	Attendance  []AttendanceRecord `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// CourseEnrollment links a student to a course
type CourseEnrollment struct {
	CourseID   uint  `gorm:"primaryKey" json:"course_id"`
	StudentID  uint  `gorm:"primaryKey" json:"student_id"`
	EnrolledAt int64 `gorm:"autoCreateTime" json:"enrolled_at"`

	// Relationships
	Course  Course `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Student User   `gorm:"foreignKey:StudentID" json:"-"`
}

// CourseMaterial represents a file shared with a course.
// Bytes live in object storage; only metadata is kept here.
type CourseMaterial struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID    uint           `gorm:"not null;index" json:"course_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	FileName    string         `gorm:"type:varchar(255)" json:"file_name"`
	ContentType string         `gorm:"type:varchar(100)" json:"content_type"`
	FileSize    int64          `json:"file_size"`
	StorageKey  string         `gorm:"type:varchar(512)" json:"-"` // Object storage key
	UploadedBy  uint           `gorm:"index" json:"uploaded_by"`
}

// Assignment represents a course assignment created by the owning faculty
type Assignment struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	CourseID    uint           `gorm:"not null;index" json:"course_id"`
	Title       string         `gorm:"not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	DueDate     time.Time      `json:"due_date"`
	MaxMarks    int            `gorm:"default:100" json:"max_marks"`

	// Relationships
	Submissions []AssignmentSubmission `gorm:"foreignKey:AssignmentID;constraint:OnDelete:CASCADE" json:"submissions,omitempty"`
}

// AssignmentSubmission represents a student's submission for an assignment.
// One submission per student per assignment; resubmitting overwrites.
type AssignmentSubmission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	AssignmentID uint      `gorm:"not null;uniqueIndex:idx_assignment_student" json:"assignment_id"`
	StudentID    uint      `gorm:"not null;uniqueIndex:idx_assignment_student" json:"student_id"`
	Content      string    `gorm:"type:text" json:"content"`
	FileName     string    `gorm:"type:varchar(255)" json:"file_name"`
	StorageKey   string    `gorm:"type:varchar(512)" json:"-"`
	Marks        *int      `json:"marks,omitempty"` // Nil until graded
	Feedback     string    `gorm:"type:text" json:"feedback"`

	// Relationships
	Student User `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

// AttendanceRecord represents one student's presence for a course on a date
type AttendanceRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	CourseID  uint      `gorm:"not null;uniqueIndex:idx_course_student_date" json:"course_id"`
	StudentID uint      `gorm:"not null;uniqueIndex:idx_course_student_date" json:"student_id"`
	Date      string    `gorm:"type:varchar(10);not null;uniqueIndex:idx_course_student_date" json:"date"` // YYYY-MM-DD
	Present   bool      `gorm:"default:false" json:"present"`
	MarkedBy  uint      `json:"marked_by"`
}
