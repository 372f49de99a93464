package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sahilchouksey/campus-portal-api/model"
	"github.com/sahilchouksey/campus-portal-api/utils/auth"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// SeedAll runs all seed functions
func (s *Seeder) SeedAll() error {
	log.Println("🌱 Starting database seeding...")

	// Run seeds in order (respecting foreign key constraints)
	if err := s.SeedAdminUser(); err != nil {
		return fmt.Errorf("failed to seed admin user: %w", err)
	}

	if err := s.SeedFaculty(); err != nil {
		return fmt.Errorf("failed to seed faculty: %w", err)
	}

	if err := s.SeedStudents(); err != nil {
		return fmt.Errorf("failed to seed students: %w", err)
	}

	if err := s.SeedCourses(); err != nil {
		return fmt.Errorf("failed to seed courses: %w", err)
	}

	if err := s.SeedEvents(); err != nil {
		return fmt.Errorf("failed to seed events: %w", err)
	}

	log.Println("✅ Database seeding completed successfully!")
	return nil
}

// SeedAdminUser creates the default admin user
func (s *Seeder) SeedAdminUser() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleAdmin).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Admin user already exists, skipping...")
		return nil
	}

	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" || adminPassword == "" {
		log.Println("⚠️  ADMIN_EMAIL and ADMIN_PASSWORD environment variables not set, skipping admin user creation")
		return nil
	}

	passwordHash, err := auth.HashPassword(adminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	admin := &model.User{
		UserCode:     "ADM0001",
		Email:        adminEmail,
		PasswordHash: passwordHash,
		Name:         "System Administrator",
		Role:         model.RoleAdmin,
		IsActive:     true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Created admin user: %s\n", admin.Email)
	return nil
}

// SeedFaculty creates sample faculty members
func (s *Seeder) SeedFaculty() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleFaculty).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Faculty already exist, skipping...")
		return nil
	}

	passwordHash, err := auth.HashPassword("faculty@123")
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	faculty := []model.User{
		{
			UserCode:     "FAC0001",
			Email:        "rverma@campus.edu",
			PasswordHash: passwordHash,
			Name:         "Dr. Rakesh Verma",
			Role:         model.RoleFaculty,
			Department:   "Computer Science",
			IsActive:     true,
		},
		{
			UserCode:     "FAC0002",
			Email:        "sgupta@campus.edu",
			PasswordHash: passwordHash,
			Name:         "Prof. Sunita Gupta",
			Role:         model.RoleFaculty,
			Department:   "Electronics",
			IsActive:     true,
		},
	}

	if err := s.db.Create(&faculty).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d faculty members\n", len(faculty))
	return nil
}

// SeedStudents creates sample students
func (s *Seeder) SeedStudents() error {
	var count int64
	if err := s.db.Model(&model.User{}).Where("role = ?", model.RoleStudent).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Students already exist, skipping...")
		return nil
	}

	passwordHash, err := auth.HashPassword("student@123")
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	students := []model.User{
		{
			UserCode:     "STU0001",
			Email:        "amit.kumar@campus.edu",
			PasswordHash: passwordHash,
			Name:         "Amit Kumar",
			Role:         model.RoleStudent,
			Department:   "Computer Science",
			IsActive:     true,
		},
		{
			UserCode:     "STU0002",
			Email:        "priya.sharma@campus.edu",
			PasswordHash: passwordHash,
			Name:         "Priya Sharma",
			Role:         model.RoleStudent,
			Department:   "Computer Science",
			IsActive:     true,
		},
		{
			UserCode:     "STU0003",
			Email:        "rahul.singh@campus.edu",
			PasswordHash: passwordHash,
			Name:         "Rahul Singh",
			Role:         model.RoleStudent,
			Department:   "Electronics",
			IsActive:     true,
		},
	}

	if err := s.db.Create(&students).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d students\n", len(students))
	return nil
}

// SeedCourses creates sample courses and enrolls department students
func (s *Seeder) SeedCourses() error {
	var count int64
	if err := s.db.Model(&model.Course{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Courses already exist, skipping...")
		return nil
	}

	var csFaculty, ecFaculty model.User
	if err := s.db.Where("user_code = ?", "FAC0001").First(&csFaculty).Error; err != nil {
		return err
	}
	if err := s.db.Where("user_code = ?", "FAC0002").First(&ecFaculty).Error; err != nil {
		return err
	}

	courses := []model.Course{
		{
			Title:       "Data Structures and Algorithms",
			Code:        "CS301",
			Description: "Core data structures, algorithm design and complexity analysis.",
			Department:  "Computer Science",
			FacultyID:   csFaculty.ID,
			Credits:     4,
			IsActive:    true,
		},
		{
			Title:       "Database Management Systems",
			Code:        "CS302",
			Description: "Relational model, SQL, transactions and indexing.",
			Department:  "Computer Science",
			FacultyID:   csFaculty.ID,
			Credits:     4,
			IsActive:    true,
		},
		{
			Title:       "Digital Signal Processing",
			Code:        "EC301",
			Description: "Sampling, transforms and filter design.",
			Department:  "Electronics",
			FacultyID:   ecFaculty.ID,
			Credits:     4,
			IsActive:    true,
		},
	}

	if err := s.db.Create(&courses).Error; err != nil {
		return err
	}

	// Enroll department students in their department's courses
	for _, course := range courses {
		var studentIDs []uint
		if err := s.db.Model(&model.User{}).
			Where("role = ? AND department = ?", model.RoleStudent, course.Department).
			Pluck("id", &studentIDs).Error; err != nil {
			return err
		}
		for _, id := range studentIDs {
			enrollment := model.CourseEnrollment{CourseID: course.ID, StudentID: id}
			if err := s.db.Create(&enrollment).Error; err != nil {
				return err
			}
		}
	}

	log.Printf("✅ Created %d courses with enrollments\n", len(courses))
	return nil
}

// SeedEvents creates sample events
func (s *Seeder) SeedEvents() error {
	var count int64
	if err := s.db.Model(&model.Event{}).Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("⏭️  Events already exist, skipping...")
		return nil
	}

	var organizer model.User
	if err := s.db.Where("user_code = ?", "FAC0001").First(&organizer).Error; err != nil {
		return err
	}

	events := []model.Event{
		{
			Title:           "Annual Tech Fest",
			Description:     "Hackathons, project exhibitions and guest lectures.",
			Date:            time.Now().AddDate(0, 1, 0),
			Venue:           "Main Auditorium",
			OrganizerID:     organizer.ID,
			Status:          model.EventStatusApproved,
			MaxParticipants: 200,
		},
		{
			Title:           "Placement Orientation",
			Description:     "Overview of the upcoming placement season.",
			Date:            time.Now().AddDate(0, 0, 14),
			Venue:           "Seminar Hall B",
			OrganizerID:     organizer.ID,
			Status:          model.EventStatusPending,
			MaxParticipants: 0, // unlimited
		},
	}

	if err := s.db.Create(&events).Error; err != nil {
		return err
	}

	log.Printf("✅ Created %d events\n", len(events))
	return nil
}

// RunSeeds seeds the database with initial data
func RunSeeds(db *gorm.DB) error {
	seeder := NewSeeder(db)
	return seeder.SeedAll()
}
