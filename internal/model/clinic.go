// internal/model/clinic.go
package model

import "time"

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

type Appointment struct {
	ID              string            `json:"id"`
	PatientID       string            `json:"patient_id"`
	PatientName     string            `json:"patient_name"`
	PatientPhone    string            `json:"patient_phone"`
	DoctorID        string            `json:"doctor_id"`
	DoctorName      string            `json:"doctor_name"`
	ServiceID       string            `json:"service_id"`
	ServiceName     string            `json:"service_name"`
	AppointmentDate time.Time         `json:"appointment_date"`
	Status          AppointmentStatus `json:"status"`
	Notes           string            `json:"notes,omitempty"`
	CreatedBy       string            `json:"created_by"`
	CreatedAt       time.Time         `json:"created_at"`
}

type AppointmentCreate struct {
	PatientID       string    `json:"patient_id,omitempty"`
	PatientName     string    `json:"patient_name"`
	PatientPhone    string    `json:"patient_phone"`
	DoctorID        string    `json:"doctor_id"`
	ServiceID       string    `json:"service_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	Notes           string    `json:"notes,omitempty"`
	CreatedBy       string    `json:"created_by"`
}

// AppointmentUpdate carries only the fields to change.
type AppointmentUpdate struct {
	DoctorID        *string            `json:"doctor_id,omitempty"`
	ServiceID       *string            `json:"service_id,omitempty"`
	AppointmentDate *time.Time         `json:"appointment_date,omitempty"`
	Status          *AppointmentStatus `json:"status,omitempty"`
	Notes           *string            `json:"notes,omitempty"`
}

// AppointmentFilter narrows GET /appointments. Empty fields are ignored.
type AppointmentFilter struct {
	Status       AppointmentStatus
	PatientID    string
	PatientPhone string
}

type Doctor struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Specialization string    `json:"specialization"`
	Phone          string    `json:"phone,omitempty"`
	AvailableDays  []string  `json:"available_days"`
	CreatedAt      time.Time `json:"created_at"`
}

type Service struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	NameEN          string    `json:"name_en"`
	Description     string    `json:"description,omitempty"`
	DurationMinutes int       `json:"duration_minutes"`
	Price           *float64  `json:"price,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type Stats struct {
	TotalAppointments     int     `json:"total_appointments"`
	PendingAppointments   int     `json:"pending_appointments"`
	ConfirmedAppointments int     `json:"confirmed_appointments"`
	CompletedAppointments int     `json:"completed_appointments"`
	CancelledAppointments int     `json:"cancelled_appointments"`
	TotalPatients         int     `json:"total_patients"`
	TotalDoctors          int     `json:"total_doctors"`
	AvgRating             float64 `json:"avg_rating"`
}

// User is the signed-in principal, either a patient or an admin.
type User struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Username string `json:"username,omitempty"`
	Role     string `json:"role"`
	// FCMToken is the device token campaign pushes go to.
	FCMToken string `json:"fcm_token,omitempty"`
}

// ProfileUpdate changes the signed-in user. Empty fields are left alone.
type ProfileUpdate struct {
	Name     string
	FCMToken string
}

type Review struct {
	ID            string    `json:"id"`
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	Rating        int       `json:"rating"`
	Comment       string    `json:"comment,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type ReviewCreate struct {
	AppointmentID string `json:"appointment_id"`
	PatientID     string `json:"patient_id"`
	Rating        int    `json:"rating"`
	Comment       string `json:"comment,omitempty"`
}

const (
	MinRating = 1
	MaxRating = 5
)

const (
	RoleAdmin   = "admin"
	RolePatient = "patient"
)
