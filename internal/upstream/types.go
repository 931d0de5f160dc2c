package upstream

import "strings"

// Status enums mirror the gym API's database schema. The gateway never
// invents values outside these sets.

type MembershipStatus string

const (
	MembershipPendingPayment MembershipStatus = "pending_payment"
	MembershipActive         MembershipStatus = "active"
	MembershipExpired        MembershipStatus = "expired"
	MembershipInactive       MembershipStatus = "inactive"
	MembershipCancelled      MembershipStatus = "cancelled"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentApproved  PaymentStatus = "approved"
	PaymentRejected  PaymentStatus = "rejected"
	PaymentCancelled PaymentStatus = "cancelled"
)

func (s MembershipStatus) Valid() bool {
	switch s {
	case MembershipPendingPayment, MembershipActive, MembershipExpired, MembershipInactive, MembershipCancelled:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentApproved, PaymentRejected, PaymentCancelled:
		return true
	}
	return false
}

type User struct {
	ID       string         `json:"id"`
	Email    string         `json:"email"`
	Metadata map[string]any `json:"metadata"`
}

type Gym struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Address    *string `json:"address,omitempty"`
	Phone      *string `json:"phone,omitempty"`
	Email      *string `json:"email,omitempty"`
	LogoURL    *string `json:"logo_url,omitempty"`
	MonthlyFee int64   `json:"monthly_fee"`
	SinpePhone string  `json:"sinpe_phone"`
	IsActive   bool    `json:"is_active"`
	Role       string  `json:"role"`
}

// MemberProfile is the user snapshot embedded in membership and payment rows.
type MemberProfile struct {
	FirstName       string  `json:"first_name"`
	LastName        string  `json:"last_name"`
	Email           string  `json:"email"`
	Phone           *string `json:"phone"`
	DateOfBirth     *string `json:"date_of_birth"`
	ProfileImageURL *string `json:"profile_image_url"`
}

// LatestPayment is the backend-computed snapshot of the most recent payment
// for a membership. The gateway never reorders or recomputes it.
type LatestPayment struct {
	ID              string        `json:"id"`
	Amount          int64         `json:"amount"`
	Status          PaymentStatus `json:"status"`
	PaymentDate     string        `json:"payment_date"`
	SinpeReference  *string       `json:"sinpe_reference"`
	SinpePhone      *string       `json:"sinpe_phone"`
	PaymentProofURL string        `json:"payment_proof_url"`
}

type Membership struct {
	ID             string           `json:"id"`
	UserID         string           `json:"user_id"`
	GymID          string           `json:"gym_id"`
	Status         MembershipStatus `json:"status"`
	StartDate      *string          `json:"start_date"`
	EndDate        *string          `json:"end_date"`
	GracePeriodEnd *string          `json:"grace_period_end"`
	MonthlyFee     int64            `json:"monthly_fee"`
	CreatedAt      string           `json:"created_at"`
	User           MemberProfile    `json:"user"`
	LatestPayment  *LatestPayment   `json:"latest_payment"`
}

// MembershipRef is the membership snapshot embedded in payment rows.
type MembershipRef struct {
	ID         string  `json:"id"`
	UserID     string  `json:"user_id"`
	GymID      string  `json:"gym_id"`
	Status     string  `json:"status"`
	StartDate  *string `json:"start_date"`
	EndDate    *string `json:"end_date"`
	MonthlyFee int64   `json:"monthly_fee"`
}

type Payment struct {
	ID              string        `json:"id"`
	MembershipID    string        `json:"membership_id"`
	Amount          int64         `json:"amount"`
	PaymentMethod   string        `json:"payment_method"`
	SinpeReference  *string       `json:"sinpe_reference"`
	SinpePhone      *string       `json:"sinpe_phone"`
	PaymentProofURL string        `json:"payment_proof_url"`
	Status          PaymentStatus `json:"status"`
	PaymentDate     string        `json:"payment_date"`
	ApprovedDate    *string       `json:"approved_date"`
	ApprovedBy      *string       `json:"approved_by"`
	RejectionReason *string       `json:"rejection_reason"`
	Notes           *string       `json:"notes"`
	CreatedAt       string        `json:"created_at"`
	UpdatedAt       string        `json:"updated_at"`
	Membership      MembershipRef `json:"membership"`
	User            struct {
		ID string `json:"id"`
		MemberProfile
	} `json:"user"`
}

// HasPendingProof reports whether a proof URL is the placeholder written at
// member creation, before the real receipt is uploaded.
func HasPendingProof(proofURL string) bool {
	return strings.Contains(proofURL, "pending-upload")
}

type DailyWorkout struct {
	ID          string `json:"id"`
	GymID       string `json:"gym_id"`
	WorkoutDate string `json:"workout_date"`
	WorkoutText string `json:"workout_text"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

// Request payloads.

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SignUpRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	GymName    string `json:"gymName"`
	GymAddress string `json:"gymAddress"`
	GymPhone   string `json:"gymPhone,omitempty"`
	GymEmail   string `json:"gymEmail,omitempty"`
	MonthlyFee string `json:"monthlyFee"`
	SinpePhone string `json:"sinpePhone"`
}

type ResetPasswordRequest struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Password     string `json:"password"`
}

type CreateMemberRequest struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	GymID       string `json:"gymId"`
	MonthlyFee  int64  `json:"monthlyFee"`
	StartDate   string `json:"startDate"`
}

type UpdateMemberRequest struct {
	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Phone       string `json:"phone,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
}

type UpdatePaymentRequest struct {
	PaymentID       string        `json:"paymentId"`
	Status          PaymentStatus `json:"status"`
	RejectionReason string        `json:"rejectionReason,omitempty"`
	ApprovedBy      string        `json:"approvedBy,omitempty"`
}

type CreateWorkoutRequest struct {
	GymID       string `json:"gym_id"`
	WorkoutDate string `json:"workout_date"`
	WorkoutText string `json:"workout_text"`
}

type UpdateWorkoutRequest struct {
	ID          string `json:"id"`
	WorkoutText string `json:"workout_text"`
}

// Query params.

type ListMembershipsParams struct {
	GymID  string
	Limit  int
	Offset int
	Status MembershipStatus // empty means all
}

type ListPaymentsParams struct {
	GymID        string
	Limit        int
	Offset       int
	Status       PaymentStatus // empty means all
	MembershipID string
}

type ListWorkoutsParams struct {
	GymID string
	Year  int
	Month int
}

// Response envelopes. Every upstream response carries success plus an
// optional error string.

type AuthResponse struct {
	Success bool   `json:"success"`
	User    *User  `json:"user,omitempty"`
	Gym     *Gym   `json:"gym,omitempty"`
	UserID  string `json:"userId,omitempty"`
	GymID   string `json:"gymId,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type BasicResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

type MembershipsResponse struct {
	Success     bool         `json:"success"`
	Memberships []Membership `json:"memberships"`
	Error       string       `json:"error,omitempty"`
}

type PaymentsResponse struct {
	Success  bool      `json:"success"`
	Payments []Payment `json:"payments"`
	Error    string    `json:"error,omitempty"`
}

type UpdatePaymentResponse struct {
	Success bool     `json:"success"`
	Payment *Payment `json:"payment,omitempty"`
	Error   string   `json:"error,omitempty"`
}

type CreatedMember struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type CreateMemberResponse struct {
	Success bool           `json:"success"`
	User    *CreatedMember `json:"user,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// WorkoutsResponse may arrive without a success flag; the workouts array is
// authoritative.
type WorkoutsResponse struct {
	Success  bool           `json:"success"`
	Workouts []DailyWorkout `json:"workouts"`
	Error    string         `json:"error,omitempty"`
}

type WorkoutResponse struct {
	Success bool          `json:"success"`
	Workout *DailyWorkout `json:"workout,omitempty"`
	Error   string        `json:"error,omitempty"`
}
