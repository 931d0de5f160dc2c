package membership

import "github.com/cavos-labs/forma-app/internal/upstream"

func strptr(s string) *string { return &s }

// PlaceholderMemberships is the fixed development dataset shown when
// FallbackOnError is enabled and the upstream list call fails. It mirrors
// the database structure so the views render realistically.
func PlaceholderMemberships() []upstream.Membership {
	return []upstream.Membership{
		{
			ID: "1", UserID: "user-1", GymID: "gym-1",
			Status:         upstream.MembershipActive,
			StartDate:      strptr("2024-07-01"),
			EndDate:        strptr("2024-08-01"),
			GracePeriodEnd: strptr("2024-08-04"),
			MonthlyFee:     25000,
			CreatedAt:      "2024-07-01T10:00:00Z",
			User: upstream.MemberProfile{
				FirstName: "María", LastName: "González",
				Email:       "maria.gonzalez@email.com",
				Phone:       strptr("+506 8888-8888"),
				DateOfBirth: strptr("1990-03-15"),
			},
			LatestPayment: &upstream.LatestPayment{
				ID: "payment-1", Amount: 25000,
				Status:          upstream.PaymentApproved,
				PaymentDate:     "2024-07-01T09:00:00Z",
				SinpeReference:  strptr("REF123456"),
				SinpePhone:      strptr("+506 8888-8888"),
				PaymentProofURL: "/payment-proof-1.jpg",
			},
		},
		{
			ID: "2", UserID: "user-2", GymID: "gym-1",
			Status:     upstream.MembershipPendingPayment,
			MonthlyFee: 25000,
			CreatedAt:  "2024-07-15T14:30:00Z",
			User: upstream.MemberProfile{
				FirstName: "Carlos", LastName: "Rodríguez",
				Email:       "carlos.rodriguez@email.com",
				Phone:       strptr("+506 7777-7777"),
				DateOfBirth: strptr("1985-11-22"),
			},
			LatestPayment: &upstream.LatestPayment{
				ID: "payment-2", Amount: 25000,
				Status:          upstream.PaymentPending,
				PaymentDate:     "2024-07-15T14:00:00Z",
				SinpeReference:  strptr("REF789012"),
				SinpePhone:      strptr("+506 7777-7777"),
				PaymentProofURL: "/payment-proof-2.jpg",
			},
		},
		{
			ID: "3", UserID: "user-3", GymID: "gym-1",
			Status:         upstream.MembershipExpired,
			StartDate:      strptr("2024-06-01"),
			EndDate:        strptr("2024-07-10"),
			GracePeriodEnd: strptr("2024-07-13"),
			MonthlyFee:     25000,
			CreatedAt:      "2024-06-01T08:00:00Z",
			User: upstream.MemberProfile{
				FirstName: "Ana", LastName: "Martínez",
				Email:       "ana.martinez@email.com",
				Phone:       strptr("+506 6666-6666"),
				DateOfBirth: strptr("1992-08-07"),
			},
			LatestPayment: &upstream.LatestPayment{
				ID: "payment-3", Amount: 25000,
				Status:          upstream.PaymentApproved,
				PaymentDate:     "2024-06-01T07:30:00Z",
				SinpeReference:  strptr("REF345678"),
				SinpePhone:      strptr("+506 6666-6666"),
				PaymentProofURL: "/payment-proof-3.jpg",
			},
		},
		{
			ID: "4", UserID: "user-4", GymID: "gym-1",
			Status:         upstream.MembershipActive,
			StartDate:      strptr("2024-07-10"),
			EndDate:        strptr("2024-08-10"),
			GracePeriodEnd: strptr("2024-08-13"),
			MonthlyFee:     25000,
			CreatedAt:      "2024-07-10T16:00:00Z",
			User: upstream.MemberProfile{
				FirstName: "Luis", LastName: "Vargas",
				Email:       "luis.vargas@email.com",
				DateOfBirth: strptr("1988-12-03"),
			},
			LatestPayment: &upstream.LatestPayment{
				ID: "payment-4", Amount: 25000,
				Status:          upstream.PaymentApproved,
				PaymentDate:     "2024-07-10T15:30:00Z",
				SinpeReference:  strptr("REF901234"),
				SinpePhone:      strptr("+506 5555-5555"),
				PaymentProofURL: "/payment-proof-4.jpg",
			},
		},
	}
}
