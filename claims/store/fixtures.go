package store

import (
	"time"

	"github.com/sweetpotato0/ai-claims/claims"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func ptr[T any](v T) *T { return &v }

// SampleClaims returns the demo claim set used by the seeder and the in-memory store.
//
// LAYA-1001 has an approved claim, a claim rejected for a missing referral
// (recoverable from the member's documents) and a pending claim without
// receipts. LAYA-1022 has a claim rejected for a receipt problem.
func SampleClaims() []claims.Claim {
	return []claims.Claim{
		{
			Header: claims.Header{
				ClaimID:               "CLM-2026-001",
				MembershipNumber:      "LAYA-1001",
				Title:                 "Mr",
				Surname:               "Doe",
				Forenames:             "John",
				DateOfBirth:           day("1985-03-15"),
				Telephone:             "085-123-4567",
				CorrespondenceAddress: "123 Main St, Dublin 2",
				SubmissionDate:        day("2026-01-05"),
				Status:                claims.StatusApproved,
				AssessedAmount:        ptr(76.95),
			},
			ReceiptItems: []claims.ReceiptItem{
				{ClaimID: "CLM-2026-001", TreatmentType: "GP Visit", ReceiptDate: day("2025-12-18"), Cost: 30.00},
				{ClaimID: "CLM-2026-001", TreatmentType: "Physiotherapy", ReceiptDate: day("2025-12-22"), Cost: 45.50},
				{ClaimID: "CLM-2026-001", TreatmentType: "Prescription", ReceiptDate: day("2025-12-22"), Cost: 10.00},
			},
			PaymentDetails: &claims.PaymentDetails{
				ClaimID:                "CLM-2026-001",
				UseExistingDirectDebit: true,
				SignatureDate:          ptr(day("2026-01-05")),
				IsSigned:               true,
			},
		},
		{
			Header: claims.Header{
				ClaimID:               "CLM-2026-022",
				MembershipNumber:      "LAYA-1001",
				Title:                 "Mr",
				Surname:               "Doe",
				Forenames:             "John",
				DateOfBirth:           day("1985-03-15"),
				Telephone:             "085-123-4567",
				CorrespondenceAddress: "123 Main St, Dublin 2",
				SubmissionDate:        day("2026-02-10"),
				Status:                claims.StatusRejected,
				RejectionReason:       ptr("Missing GP Referral letter for MRI scan"),
			},
			ReceiptItems: []claims.ReceiptItem{
				{ClaimID: "CLM-2026-022", TreatmentType: "MRI Scan", ReceiptDate: day("2026-02-02"), Cost: 250.00},
				{ClaimID: "CLM-2026-022", TreatmentType: "Consultant Fee", ReceiptDate: day("2026-02-02"), Cost: 150.00},
			},
			PaymentDetails: &claims.PaymentDetails{
				ClaimID:            "CLM-2026-022",
				AccountHolderName:  "John Doe",
				AccountNumber:      "IE29AIBK93115212345678",
				BankSortCode:       "93-11-52",
				BankNameAndAddress: "AIB, 7/12 Dame Street, Dublin 2",
				SignatureDate:      ptr(day("2026-02-10")),
				IsSigned:           true,
			},
		},
		{
			Header: claims.Header{
				ClaimID:          "CLM-2025-118",
				MembershipNumber: "LAYA-1001",
				Title:            "Mr",
				Surname:          "Doe",
				Forenames:        "John",
				DateOfBirth:      day("1985-03-15"),
				SubmissionDate:   day("2025-12-01"),
				Status:           claims.StatusPending,
			},
			Dependants: []claims.Dependant{
				{ClaimID: "CLM-2025-118", Name: "Emma Doe", Relationship: "Daughter"},
			},
		},
		{
			Header: claims.Header{
				ClaimID:               "CLM-2026-031",
				MembershipNumber:      "LAYA-1022",
				Title:                 "Ms",
				Surname:               "Nolan",
				Forenames:             "Laura",
				DateOfBirth:           day("1990-08-14"),
				Telephone:             "087-234-8901",
				CorrespondenceAddress: "78 West End, Roscommon",
				SubmissionDate:        day("2026-01-15"),
				Status:                claims.StatusRejected,
				RejectionReason:       ptr("Receipt not on headed paper or stamped by the provider"),
			},
			ReceiptItems: []claims.ReceiptItem{
				{ClaimID: "CLM-2026-031", TreatmentType: "Physiotherapy", ReceiptDate: day("2026-01-08"), Cost: 60.00},
			},
			AccidentDetails: &claims.AccidentDetails{
				ClaimID:             "CLM-2026-031",
				Description:         "Sprained ankle playing football",
				AccidentDate:        ptr(day("2026-01-03")),
				ExpensesRecoverable: false,
				MemberSigned:        true,
			},
		},
	}
}
