package store

import (
	"time"

	"github.com/sweetpotato0/ai-claims/member"
)

func day(s string) time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return t
}

func dayPtr(s string) *time.Time {
	t := day(s)
	return &t
}

// SampleProfiles returns the demo CRM profiles. LAYA-1001 has a current GP
// referral on file; LAYA-1022 only has an expired one.
func SampleProfiles() []member.Profile {
	return []member.Profile{
		{
			ID:          "LAYA-1001",
			Name:        "John Doe",
			Plan:        "Simply Connect Plus",
			Tier:        "Gold",
			Email:       "john.doe@email.com",
			Phone:       "085-123-4567",
			Address:     "123 Main St, Dublin 2",
			DateOfBirth: dayPtr("1985-03-15"),
			InteractionNotes: []member.InteractionNote{
				{
					Date:  day("2026-01-20"),
					Type:  "Phone Call",
					Agent: "Sarah Murphy",
					Note:  "Member called to confirm Beacon Hospital is in-network for MRI scans. Confirmed yes, Direct Settlement applies.",
				},
				{
					Date:  day("2026-01-21"),
					Type:  "Document Upload",
					Agent: "System",
					Note:  "Member uploaded GP Referral Letter (Valid until 2026-07-21) for neurological consultation.",
				},
				{
					Date:  day("2025-12-10"),
					Type:  "Policy Update",
					Agent: "System",
					Note:  "Loyalty Bonus activated - Additional 10% coverage on diagnostic scans for 2026.",
				},
			},
			UploadedDocuments: []member.Document{
				{
					DocumentID: "DOC-2026-001",
					Type:       member.TypeGPReferralLetter,
					UploadDate: day("2026-01-21"),
					ValidUntil: dayPtr("2026-07-21"),
					Provider:   "Dr. Smith GP",
					Reason:     "MRI Brain - Investigation of recurring headaches",
				},
			},
			PolicyDetails: &member.PolicyDetails{
				PlanName:           "Simply Connect Plus",
				StartDate:          day("2024-01-01"),
				RenewalDate:        day("2027-01-01"),
				AnnualLimit:        5000.00,
				UsedToDate:         460.00,
				LoyaltyBonusActive: true,
			},
		},
		{
			ID:          "LAYA-1022",
			Name:        "Laura Nolan",
			Plan:        "Simply Connect Plus",
			Tier:        "Silver",
			Email:       "laura.nolan@email.com",
			Phone:       "087-234-8901",
			Address:     "78 West End, Roscommon",
			DateOfBirth: dayPtr("1990-08-14"),
			InteractionNotes: []member.InteractionNote{
				{
					Date:  day("2026-01-10"),
					Type:  "Email",
					Agent: "System",
					Note:  "Member received automated reminder: Consultant visits require valid GP referral (within 6 months).",
				},
			},
			UploadedDocuments: []member.Document{
				{
					DocumentID: "DOC-2025-987",
					Type:       member.TypeGPReferralLetter,
					UploadDate: day("2025-06-15"),
					ValidUntil: dayPtr("2025-12-15"),
					Provider:   "Dr. O'Brien GP",
					Reason:     "Dermatology consultation - skin condition",
				},
			},
			PolicyDetails: &member.PolicyDetails{
				PlanName:    "Simply Connect Plus",
				StartDate:   day("2025-06-01"),
				RenewalDate: day("2026-06-01"),
				AnnualLimit: 5000.00,
			},
		},
	}
}
