package store

import "github.com/sweetpotato0/ai-claims/policy"

// DefaultRules returns the Simply Connect Plus rule book used for seeding.
func DefaultRules() []policy.Rule {
	return []policy.Rule{
		{
			RuleID:             "RULE-001",
			Category:           "GP_VISITS",
			Plan:               "Simply Connect Plus",
			Title:              "GP Visits Coverage",
			Description:        "50% cover up to €30 per visit. Maximum 10 GP visits per policy year. No referral required. Direct reimbursement available. Prescription charges not covered.",
			CoveragePercentage: 50,
			RejectionReasons:   []string{"Prescription charges claimed", "More than 10 visits claimed", "Receipt not stamped"},
			Notes:              "Submit receipts via app or member area within 12 months",
		},
		{
			RuleID:             "RULE-002",
			Category:           "CONSULTANT_VISITS",
			Plan:               "Simply Connect Plus",
			Title:              "Consultant Out-patient Visits",
			Description:        "50% refund of costs. GP referral letter required (valid for 6 months). Must be from a registered consultant. Subject to €500 annual out-patient cap.",
			CoveragePercentage: 50,
			RequiresReferral:   true,
			RejectionReasons:   []string{"No GP referral letter provided", "Referral expired (older than 6 months)", "Consultant not registered with Laya", "Receipt not on headed paper or stamped"},
			Notes:              "Referral must be dated within 6 months of consultation",
		},
		{
			RuleID:             "RULE-003",
			Category:           "MRI_SCANS",
			Plan:               "Simply Connect Plus",
			Title:              "MRI/CT Diagnostic Scans",
			Description:        "Full cover in participating centers with Direct Settlement. GP or Consultant referral required. Clinical indicators must be met. Beacon Hospital, Mater Private, Blackrock Clinic included.",
			CoveragePercentage: 100,
			RequiresReferral:   true,
			RejectionReasons:   []string{"No referral letter attached", "Clinical indicators not met", "Non-participating center used", "Scan not medically necessary"},
			Notes:              "Pre-authorization required for some scans. Check participating centers.",
		},
		{
			RuleID:             "RULE-004",
			Category:           "PHYSIOTHERAPY",
			Plan:               "Simply Connect Plus",
			Title:              "Physiotherapy Sessions",
			Description:        "50% refund of costs. Therapist must be registered with Irish Society of Chartered Physiotherapists or CORU. Subject to €500 annual out-patient cap. No referral required for initial assessment.",
			CoveragePercentage: 50,
			RejectionReasons:   []string{"Therapist not registered with ISCP or CORU", "Receipt missing stamp or letterhead", "Annual €500 out-patient cap exceeded"},
			Notes:              "Always check therapist registration on CORU website",
		},
		{
			RuleID:           "RULE-005",
			Category:         "RECEIPT_REQUIREMENTS",
			Plan:             "All Plans",
			Title:            "Receipt Submission Rules",
			Description:      "All receipts must be submitted within 12 months from end of policy year. Must be on stamped or headed paper. Must show: Date, Provider name, Treatment type, Cost, Patient name.",
			RejectionReasons: []string{"Receipt submitted after 12-month deadline", "Receipt not on headed paper or unstamped", "Missing required fields (date, provider, cost)", "Receipt illegible or damaged", "Duplicate claim"},
			Notes:            "Keep originals for 6 years. Digital copies accepted via member portal.",
		},
		{
			RuleID:           "RULE-006",
			Category:         "PRE_EXISTING_CONDITIONS",
			Plan:             "All Plans",
			Title:            "Pre-existing Condition Definition",
			Description:      "An ailment where signs or symptoms existed in 6 months before: (a) first health insurance, (b) rejoining after 13+ week gap, (c) upgrading to higher cover. Medical advisors determine pre-existing status.",
			RejectionReasons: []string{"Condition existed within 6 months of joining", "Symptoms documented before policy start", "Treatment for same condition in last 6 months", "Medical records show pre-existing diagnosis"},
			Notes:            "5-year waiting period applies. Accident/injury covered immediately.",
		},
		{
			RuleID:             "RULE-007",
			Category:           "OUTPATIENT_CAP",
			Plan:               "Simply Connect Plus",
			Title:              "Annual Out-patient Expense Cap",
			Description:        "€500 maximum refund per member per year for everyday medical expenses. €1 annual excess applies first. Some benefits exempt (maternity, cancer, child healthcare).",
			CoveragePercentage: 50,
			RejectionReasons:   []string{"Annual €500 cap already reached", "Excess €1 not yet met"},
			Notes:              "Cap resets each policy year. Check remaining balance in member portal.",
		},
		{
			RuleID:           "RULE-008",
			Category:         "CLINICAL_INDICATORS",
			Plan:             "All Plans",
			Title:            "Clinical Indicators for Procedures",
			Description:      "Certain procedures require clinical indicators from GP or Consultant to justify medical necessity. Must match Schedule of Benefits. Examples: MRI requires neurological symptoms, Orthopedic surgery requires failed conservative treatment.",
			RequiresReferral: true,
			RejectionReasons: []string{"Clinical indicators not provided", "Indicators do not match Schedule of Benefits", "Treatment not medically necessary", "Conservative treatment not attempted first"},
			Notes:            "Always check Schedule of Benefits before booking procedures.",
		},
		{
			RuleID:             "RULE-009",
			Category:           "HOSPITAL_DAYCASE",
			Plan:               "Simply Connect Plus",
			Title:              "Day-case Hospital Treatment",
			Description:        "Full cover in public and private hospitals. €50 excess for private day-case. Direct settlement available. Consultant fees fully covered if using participating consultant.",
			CoveragePercentage: 100,
			RequiresReferral:   true,
			RejectionReasons:   []string{"Treatment could have been done as out-patient", "Non-participating hospital", "No prior authorization for hi-tech hospitals"},
			Notes:              "Always get pre-authorization for private hospitals to confirm cover.",
		},
		{
			RuleID:           "RULE-010",
			Category:         "WAITING_PERIODS",
			Plan:             "All Plans",
			Title:            "Waiting Periods for New Members",
			Description:      "Accident/injury: Immediate cover. New illness after membership: 26 weeks. Pre-existing conditions: 5 years. Maternity: 12 months (under age 55).",
			RejectionReasons: []string{"Waiting period not yet completed", "Claim submitted during waiting period", "Pre-existing condition within 5-year wait"},
			Notes:            "Waiting periods start from policy start date. No waiting for accident/injury.",
		},
	}
}
