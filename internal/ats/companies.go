package ats

import (
	"strings"

	"alfredoptarigan/cv-analyzer/internal/models"
)

type companyEntry struct {
	profile models.CompanyATSProfile
	aliases []string
}

// Curated table of well-known employers and the tracking systems they use.
// Static on purpose: the set changes rarely and a miss is not an error,
// the field is simply omitted from the result.
var companyTable = map[string]companyEntry{
	"google": {
		profile: models.CompanyATSProfile{
			Company: "Google",
			System:  "Internal (gHire)",
			Tips: []string{
				"Quantify impact in every bullet; Google screens for measurable outcomes.",
				"List programming languages explicitly, not just project names.",
			},
		},
		aliases: []string{"alphabet", "google llc"},
	},
	"amazon": {
		profile: models.CompanyATSProfile{
			Company: "Amazon",
			System:  "Internal (Amazon Jobs)",
			Tips: []string{
				"Mirror the Leadership Principles vocabulary where it is honest to do so.",
				"Use the STAR structure in experience bullets; screeners are trained on it.",
			},
		},
		aliases: []string{"aws", "amazon web services"},
	},
	"meta": {
		profile: models.CompanyATSProfile{
			Company: "Meta",
			System:  "Internal",
			Tips: []string{
				"Emphasize scale: users, requests, data volume.",
			},
		},
		aliases: []string{"facebook", "instagram", "whatsapp"},
	},
	"microsoft": {
		profile: models.CompanyATSProfile{
			Company: "Microsoft",
			System:  "iCIMS",
			Tips: []string{
				"Keep formatting simple; iCIMS parses single-column layouts most reliably.",
				"Spell out acronyms once — iCIMS keyword search is literal.",
			},
		},
		aliases: []string{"msft", "linkedin"},
	},
	"apple": {
		profile: models.CompanyATSProfile{
			Company: "Apple",
			System:  "Internal (Talent)",
			Tips: []string{
				"Be precise about which platforms and frameworks you shipped on.",
			},
		},
	},
	"netflix": {
		profile: models.CompanyATSProfile{
			Company: "Netflix",
			System:  "Lever",
			Tips: []string{
				"Lever renders plain text; avoid tables and text boxes.",
			},
		},
	},
	"spotify": {
		profile: models.CompanyATSProfile{
			Company: "Spotify",
			System:  "Greenhouse",
			Tips: []string{
				"Greenhouse parses standard headers well; keep Experience/Skills/Education naming.",
			},
		},
	},
	"airbnb": {
		profile: models.CompanyATSProfile{
			Company: "Airbnb",
			System:  "Greenhouse",
			Tips: []string{
				"Match the posting's exact keyword phrasing; Greenhouse scorecards quote it.",
			},
		},
	},
	"deloitte": {
		profile: models.CompanyATSProfile{
			Company: "Deloitte",
			System:  "Workday",
			Tips: []string{
				"Workday re-parses your CV into form fields — check the parsed preview before submitting.",
				"Dates in 'MMM YYYY' format parse most reliably in Workday.",
			},
		},
	},
	"accenture": {
		profile: models.CompanyATSProfile{
			Company: "Accenture",
			System:  "Workday",
			Tips: []string{
				"Repeat key skills in both the skills section and experience bullets; Workday weighs frequency.",
			},
		},
	},
	"sap": {
		profile: models.CompanyATSProfile{
			Company: "SAP",
			System:  "SuccessFactors",
			Tips: []string{
				"SuccessFactors favors exact job-title matches; align your headline with the posting.",
			},
		},
	},
	"siemens": {
		profile: models.CompanyATSProfile{
			Company: "Siemens",
			System:  "Avature",
			Tips: []string{
				"Include certifications with their full official names.",
			},
		},
	},
}

// LookupCompanyATS finds the curated profile for a company name by fuzzy
// match: exact, substring in either direction, alias, or the registrable
// part of a domain/e-mail. Returns nil when nothing matches.
func LookupCompanyATS(name string) *models.CompanyATSProfile {
	key := normalizeCompanyName(name)
	if key == "" {
		return nil
	}

	if entry, ok := companyTable[key]; ok {
		profile := entry.profile
		return &profile
	}

	for tableKey, entry := range companyTable {
		if strings.Contains(key, tableKey) || strings.Contains(tableKey, key) {
			profile := entry.profile
			return &profile
		}
		for _, alias := range entry.aliases {
			if key == alias || strings.Contains(key, alias) {
				profile := entry.profile
				return &profile
			}
		}
	}

	return nil
}

// normalizeCompanyName lowercases, strips URL/e-mail noise and extracts
// the registrable label from domains ("careers.google.com" -> "google").
func normalizeCompanyName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))

	if at := strings.LastIndex(key, "@"); at != -1 {
		key = key[at+1:]
	}
	key = strings.TrimPrefix(key, "https://")
	key = strings.TrimPrefix(key, "http://")
	key = strings.TrimPrefix(key, "www.")
	if slash := strings.Index(key, "/"); slash != -1 {
		key = key[:slash]
	}

	if strings.Contains(key, ".") {
		parts := strings.Split(key, ".")
		// drop the TLD, keep the label before it
		if len(parts) >= 2 {
			key = parts[len(parts)-2]
		}
	}

	return strings.TrimSpace(key)
}
