// Package reference holds the static lookup lists behind the capture forms
// and the seed data for the managed position and qualification catalogs.
package reference

import "sort"

var KLevels = []string{"K1", "K2", "K3", "K4", "K5"}

var Languages = []string{
	"Afrikaans", "English", "isiNdebele", "isiXhosa", "isiZulu", "Sepedi",
	"Sesotho", "Setswana", "siSwati", "Tshivenda", "Xitsonga",
	"French", "German", "Portuguese", "Spanish",
}

// QualificationTypes maps a qualification type to its known names.
var QualificationTypes = map[string][]string{
	"Certificate": {
		"Higher Certificate in Information Technology",
		"National Certificate: IT Systems Support",
	},
	"Diploma": {
		"Diploma in Information Technology",
		"National Diploma: Computer Systems Engineering",
	},
	"Degree": {
		"BCom Information Systems",
		"BSc Computer Science",
		"BEng Electronic Engineering",
	},
	"Honours": {
		"BCom Honours Information Systems",
		"BSc Honours Computer Science",
	},
	"Masters": {
		"MBA",
		"MSc Computer Science",
	},
	"Professional Certification": {
		"ITIL 4 Foundation",
		"PMP",
		"SAP Certified Application Associate",
		"AWS Certified Solutions Architect",
		"Microsoft Azure Administrator",
	},
}

type Role struct {
	Title  string `json:"roleTitle"`
	KLevel string `json:"kLevel"`
}

// Departments maps a department to its roles and their K-levels.
var Departments = map[string][]Role{
	"SAP": {
		{Title: "SAP Basis Consultant", KLevel: "K3"},
		{Title: "SAP ABAP Developer", KLevel: "K2"},
		{Title: "SAP Functional Consultant", KLevel: "K3"},
		{Title: "SAP Solution Architect", KLevel: "K5"},
	},
	"ITSM": {
		{Title: "Service Desk Agent", KLevel: "K1"},
		{Title: "Incident Manager", KLevel: "K3"},
		{Title: "Change Manager", KLevel: "K3"},
		{Title: "Service Delivery Manager", KLevel: "K4"},
	},
	"Infrastructure": {
		{Title: "Network Engineer", KLevel: "K2"},
		{Title: "Systems Administrator", KLevel: "K2"},
		{Title: "Cloud Architect", KLevel: "K5"},
	},
	"Software Development": {
		{Title: "Junior Developer", KLevel: "K1"},
		{Title: "Developer", KLevel: "K2"},
		{Title: "Senior Developer", KLevel: "K3"},
		{Title: "Technical Lead", KLevel: "K4"},
	},
	"Project Management": {
		{Title: "Project Administrator", KLevel: "K1"},
		{Title: "Project Manager", KLevel: "K3"},
		{Title: "Programme Manager", KLevel: "K5"},
	},
}

// ValidKLevel reports whether k is one of K1..K5.
func ValidKLevel(k string) bool {
	for _, l := range KLevels {
		if l == k {
			return true
		}
	}
	return false
}

// DepartmentNames returns the department keys sorted.
func DepartmentNames() []string {
	return sortedKeys(Departments)
}

// QualificationTypeNames returns the qualification type keys sorted.
func QualificationTypeNames() []string {
	return sortedKeys(QualificationTypes)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
