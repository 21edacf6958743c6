package roles

// Role is one of the six fixed access classes governing claim-system
// permissions.
type Role string

const (
	Admin        Role = "admin"
	Analyst      Role = "analyst"
	Provider     Role = "provider"
	Patient      Role = "patient"
	Investigator Role = "investigator"
	Regulator    Role = "regulator"
)

// Descriptions is the authoritative role catalog. Every component that
// renders or validates roles consumes this map rather than its own copy.
var Descriptions = map[Role]string{
	Admin:        "Full system administration",
	Analyst:      "Claims analysis and reporting",
	Provider:     "Healthcare provider portal access",
	Patient:      "Patient claim submission and tracking",
	Investigator: "Fraud investigation casework",
	Regulator:    "Regulatory oversight, read-mostly",
}

// All returns the roles in catalog order.
func All() []Role {
	return []Role{Admin, Analyst, Provider, Patient, Investigator, Regulator}
}

// Valid reports whether s names one of the six roles.
func Valid(s string) bool {
	_, ok := Descriptions[Role(s)]
	return ok
}

// Describe returns the human-readable description for r, or an empty
// string for an unknown role.
func Describe(r Role) string {
	return Descriptions[r]
}
