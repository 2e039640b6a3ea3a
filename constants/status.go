package constants

// ValidationStatus is the verdict of one document evaluated against one checklist item.
type ValidationStatus string

// Stable values (store these exact strings in DB).
const (
	StatusPass    ValidationStatus = "pass"
	StatusWarning ValidationStatus = "warning"
	StatusFail    ValidationStatus = "fail"

	// StatusNone is reported for an item that has no stored outcome yet. Never persisted.
	StatusNone ValidationStatus = "no_validation"
)

// Valid reports whether s is one of the persisted statuses.
func (s ValidationStatus) Valid() bool {
	switch s {
	case StatusPass, StatusWarning, StatusFail:
		return true
	}
	return false
}

func (s ValidationStatus) String() string { return string(s) }
