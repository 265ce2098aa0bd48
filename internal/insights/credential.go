package insights

import "strings"

// CredentialState classifies the configured model API key.
type CredentialState int

const (
	CredentialAbsent CredentialState = iota
	CredentialPlaceholder
	CredentialValid
)

// Known placeholder values shipped in sample environment files.
const (
	PlaceholderKey     = "your-openrouter-api-key"
	InvalidPlaceholder = "INVALID_KEY_NEEDS_REPLACEMENT"
)

// StateOf classifies key. Only CredentialValid allows network calls.
func StateOf(key string) CredentialState {
	switch strings.TrimSpace(key) {
	case "":
		return CredentialAbsent
	case PlaceholderKey, InvalidPlaceholder:
		return CredentialPlaceholder
	default:
		return CredentialValid
	}
}

func (s CredentialState) String() string {
	switch s {
	case CredentialAbsent:
		return "absent"
	case CredentialPlaceholder:
		return "placeholder"
	case CredentialValid:
		return "valid"
	default:
		return "unknown"
	}
}
