package config

// SecretStringValue replaces secret values in any printed output.
const SecretStringValue = "<secret>"

// SecretString holds values which must never be printed or logged as is,
// e.g. passwords embedded into workbook connections.
type SecretString string

// MarshalJSON hides actual value, empty value becomes null.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

// MarshalYAML hides actual value, empty value is omitted.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

// String hides value from fmt and zap.Stringer.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}
