package sanitize

// DefaultExcludeFields are redacted wherever they appear in logs and printed output. ADF linked
// services carry credentials under these names.
var DefaultExcludeFields = []string{
	"password",
	"pwd",
	"connectionString",
	"accountKey",
	"sasUri",
	"sasToken",
	"servicePrincipalKey",
	"clientSecret",
	"token",
	"fabric-token",
	"secret",
}

var Instance = NewSanitizer(SanitizerOptions{ExcludeFields: DefaultExcludeFields})

var NullSanitizer = NewSanitizer(SanitizerOptions{})

func SanitizeLogEntries(keysAndValues []any) []any {
	if len(keysAndValues)%2 != 0 {
		// empty the whole thing if the keys and values are not in pairs
		return nil
	}

	sanitizeKeyAndValues := make([]any, len(keysAndValues))
	for i := 0; i < len(keysAndValues); i += 2 {
		sanitizeKeyAndValues[i] = keysAndValues[i]

		if k, ok := keysAndValues[i].(string); ok {
			sanitizeKeyAndValues[i+1] = Instance.SanitizeKeyValue(k, keysAndValues[i+1])
		} else {
			sanitizeKeyAndValues[i+1] = Instance.Sanitize(keysAndValues[i+1])
		}
	}

	return sanitizeKeyAndValues
}
