// internal/providers/license.go
package providers

import "regexp"

// License number formats by issuing state. States not listed fall back to a
// generic alphanumeric pattern.
var licensePatterns = map[string]*regexp.Regexp{
	"TX": regexp.MustCompile(`^[0-9]{6,8}$`),
	"CA": regexp.MustCompile(`^[0-9]{8}$`),
	"FL": regexp.MustCompile(`^[A-Z]{2}[0-9]{7}$`),
	"NY": regexp.MustCompile(`^[0-9]{7,8}$`),
}

var licenseFallbackPattern = regexp.MustCompile(`^[A-Z0-9]{6,10}$`)

// ValidLicenseFormat checks the license number against the issuing state's
// format rule.
func ValidLicenseFormat(licenseNumber, state string) bool {
	pattern, ok := licensePatterns[state]
	if !ok {
		pattern = licenseFallbackPattern
	}
	return pattern.MatchString(licenseNumber)
}
