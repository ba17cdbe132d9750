package ocr

import "regexp"

var licensePattern = regexp.MustCompile(`(?i)License No:[ \t]*(\S+)`)

// FindLicense returns the first "License No: <token>" token in text, or "".
// The token must sit on the same line as the label.
func FindLicense(text string) string {
	m := licensePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}
