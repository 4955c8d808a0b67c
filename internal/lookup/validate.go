package lookup

import (
	"regexp"
)

const invalidIPMessage = "Invalid IP format"

// Octets are 0-255 without leading zeros; nothing may surround the address.
var ipv4Pattern = regexp.MustCompile(`^(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)(\.(25[0-5]|2[0-4]\d|1\d\d|[1-9]?\d)){3}$`)

// IsValidIPv4 reports whether ip is a strict dotted-quad IPv4 literal
func IsValidIPv4(ip string) bool {
	return ipv4Pattern.MatchString(ip)
}

func validate(ip string) error {
	if !IsValidIPv4(ip) {
		return &ValidationError{Message: invalidIPMessage}
	}
	return nil
}
