package util

import "encoding/base64"

// Decode replaces a base64-encoded config value with its plaintext.
// Values that do not decode are left untouched.
func Decode(s *string) {
	if s == nil || *s == "" {
		return
	}

	d, err := base64.StdEncoding.DecodeString(*s)
	if err != nil {
		return
	}
	*s = string(d)
}
