// Package sanitizer cleans user-supplied HTML with bluemonday policies.
//
// SanitizeHTML is used for composed email bodies and keeps basic formatting and
// links. StripHTML removes all markup and is used for values such as recipient
// names that are interpolated into a message.
package sanitizer
