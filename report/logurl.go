package report

import (
	"fmt"
	"strings"
)

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	logURLFormat = "https://%[1]s.console.aws.amazon.com/cloudwatch/home?region=%[1]s#logsV2:log-groups/log-group/%[2]s/log-events/%[3]s"
	upperhex     = "0123456789ABCDEF"
)

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// LogURL returns the CloudWatch console URL for a log stream. The console
// decodes the fragment once before using the group and stream as path
// segments, and expects '$' in place of '%' in those segments.
func LogURL(region, logGroup, logStream string) string {
	return fmt.Sprintf(logURLFormat, region, consoleEscape(logGroup), consoleEscape(logStream))
}

// DoubleEncode percent-encodes s twice, so "/" becomes "%252F"
func DoubleEncode(s string) string {
	return escape(escape(s))
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

func consoleEscape(s string) string {
	return strings.ReplaceAll(DoubleEncode(s), "%", "$")
}

// escape percent-encodes every byte outside the RFC 3986 unreserved set
func escape(s string) string {
	var b strings.Builder
	b.Grow(len(s) * 3)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
		} else {
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&15])
		}
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '_', c == '.', c == '~':
		return true
	default:
		return false
	}
}
