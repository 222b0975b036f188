package bodyenc

// unreserved characters pass through percent encoding unchanged
// (RFC 3986 Section 2.3).
var isUnreserved [256]bool

func init() {
	chars := "-_.~" +
		"0123456789" +
		"abcdefghijklmnopqrstuvwxyz" +
		"ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	for _, c := range chars {
		isUnreserved[c] = true
	}
}

const upperhex = "0123456789ABCDEF"

// PercentEncode escapes data for use in form and URL contexts. Unreserved
// bytes (ALPHA, DIGIT, "-", "_", ".", "~") pass through unchanged; a space
// becomes "+" when spaceAsPlus is true and "%20" otherwise; every other byte
// becomes "%XX" with uppercase hex digits.
func PercentEncode(data []byte, spaceAsPlus bool) []byte {
	out := make([]byte, 0, len(data))
	for _, c := range data {
		switch {
		case isUnreserved[c]:
			out = append(out, c)
		case c == ' ' && spaceAsPlus:
			out = append(out, '+')
		default:
			out = append(out, '%', upperhex[c>>4], upperhex[c&0xf])
		}
	}
	return out
}

// PercentDecode reverses PercentEncode. A "+" becomes a space and "%XX"
// becomes the byte with hex value XX. PercentDecode is total on arbitrary
// input: a malformed escape (truncated, or with non-hex digits) emits the
// literal "%" byte and decoding resumes at the next byte, rather than
// returning an error.
func PercentDecode(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		switch c := data[i]; c {
		case '+':
			out = append(out, ' ')
		case '%':
			if i+2 < len(data) {
				hi, ok1 := unhex(data[i+1])
				lo, ok2 := unhex(data[i+2])
				if ok1 && ok2 {
					out = append(out, hi<<4|lo)
					i += 2
					continue
				}
			}
			out = append(out, '%')
		default:
			out = append(out, c)
		}
	}
	return out
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
