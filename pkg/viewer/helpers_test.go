package viewer_test

import "strconv"

func strconvLen(s string) string {
	return strconv.Itoa(len(s))
}
