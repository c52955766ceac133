package httpchars

var (
	CRLF = []byte("\r\n")
)

const COLONSP = ": "
