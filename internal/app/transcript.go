package app

// LineKind styles a transcript line.
type LineKind int

const (
	LineInput LineKind = iota
	LineOutput
	LineError
	LineInfo
)

func (k LineKind) String() string {
	switch k {
	case LineInput:
		return "input"
	case LineOutput:
		return "output"
	case LineError:
		return "error"
	case LineInfo:
		return "info"
	}
	return "unknown"
}

// Line is one entry of the cosmetic PowerShell transcript.
type Line struct {
	Kind LineKind
	Text string
}

// Banner is the first transcript line.
const Banner = "PowerShell 7.4.1\nLoading AI modules..."

const (
	userPath  = `C:\Users\User`
	adminPath = `C:\Windows\System32`
)

// Notice is a transient notification. Seq increases with every notice so
// an expiry timer can tell whether its notice is still showing.
type Notice struct {
	Text string
	Seq  int
}
