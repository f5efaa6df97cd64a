package lightmap

// Status is the baker state. A baker starts in StatusNone and returns to a
// terminal state after every bake.
type Status int32

const (
	StatusNone Status = iota
	StatusBaking
	StatusFinished
	StatusCancelled
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusNone:
		return "none"
	case StatusBaking:
		return "baking"
	case StatusFinished:
		return "finished"
	case StatusCancelled:
		return "cancelled"
	case StatusFailed:
		return "failed"
	}
	return "unknown"
}
