package model

// BatchState is the state of a client-side conversion batch
type BatchState int

const (
	BatchIdle BatchState = iota
	BatchConverting
	BatchDone
)

func (x BatchState) String() string {
	switch x {
	case BatchIdle:
		return "idle"
	case BatchConverting:
		return "converting"
	case BatchDone:
		return "done"
	default:
		return "unknown"
	}
}

// Progress is reported once per resolved file
type Progress struct {
	Name    string  // Name of the file that just resolved
	Done    int     // Number of resolved files, successes and failures
	Total   int     // Number of selected files
	Percent float64 // Done / Total * 100
	Err     error   // Set when the file failed
}

// FileError records a file that could not be converted
type FileError struct {
	Name string
	Err  error
}

// BatchResult is the outcome of a finished batch
type BatchResult struct {
	ID     string
	Images []ConvertedImage // Successful conversions in input order
	Failed []FileError
	Total  int
}
