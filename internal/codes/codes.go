package codes

// Exit statuses returned by hipify-batch
const (
	Success        = 0
	Fatal          = 1
	PartialFailure = 2
)

// ExitCodes maps hipify-batch exit statuses to their descriptions
var ExitCodes = map[int]string{
	Success:        "Success",
	Fatal:          "Fatal startup error",
	PartialFailure: "One or more translations failed",
}

// IsSuccess returns true if the exit code indicates a clean run
func IsSuccess(code int) bool {
	return code == Success
}

// GetErrorMessage returns the description for a given exit code, or a generic message if unknown
func GetErrorMessage(code int) string {
	if msg, ok := ExitCodes[code]; ok {
		return msg
	}

	return "Unknown error"
}

// ForRun picks the exit status for a completed run
func ForRun(failed int, allowFailures bool) int {
	if failed > 0 && !allowFailures {
		return PartialFailure
	}

	return Success
}
