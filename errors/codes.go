package errors

// ErrorCode identifies an application error in API responses
type ErrorCode int

const (
	ErrorCode_HTTP_OK ErrorCode = 200

	// General
	ErrorCode_INTERNAL         ErrorCode = 1000
	ErrorCode_INVALID_ARGUMENT ErrorCode = 1001
	ErrorCode_UNAUTHENTICATED  ErrorCode = 1004
	ErrorCode_INVALID_PAYLOAD  ErrorCode = 1005
	ErrorCode_FORBIDDEN        ErrorCode = 1006

	// Auth
	ErrorCode_AUTH_INVALID_TOKEN     ErrorCode = 2001
	ErrorCode_AUTH_TOKEN_EXPIRED     ErrorCode = 2002
	ErrorCode_AUTH_INVALID_SIGNATURE ErrorCode = 2003

	// Calls
	ErrorCode_CALL_NOT_FOUND     ErrorCode = 3001
	ErrorCode_CALL_START_FAILED  ErrorCode = 3003
	ErrorCode_TEAM_NOT_FOUND     ErrorCode = 3004
	ErrorCode_NO_ACTIVE_SPRINT   ErrorCode = 3005
	ErrorCode_SUMMARY_NOT_FOUND  ErrorCode = 3006
	ErrorCode_STATE_NOT_FOUND    ErrorCode = 3007
	ErrorCode_CAPACITY_EXHAUSTED ErrorCode = 3008

	// Integrations
	ErrorCode_INTEGRATION_LIVEKIT_FAILED ErrorCode = 4001

	// Database
	ErrorCode_DB_QUERY_FAILED ErrorCode = 5001
)

var errorCodeNames = map[ErrorCode]string{
	ErrorCode_HTTP_OK:                    "HTTP_OK",
	ErrorCode_INTERNAL:                   "INTERNAL",
	ErrorCode_INVALID_ARGUMENT:           "INVALID_ARGUMENT",
	ErrorCode_UNAUTHENTICATED:            "UNAUTHENTICATED",
	ErrorCode_INVALID_PAYLOAD:            "INVALID_PAYLOAD",
	ErrorCode_FORBIDDEN:                  "FORBIDDEN",
	ErrorCode_AUTH_INVALID_TOKEN:         "AUTH_INVALID_TOKEN",
	ErrorCode_AUTH_TOKEN_EXPIRED:         "AUTH_TOKEN_EXPIRED",
	ErrorCode_AUTH_INVALID_SIGNATURE:     "AUTH_INVALID_SIGNATURE",
	ErrorCode_CALL_NOT_FOUND:             "CALL_NOT_FOUND",
	ErrorCode_CALL_START_FAILED:          "CALL_START_FAILED",
	ErrorCode_TEAM_NOT_FOUND:             "TEAM_NOT_FOUND",
	ErrorCode_NO_ACTIVE_SPRINT:           "NO_ACTIVE_SPRINT",
	ErrorCode_SUMMARY_NOT_FOUND:          "SUMMARY_NOT_FOUND",
	ErrorCode_STATE_NOT_FOUND:            "STATE_NOT_FOUND",
	ErrorCode_CAPACITY_EXHAUSTED:         "CAPACITY_EXHAUSTED",
	ErrorCode_INTEGRATION_LIVEKIT_FAILED: "INTEGRATION_LIVEKIT_FAILED",
	ErrorCode_DB_QUERY_FAILED:            "DB_QUERY_FAILED",
}

// String returns the symbolic name of the code
func (c ErrorCode) String() string {
	if name, ok := errorCodeNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}
