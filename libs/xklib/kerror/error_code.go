package kerror

type ErrorCode string

const (
	EC_OK                ErrorCode = "OK"
	EC_UNKNOWN           ErrorCode = "UNKNOWN"
	EC_INVALID_PARAMETER ErrorCode = "INVALID_PARAMETER"
	EC_INTERNAL_ERROR    ErrorCode = "INTERNAL_ERROR"
	EC_TIMEOUT           ErrorCode = "TIMEOUT"
	EC_CANCELLED         ErrorCode = "CANCELLED"
)

func (code ErrorCode) String() string {
	return string(code)
}
