package response

// 错误码直接用 HTTP 状态码，成功为 0
const (
	CodeOK              = 0
	CodeBadRequest      = 400
	CodeUnauthorized    = 401
	CodeForbidden       = 403
	CodeNotFound        = 404
	CodeConflict        = 409
	CodeTooManyRequests = 429
	CodeServerError     = 500
	CodeTimeout         = 504
)

// CodeMsgMap 用于集中管理 code - msg
var CodeMsgMap = map[int]string{
	CodeOK:              "OK",
	CodeBadRequest:      "Bad Request",
	CodeUnauthorized:    "Unauthorized",
	CodeForbidden:       "Forbidden",
	CodeNotFound:        "Not Found",
	CodeConflict:        "Conflict",
	CodeTooManyRequests: "Too Many Requests",
	CodeServerError:     "Internal Server Error",
	CodeTimeout:         "Timeout",
}

// CodeKindMap 客户端按 kind 判断错误类型
var CodeKindMap = map[int]string{
	CodeBadRequest:      "BAD_REQUEST",
	CodeUnauthorized:    "UNAUTHORIZED",
	CodeForbidden:       "FORBIDDEN",
	CodeNotFound:        "NOT_FOUND",
	CodeConflict:        "CONFLICT",
	CodeTooManyRequests: "TOO_MANY_REQUESTS",
	CodeServerError:     "INTERNAL_SERVER_ERROR",
	CodeTimeout:         "TIMEOUT",
}

// Status code 对应的 HTTP 状态
func Status(code int) int {
	if code == CodeOK {
		return 200
	}
	if _, ok := CodeMsgMap[code]; ok {
		return code
	}
	return CodeServerError
}
