package api

import (
	"github.com/gofiber/fiber/v2"
)

// 请求级错误码（闭集）
const (
	ErrCodeMissingBody   = "C01"
	ErrCodeInvalidBody   = "C02"
	ErrCodeMissingParams = "C03"
	ErrCodeInvalidParams = "C04"
	ErrCodeQueryNotFound = "C05"
)

type errorCodeInfo struct {
	Title      string
	Message    string
	StatusCode int
}

var errorCodes = map[string]errorCodeInfo{
	ErrCodeMissingBody:   {"Missing body", "A JSON body is required for this request.", fiber.StatusBadRequest},
	ErrCodeInvalidBody:   {"Invalid body", "The provided JSON body failed validation.", fiber.StatusBadRequest},
	ErrCodeMissingParams: {"Missing parameters", "Query parameters are required for this request.", fiber.StatusBadRequest},
	ErrCodeInvalidParams: {"Invalid parameters", "The provided query parameters failed validation.", fiber.StatusBadRequest},
	ErrCodeQueryNotFound: {"Query not found", "No saved query exists with the provided id.", fiber.StatusNotFound},
}

// Response 统一响应结构
type Response struct {
	Data         map[string]interface{} `json:"data"`
	StatusCode   int                    `json:"status_code"`
	Message      string                 `json:"message,omitempty"`
	Error        map[string]interface{} `json:"error,omitempty"`
	ErrorCode    string                 `json:"error_code,omitempty"`
	ErrorMessage string                 `json:"error_message,omitempty"`
}

// respond 发送成功响应，results 放进 data.results
func respond(c *fiber.Ctx, data map[string]interface{}) error {
	return c.Status(fiber.StatusOK).JSON(Response{
		Data:       data,
		StatusCode: fiber.StatusOK,
	})
}

// respondError 按错误码发送一致的错误响应
func respondError(c *fiber.Ctx, code string, detail map[string]interface{}) error {
	info := errorCodes[code]
	return c.Status(info.StatusCode).JSON(Response{
		StatusCode:   info.StatusCode,
		Message:      info.Title,
		Error:        detail,
		ErrorCode:    code,
		ErrorMessage: info.Message,
	})
}
