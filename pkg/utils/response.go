package utils

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// ErrorBody 是接口错误响应的统一格式。
type ErrorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// RespondJSON 发送JSON响应
func RespondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[http] failed to encode response: %v", err)
	}
}

// RespondError 发送错误响应，附带 chi 分配的请求 ID 便于对照日志。
func RespondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	reqID := middleware.GetReqID(r.Context())
	if status >= http.StatusInternalServerError {
		log.Printf("[http] %s %s -> %d: %s (request_id=%s)", r.Method, r.URL.Path, status, message, reqID)
	}
	RespondJSON(w, status, ErrorBody{Error: message, RequestID: reqID})
}
