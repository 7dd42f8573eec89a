package api

import (
	"encoding/json"
	"net/http"
)

type Response struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type ResponseError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func SuccessJSON(w http.ResponseWriter, data any, message *string) {
	msg := http.StatusText(http.StatusOK)
	if message != nil {
		msg = *message
	}
	WriteJSON(w, http.StatusOK, Response{Code: http.StatusOK, Message: msg, Data: data})
}

func CreatedJSON(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Code: http.StatusCreated, Message: http.StatusText(http.StatusCreated), Data: data})
}

func ErrorJSON(w http.ResponseWriter, code int, err error, message string) {
	body := ResponseError{Code: code, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	WriteJSON(w, code, body)
}

// BadRequest 請求格式錯誤，尚未進入 service
func BadRequest(w http.ResponseWriter, err error) {
	ErrorJSON(w, http.StatusBadRequest, err, http.StatusText(http.StatusBadRequest))
}
