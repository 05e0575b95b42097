package httpx

import (
	"encoding/json"
	"net/http"
)

type body struct {
	Data    any    `json:"data"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func errBody(msg string) body {
	return body{Data: nil, Message: msg}
}
