package api

import (
	"crypto/subtle"
	"encoding/json"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"
)

func recoverMiddleware(next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		defer func() {
			if err := recover(); err != nil {
				writeHttpError(w, http.StatusInternalServerError, "internal server error")
				slog.Error("recover middleware", "error", err, "path", r.URL.Path, "trace", string(debug.Stack()))
				return
			}
			slog.Debug("request served", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		}()
		next(w, r)
	}
}

// authMiddleware requires a bearer token. An empty token disables the check.
func authMiddleware(next func(http.ResponseWriter, *http.Request), token string) func(http.ResponseWriter, *http.Request) {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if !checkToken(r, token) {
			writeHttpError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func get(next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return method(http.MethodGet, next)
}

func post(next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return method(http.MethodPost, next)
}

func method(m string, next func(http.ResponseWriter, *http.Request)) func(http.ResponseWriter, *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != m {
			writeHttpError(w, http.StatusMethodNotAllowed, "only "+m+" method is supported")
			return
		}
		next(w, r)
	}
}

func checkToken(req *http.Request, token string) bool {
	scheme, value, ok := strings.Cut(req.Header.Get("authorization"), " ")
	if !ok || scheme != "Bearer" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(value), []byte(token)) == 1
}

func writeHttpError(resp http.ResponseWriter, status int, comment string) {
	body := struct {
		Error string `json:"error"`
	}{
		Error: comment,
	}
	resp.Header().Set("Content-Type", "application/json")
	resp.WriteHeader(status)
	err := json.NewEncoder(resp).Encode(body)
	if err != nil {
		slog.Error("json encode", "error", err)
	}
}
