package main

import (
	"crypto"
	"crypto/hmac"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Credentials carry a scope after the expiry in the user name.
const (
	// scopeRead may only watch the pad.
	scopeRead = "ro"
	// scopeWrite may also poll it and change its mode.
	scopeWrite = "rw"
)

func authSign(authKey string, user string) []byte {
	h := hmac.New(crypto.SHA256.New, []byte(authKey))
	h.Write([]byte(user))
	return h.Sum(nil)
}

// authCalculate returns a user name and password valid until expiry.
func authCalculate(authKey string, scope string, expiry time.Time) (string, string) {
	user := strconv.FormatInt(expiry.Unix(), 10) + "$" + scope
	return user, hex.EncodeToString(authSign(authKey, user))
}

func scopeAllows(scope string, rq *http.Request) bool {
	switch scope {
	case scopeWrite:
		return true
	case scopeRead:
		return rq.Method == "GET" && (rq.URL.Path == "/state" || rq.URL.Path == "/frame")
	}
	return false
}

// authProcess checks basic auth credentials made by authCalculate. A valid
// credential outside its scope gets 403.
func authProcess(handler http.HandlerFunc, authKey string) http.HandlerFunc {
	if len(authKey) == 0 {
		return handler
	}

	failed := func(rw http.ResponseWriter) {
		rw.Header().Set("WWW-Authenticate", "Basic")
		rw.WriteHeader(http.StatusUnauthorized)
	}

	return func(rw http.ResponseWriter, rq *http.Request) {
		user, pwd, ok := rq.BasicAuth()
		if !ok {
			failed(rw)
			return
		}

		pwdDec, err := hex.DecodeString(pwd)
		if err != nil || subtle.ConstantTimeCompare(pwdDec, authSign(authKey, user)) != 1 {
			failed(rw)
			return
		}

		parts := strings.SplitN(user, "$", 2)
		if len(parts) != 2 {
			failed(rw)
			return
		}

		expiry, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || time.Now().Unix() > expiry {
			failed(rw)
			return
		}

		if !scopeAllows(parts[1], rq) {
			http.Error(rw, "Not allowed for "+parts[1]+" credentials", http.StatusForbidden)
			return
		}

		handler(rw, rq)
	}
}
