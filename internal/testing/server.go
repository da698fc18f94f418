package testing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// FakeRemover is an in-process stand-in for the /token and /remove-background endpoints.
//
// Zero values answer 200 with token "test-token" and a body made of [PNGSignature].
type FakeRemover struct {
	TokenStatus int
	Token       string
	// RemoveStatuses are used in order, the last one repeating. Empty means 200.
	RemoveStatuses []int
	// RequireToken answers 401 when the Authorization header does not carry Token.
	RequireToken bool
	Result       []byte
	// Delay holds each /remove-background response after the body has been read.
	Delay time.Duration

	mu           sync.Mutex
	tokenCalls   int
	removeCalls  int
	lastAuth     string
	lastUser     string
	lastPassword string
	lastFileName string
	lastFile     []byte
}

// Start serves the fake on an httptest server closed at the end of the test.
func (f *FakeRemover) Start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /token", f.handleToken)
	mux.HandleFunc("POST /remove-background", f.handleRemove)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *FakeRemover) token() string {
	if f.Token == "" {
		return "test-token"
	}
	return f.Token
}

func (f *FakeRemover) handleToken(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.tokenCalls++
	status := f.TokenStatus
	f.mu.Unlock()

	if err := r.ParseMultipartForm(1 << 20); err == nil {
		f.mu.Lock()
		f.lastUser = r.FormValue("username")
		f.lastPassword = r.FormValue("password")
		f.mu.Unlock()
	}

	if status != 0 && status != http.StatusOK {
		http.Error(w, "Incorrect username or password", status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"access_token": f.token(), "token_type": "bearer"})
}

func (f *FakeRemover) handleRemove(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	idx := f.removeCalls
	f.removeCalls++
	f.lastAuth = r.Header.Get("Authorization")
	status := http.StatusOK
	if n := len(f.RemoveStatuses); n > 0 {
		status = f.RemoveStatuses[min(idx, n-1)]
	}
	if f.RequireToken && f.lastAuth != "Bearer "+f.token() {
		status = http.StatusUnauthorized
	}
	f.mu.Unlock()

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "missing image field", http.StatusUnprocessableEntity)
		return
	}
	defer file.Close()
	data, _ := io.ReadAll(file)

	f.mu.Lock()
	f.lastFileName = header.Filename
	f.lastFile = data
	f.mu.Unlock()

	if f.Delay > 0 {
		select {
		case <-time.After(f.Delay):
		case <-r.Context().Done():
			return
		}
	}

	if status != http.StatusOK {
		http.Error(w, http.StatusText(status), status)
		return
	}

	body := f.Result
	if body == nil {
		body = PNGSignature
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(body)
}

// TokenCalls returns how many requests reached /token.
func (f *FakeRemover) TokenCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tokenCalls
}

// RemoveCalls returns how many requests reached /remove-background.
func (f *FakeRemover) RemoveCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.removeCalls
}

// LastAuthorization returns the Authorization header of the latest upload.
func (f *FakeRemover) LastAuthorization() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastAuth
}

// LastCredentials returns the username and password of the latest token request.
func (f *FakeRemover) LastCredentials() (string, string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastUser, f.lastPassword
}

// LastUpload returns the file name and bytes of the latest upload.
func (f *FakeRemover) LastUpload() (string, []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastFileName, f.lastFile
}
