package request

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *recordingNotifier) all() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

type fakeConfirmer struct {
	answer  bool
	release chan struct{}
	calls   atomic.Int32
	prompt  atomic.Value
}

func (f *fakeConfirmer) Confirm(ctx context.Context, p Prompt) bool {
	f.calls.Add(1)
	f.prompt.Store(p)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return false
		}
	}
	return f.answer
}

type fakeSession struct {
	mu     sync.Mutex
	token  string
	resets int
}

func (s *fakeSession) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *fakeSession) ResetToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.resets++
	return nil
}

type fakeReloader struct {
	calls atomic.Int32
}

func (r *fakeReloader) Reload() {
	r.calls.Add(1)
}

type harness struct {
	client   *Client
	notifier *recordingNotifier
	confirm  *fakeConfirmer
	session  *fakeSession
	reloader *fakeReloader
}

func newHarness(t *testing.T, handler http.HandlerFunc, answer bool) harness {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	h := harness{
		notifier: &recordingNotifier{},
		confirm:  &fakeConfirmer{answer: answer},
		session:  &fakeSession{token: "tok-123"},
		reloader: &fakeReloader{},
	}
	h.client = New(Config{BaseURL: server.URL}, Deps{
		Session:   h.session,
		Notifier:  h.notifier,
		Confirmer: h.confirm,
		Reloader:  h.reloader,
	})
	return h
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestDo_SuccessReturnsWholeEnvelope(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Trace", "abc")
		writeJSON(w, http.StatusCreated, `{"code":20000,"message":"ok","data":{"count":5},"total":3}`)
	}, false)

	reply, err := h.client.Do(context.Background(), http.MethodGet, "/usr/getOnlineUsrCnt", nil)
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	if reply.Status != http.StatusOK || reply.StatusText != "OK" {
		t.Fatalf("status = %d %q, want 200 OK", reply.Status, reply.StatusText)
	}
	if reply.Header.Get("X-Trace") != "abc" {
		t.Fatalf("header X-Trace = %q, want abc", reply.Header.Get("X-Trace"))
	}
	if reply.Body.Code != CodeSuccess || reply.Body.Message != "ok" {
		t.Fatalf("envelope = %#v, want code 20000 message ok", reply.Body)
	}
	if string(reply.Body.Data) != `{"count":5}` {
		t.Fatalf("envelope data = %s, want {\"count\":5}", reply.Body.Data)
	}
	if string(reply.Body.Extra["total"]) != "3" {
		t.Fatalf("envelope extra = %v, want total=3", reply.Body.Extra)
	}
	if reply.Config.Timeout != DefaultTimeout {
		t.Fatalf("reply config timeout = %v, want %v", reply.Config.Timeout, DefaultTimeout)
	}
	if got := h.notifier.all(); len(got) != 0 {
		t.Fatalf("notifications = %v, want none", got)
	}
}

func TestGet_DecodesData(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/usr/getOnlineUsrCnt" {
			http.NotFound(w, r)
			return
		}
		writeJSON(w, http.StatusOK, `{"code":20000,"data":{"count":5}}`)
	}, false)

	resp, err := Get[struct {
		Count int `json:"count"`
	}](context.Background(), h.client, "/usr/getOnlineUsrCnt")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if resp.Code != CodeSuccess || resp.Data.Count != 5 {
		t.Fatalf("response = %#v, want code 20000 count 5", resp)
	}
}

func TestGet_ApplicationFailureRejectsWithMessage(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":40004,"message":"not found"}`)
	}, true)

	_, err := Get[any](context.Background(), h.client, "/usr/getWarningCnt")
	h.client.Wait()

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Code != 40004 || err.Error() != "not found" {
		t.Fatalf("error = %d %q, want 40004 not found", apiErr.Code, err.Error())
	}
	if IsSessionExpired(err) {
		t.Fatalf("IsSessionExpired = true for code 40004")
	}
	if got := h.notifier.all(); len(got) != 1 || got[0] != "not found" {
		t.Fatalf("notifications = %v, want [not found]", got)
	}
	if n := h.confirm.calls.Load(); n != 0 {
		t.Fatalf("confirm calls = %d, want 0", n)
	}
}

func TestGet_SessionExpiredConfirmResetsAndReloads(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":50008}`)
	}, true)

	_, err := Get[any](context.Background(), h.client, "/br/getWaveform/uid/1")
	if err == nil || err.Error() != errRequestFallback {
		t.Fatalf("error = %v, want %q", err, errRequestFallback)
	}
	if !IsSessionExpired(err) {
		t.Fatalf("IsSessionExpired = false, want true")
	}
	if got := h.notifier.all(); len(got) != 1 || got[0] != NoticeRequestFailed {
		t.Fatalf("notifications = %v, want [%s]", got, NoticeRequestFailed)
	}

	h.client.Wait()
	if n := h.confirm.calls.Load(); n != 1 {
		t.Fatalf("confirm calls = %d, want 1", n)
	}
	if p, _ := h.confirm.prompt.Load().(Prompt); p.ConfirmLabel != ReauthPrompt.ConfirmLabel {
		t.Fatalf("prompt = %#v, want re-login prompt", p)
	}
	if h.session.Token() != "" || h.session.resets != 1 {
		t.Fatalf("session token=%q resets=%d, want cleared once", h.session.Token(), h.session.resets)
	}
	if n := h.reloader.calls.Load(); n != 1 {
		t.Fatalf("reload calls = %d, want 1", n)
	}
}

func TestGet_SessionExpiredCancelLeavesSession(t *testing.T) {
	for _, code := range []int{CodeIllegalToken, CodeOtherClient, CodeTokenExpired} {
		h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, `{"code":`+itoa(code)+`,"message":"logged out"}`)
		}, false)

		_, err := Get[any](context.Background(), h.client, "/hr/getStress/uid/1")
		h.client.Wait()

		if err == nil || err.Error() != "logged out" {
			t.Fatalf("code %d: error = %v, want logged out", code, err)
		}
		if n := h.confirm.calls.Load(); n != 1 {
			t.Fatalf("code %d: confirm calls = %d, want 1", code, n)
		}
		if h.session.Token() != "tok-123" || h.session.resets != 0 {
			t.Fatalf("code %d: session changed on cancel", code)
		}
		if n := h.reloader.calls.Load(); n != 0 {
			t.Fatalf("code %d: reload calls = %d, want 0", code, n)
		}
	}
}

func TestGet_RejectsBeforeDialogIsAnswered(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":50014,"message":"expired"}`)
	}, true)
	h.confirm.release = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := Get[any](context.Background(), h.client, "/hr/getOneWave/uid/1")
		done <- err
	}()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("Get returned nil error, want rejection")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Get blocked on the re-login dialog")
	}
	if n := h.reloader.calls.Load(); n != 0 {
		t.Fatalf("reload ran before dialog was answered")
	}

	close(h.confirm.release)
	h.client.Wait()
	if n := h.reloader.calls.Load(); n != 1 {
		t.Fatalf("reload calls = %d, want 1", n)
	}
}

func TestGet_ConcurrentExpiriesPromptOncePerCall(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":50012}`)
	}, false)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = Get[any](context.Background(), h.client, "/usr/getWarningCnt")
		}()
	}
	wg.Wait()
	h.client.Wait()

	if n := h.confirm.calls.Load(); n != 3 {
		t.Fatalf("confirm calls = %d, want 3", n)
	}
	if got := h.notifier.all(); len(got) != 3 {
		t.Fatalf("notifications = %v, want 3", got)
	}
}

func TestGet_TimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
		writeJSON(w, http.StatusOK, `{"code":20000}`)
	}, false)
	t.Cleanup(func() { close(release) })

	_, err := Get[any](context.Background(), h.client, "/usr/getOnlineUsrCnt", WithTimeout(50*time.Millisecond))
	if err == nil {
		t.Fatalf("Get returned nil error, want timeout")
	}
	var netErr net.Error
	if !errors.Is(err, context.DeadlineExceeded) && !(errors.As(err, &netErr) && netErr.Timeout()) {
		t.Fatalf("error = %v, want timeout", err)
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		t.Fatalf("timeout surfaced as APIError")
	}
	if got := h.notifier.all(); len(got) != 1 || got[0] != NoticeRequestFailed {
		t.Fatalf("notifications = %v, want [%s]", got, NoticeRequestFailed)
	}
}

func TestGet_StatusWithoutEnvelope(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}, false)

	_, err := Get[any](context.Background(), h.client, "/usr/getWarningCnt")
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Fatalf("error = %v, want StatusError 502", err)
	}
	if got := h.notifier.all(); len(got) != 1 || got[0] != NoticeRequestFailed {
		t.Fatalf("notifications = %v, want one generic notice", got)
	}
}

func TestGet_StatusWithEnvelopeUsesEnvelope(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, `{"code":40001,"message":"bad uid"}`)
	}, false)

	_, err := Get[any](context.Background(), h.client, "/br/getRing/uid/x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 40001 {
		t.Fatalf("error = %v, want APIError 40001", err)
	}
	if got := h.notifier.all(); len(got) != 1 || got[0] != "bad uid" {
		t.Fatalf("notifications = %v, want [bad uid]", got)
	}
}

func TestGet_SuccessCodeWithErrorStatus(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "not found", status: http.StatusNotFound},
		{name: "unavailable", status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, `{"code":20000,"data":{"count":5}}`)
			}, false)

			reply, err := h.client.Do(context.Background(), http.MethodGet, "/usr/getOnlineUsrCnt", nil)
			if reply != nil {
				t.Fatalf("reply = %#v, want nil", reply)
			}
			var statusErr *StatusError
			if !errors.As(err, &statusErr) || statusErr.StatusCode != tt.status {
				t.Fatalf("error = %v, want StatusError %d", err, tt.status)
			}
			if got := h.notifier.all(); len(got) != 1 || got[0] != NoticeRequestFailed {
				t.Fatalf("notifications = %v, want one generic notice", got)
			}
		})
	}
}

func TestGet_StringCodeKeepsBackendMessage(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":"40004","message":"not found"}`)
	}, false)

	_, err := Get[any](context.Background(), h.client, "/br/getRing/uid/x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 40004 || apiErr.Message != "not found" {
		t.Fatalf("error = %v, want APIError 40004 not found", err)
	}
	if got := h.notifier.all(); len(got) != 1 || got[0] != "not found" {
		t.Fatalf("notifications = %v, want [not found]", got)
	}
}

func TestDo_ReplyBodyMarshalsAsReceived(t *testing.T) {
	const body = `{"code":20000,"message":"","data":null,"total":3}`
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, body)
	}, false)

	reply, err := h.client.Do(context.Background(), http.MethodGet, "/usr/getOnlineUsrCnt", nil)
	if err != nil {
		t.Fatalf("Do returned error: %v", err)
	}
	out, err := json.Marshal(reply.Body)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(out) != body {
		t.Fatalf("marshalled body = %s, want %s", out, body)
	}
}

func TestGet_UndecodableBodyIsTransportFailure(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{not-json`)
	}, false)

	_, err := Get[any](context.Background(), h.client, "/usr/getWarningCnt")
	if err == nil || !strings.Contains(err.Error(), "decode response") {
		t.Fatalf("error = %v, want decode response error", err)
	}
	if got := h.notifier.all(); len(got) != 1 {
		t.Fatalf("notifications = %v, want one", got)
	}
}

func TestGet_DataTypeMismatch(t *testing.T) {
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"code":20000,"data":"five"}`)
	}, false)

	_, err := Get[struct{ Count int }](context.Background(), h.client, "/usr/getOnlineUsrCnt")
	var decodeErr *DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("error = %v, want DecodeError", err)
	}
	if got := h.notifier.all(); len(got) != 1 {
		t.Fatalf("notifications = %v, want one", got)
	}
}

func TestGet_RepeatedCallsAreNotCoalesced(t *testing.T) {
	var hits atomic.Int32
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `{"code":20000,"data":{"count":1}}`)
	}, false)

	for i := 0; i < 2; i++ {
		if _, err := Get[any](context.Background(), h.client, "/usr/getOnlineUsrCnt"); err != nil {
			t.Fatalf("Get returned error: %v", err)
		}
	}
	if n := hits.Load(); n != 2 {
		t.Fatalf("server hits = %d, want 2", n)
	}
}

func TestPost_SendsJSONAndCallOptionsDoNotLeak(t *testing.T) {
	var gotBody map[string]string
	var gotHeaders []string
	var gotQuery []string
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = append(gotHeaders, r.Header.Get("X-Debug"))
		gotQuery = append(gotQuery, r.URL.RawQuery)
		if r.Method == http.MethodPost {
			if ct := r.Header.Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
		}
		writeJSON(w, http.StatusOK, `{"code":20000,"data":{}}`)
	}, false)

	body := map[string]string{"uid": "7", "start_time": "a", "end_time": "b"}
	if _, err := Post[any](context.Background(), h.client, "/history/br/getBrData", body,
		WithHeader("X-Debug", "1"), WithQuery("page", "2")); err != nil {
		t.Fatalf("Post returned error: %v", err)
	}
	if _, err := Delete[any](context.Background(), h.client, "/history/br/getBrData"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	if gotBody["uid"] != "7" || gotBody["end_time"] != "b" {
		t.Fatalf("body = %v, want uid 7", gotBody)
	}
	if len(gotHeaders) != 2 || gotHeaders[0] != "1" || gotHeaders[1] != "" {
		t.Fatalf("X-Debug per call = %v, want [1 \"\"]", gotHeaders)
	}
	if gotQuery[0] != "page=2" || gotQuery[1] != "" {
		t.Fatalf("query per call = %v, want [page=2 \"\"]", gotQuery)
	}
	if h.client.Config().Header != nil {
		t.Fatalf("client config header mutated: %v", h.client.Config().Header)
	}
}

func TestPutPatch_UseMethods(t *testing.T) {
	var methods []string
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		methods = append(methods, r.Method)
		writeJSON(w, http.StatusOK, `{"code":20000}`)
	}, false)

	if _, err := Put[any](context.Background(), h.client, "/x", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if _, err := Patch[any](context.Background(), h.client, "/x", map[string]int{"a": 2}); err != nil {
		t.Fatalf("Patch returned error: %v", err)
	}
	if len(methods) != 2 || methods[0] != http.MethodPut || methods[1] != http.MethodPatch {
		t.Fatalf("methods = %v, want [PUT PATCH]", methods)
	}
}

func TestUpload_SendsMultipartWithCallerHeaders(t *testing.T) {
	var gotField, gotFile, gotExtra, gotType string
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		gotType = r.Header.Get("Content-Type")
		gotExtra = r.Header.Get("X-Extra")
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		} else {
			gotField = r.FormValue("uid")
			f, _, err := r.FormFile("report")
			if err == nil {
				data, _ := io.ReadAll(f)
				gotFile = string(data)
				_ = f.Close()
			}
		}
		writeJSON(w, http.StatusOK, `{"code":20000,"data":{"id":9}}`)
	}, false)

	form := NewForm().Field("uid", "3").File("report", "r.csv", strings.NewReader("a,b"))
	resp, err := Upload[struct {
		ID int `json:"id"`
	}](context.Background(), h.client, "/upload", form, WithHeader("X-Extra", "yes"))
	if err != nil {
		t.Fatalf("Upload returned error: %v", err)
	}
	if resp.Data.ID != 9 {
		t.Fatalf("Upload data = %#v, want id 9", resp.Data)
	}
	if !strings.HasPrefix(gotType, "multipart/form-data") {
		t.Fatalf("Content-Type = %q, want multipart/form-data", gotType)
	}
	if gotExtra != "yes" || gotField != "3" || gotFile != "a,b" {
		t.Fatalf("upload parts = extra %q field %q file %q", gotExtra, gotField, gotFile)
	}
}

func TestNew_EmptyTokenIsUnauthenticated(t *testing.T) {
	c := New(Config{BaseURL: "127.0.0.1:1"}, Deps{Session: &fakeSession{}})
	if c.Authenticated() {
		t.Fatalf("Authenticated = true with empty token")
	}
	if c.Config().Timeout != DefaultTimeout {
		t.Fatalf("Timeout = %v, want %v", c.Config().Timeout, DefaultTimeout)
	}
}

func TestNew_BaseURLFromEnvironment(t *testing.T) {
	t.Setenv(EnvBaseAPI, "http://10.0.0.9:5000/api")
	c := New(Config{}, Deps{})
	if got := c.Config().BaseURL; got != "http://10.0.0.9:5000/api" {
		t.Fatalf("BaseURL = %q, want env value", got)
	}
	c = New(Config{BaseURL: "http://other"}, Deps{})
	if got := c.Config().BaseURL; got != "http://other" {
		t.Fatalf("BaseURL = %q, want explicit value", got)
	}
}

func TestDo_MissingBaseURLIsRequestError(t *testing.T) {
	t.Setenv(EnvBaseAPI, "")
	notifier := &recordingNotifier{}
	c := New(Config{}, Deps{Notifier: notifier})

	_, err := c.Do(context.Background(), http.MethodGet, "/usr/getOnlineUsrCnt", nil)
	if err == nil || !strings.Contains(err.Error(), "no base url") {
		t.Fatalf("error = %v, want no base url", err)
	}
	if got := notifier.all(); len(got) != 1 || got[0] != NoticeRequestFailed {
		t.Fatalf("notifications = %v, want one generic notice", got)
	}
}

func TestPost_UnencodableBodyNotifiesOnce(t *testing.T) {
	var hits atomic.Int32
	h := newHarness(t, func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, `{"code":20000}`)
	}, false)

	_, err := Post[any](context.Background(), h.client, "/history/br/getBrData", math.NaN())
	if err == nil || !strings.Contains(err.Error(), "encode body") {
		t.Fatalf("error = %v, want encode body error", err)
	}
	if got := h.notifier.all(); len(got) != 1 || got[0] != NoticeRequestFailed {
		t.Fatalf("notifications = %v, want one generic notice", got)
	}
	if hits.Load() != 0 {
		t.Fatalf("server hits = %d, want none", hits.Load())
	}
}

func TestResolveURL_KeepsBasePrefix(t *testing.T) {
	got, err := resolveURL("10.0.0.2:5000/api/", "/usr/getOnlineUsrCnt", nil)
	if err != nil {
		t.Fatalf("resolveURL returned error: %v", err)
	}
	if got != "http://10.0.0.2:5000/api/usr/getOnlineUsrCnt" {
		t.Fatalf("resolveURL = %q", got)
	}
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}
