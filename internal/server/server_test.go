package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/chartdir/pkg/command"
	"github.com/matzehuels/chartdir/pkg/errors"
	"github.com/matzehuels/chartdir/pkg/registry"
)

func newTestServer(t *testing.T, scriptDir string) *httptest.Server {
	t.Helper()
	reg := registry.New(registry.NewMemoryStore(), registry.DefaultIdleTimeout)
	in := command.New(command.Options{Registry: reg, OutputDir: t.TempDir()})
	srv := httptest.NewServer(New(Options{Interp: in, ScriptDir: scriptDir}).Handler())
	t.Cleanup(func() {
		srv.Close()
		reg.Close()
	})
	return srv
}

type execReply struct {
	Result struct {
		Type  string          `json:"type"`
		Value json.RawMessage `json:"value"`
	} `json:"result"`
	Error *ErrorBody `json:"error"`
}

func post(t *testing.T, srv *httptest.Server, contentType, body string) (*http.Response, execReply) {
	t.Helper()
	resp, err := http.Post(srv.URL+"/exec", contentType, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var reply execReply
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
			t.Fatalf("decode: %v", err)
		}
	}
	return resp, reply
}

func TestExecArgs(t *testing.T) {
	srv := newTestServer(t, "")

	resp, reply := post(t, srv, "application/json", `{"args":["create","xy","300","200"]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if reply.Result.Type != "int" || string(reply.Result.Value) != "1" {
		t.Errorf("result = %+v", reply.Result)
	}
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("missing request id")
	}

	resp, reply = post(t, srv, "application/json", `{"args":["setsize","1"]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	if reply.Error == nil || reply.Error.Code != errors.ErrCodeUsage {
		t.Errorf("error = %+v", reply.Error)
	}

	resp, reply = post(t, srv, "application/json", `{"args":["destroy","42"]}`)
	if resp.StatusCode != http.StatusNotFound || reply.Error.Message != "Invalid or expired chart object" {
		t.Errorf("status = %d, error = %+v", resp.StatusCode, reply.Error)
	}

	resp, _ = post(t, srv, "application/json", `{`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad json status = %d", resp.StatusCode)
	}
}

func TestExecScriptReturnsImage(t *testing.T) {
	srv := newTestServer(t, "")
	script := "c = create xy 300 200\nlayer $c create line \"1 4 2 8\"\nreturn $c svg\n"

	resp, err := http.Post(srv.URL+"/exec", "text/plain", strings.NewReader(script))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("content type = %q", ct)
	}
	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "<svg") {
		t.Error("body is not SVG")
	}
}

func TestChartEndpoints(t *testing.T) {
	srv := newTestServer(t, "")
	post(t, srv, "text/plain", "create xy 300 200\ncreate pie 200 200\n")

	resp, err := http.Get(srv.URL + "/charts")
	if err != nil {
		t.Fatal(err)
	}
	var list struct {
		Charts []ChartInfo `json:"charts"`
	}
	json.NewDecoder(resp.Body).Decode(&list)
	resp.Body.Close()
	if len(list.Charts) != 2 || list.Charts[0].ID != 2 {
		t.Errorf("charts = %+v", list.Charts)
	}

	resp, err = http.Get(srv.URL + "/charts/1/image.png")
	if err != nil {
		t.Fatal(err)
	}
	var img bytes.Buffer
	img.ReadFrom(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("image status = %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !bytes.HasPrefix(img.Bytes(), []byte("\x89PNG")) {
		t.Error("not a PNG")
	}

	resp, _ = http.Get(srv.URL + "/charts/1/image.tiff")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("tiff status = %d, want 400", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/charts/1", nil)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete status = %d", resp.StatusCode)
	}
	resp, _ = http.DefaultClient.Do(req)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("second delete status = %d", resp.StatusCode)
	}

	resp, err = http.Post(srv.URL+"/gc", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("gc status = %d", resp.StatusCode)
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	script := "c = create pie 200 200\npie $c setdata $data\nreturn $c\n"
	if err := os.WriteFile(filepath.Join(dir, "share.chart"), []byte(script), 0o644); err != nil {
		t.Fatal(err)
	}
	srv := newTestServer(t, dir)

	resp, err := http.Get(srv.URL + "/run/share?data=1+2+3")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != "image/png" {
		t.Errorf("status = %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	tests := []struct {
		path   string
		status int
	}{
		{"/run/missing", http.StatusNotFound},
		{"/run/.hidden", http.StatusBadRequest},
		{"/run/share", http.StatusBadRequest}, // $data unset
	}
	for _, tt := range tests {
		resp, err := http.Get(srv.URL + tt.path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.status {
			t.Errorf("%s: status = %d, want %d", tt.path, resp.StatusCode, tt.status)
		}
	}
}

func TestRunDisabled(t *testing.T) {
	srv := newTestServer(t, "")
	resp, err := http.Get(srv.URL + "/run/anything")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestHealthAndVersion(t *testing.T) {
	srv := newTestServer(t, "")
	for _, path := range []string{"/healthz", "/version"} {
		resp, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Errorf("%s: status = %d", path, resp.StatusCode)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeUsage, http.StatusBadRequest},
		{errors.ErrCodeChartNotFound, http.StatusNotFound},
		{errors.ErrCodeNoLayerSlots, http.StatusConflict},
		{errors.ErrCodeWrongType, http.StatusUnprocessableEntity},
		{errors.ErrCodeRender, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(errors.New(tt.code, "x")); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
