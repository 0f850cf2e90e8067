package httpbridge

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openbuttnakedgang/ellocopo2/dispatch"
	"github.com/openbuttnakedgang/ellocopo2/fastcb"
	"github.com/openbuttnakedgang/ellocopo2/privlvl"
	"github.com/openbuttnakedgang/ellocopo2/wire"
)

// fakeMsg stands in for a codegen-generated Msg: same Value field, its own
// concrete type, to prove Bridge is usable against any such type.
type fakeMsg struct {
	Value wire.Value
}

func fakeDispatch(code wire.RequestCode, path string, value wire.Value, priv privlvl.Level, fast *fastcb.Table) (fakeMsg, wire.AnswerCode) {
	switch path {
	case "/ctrl/stop":
		if code == wire.Read {
			return fakeMsg{Value: wire.BoolValue(true)}, wire.OkRead
		}
		return fakeMsg{}, wire.OkWrite
	default:
		return fakeMsg{}, wire.ErrPath
	}
}

func newTestBridge() *Bridge[fakeMsg] {
	return New(fakeDispatch, func(m fakeMsg) wire.Value { return m.Value }, fastcb.NewTable(), dispatch.NewLocker("lock"), privlvl.Normal)
}

func TestHandleReadOK(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/reg/ctrl/stop")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var out struct {
		Code  string     `json:"code"`
		Value HumanValue `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Code != "OK_READ" || out.Value.Tag != "BOOL" || !out.Value.Bool {
		t.Fatalf("unexpected response: %+v", out)
	}
}

func TestHandleReadUnknownPath(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/reg/no/such/path")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", resp.StatusCode)
	}
}

func TestHandleWriteDecodesBody(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	body, _ := json.Marshal(HumanValue{Tag: "BOOL", Bool: false})
	req, _ := http.NewRequest(http.MethodPut, srv.URL+"/reg/ctrl/stop", bytes.NewReader(body))
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
}

func TestLockBlocksProtectedPath(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	lockBody, _ := json.Marshal(struct {
		Locked bool `json:"locked"`
	}{Locked: true})
	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/lock", bytes.NewReader(lockBody))
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("lock set status = %d, want 200", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/reg/ctrl/stop")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422 while locked", resp.StatusCode)
	}

	var out struct {
		Code string `json:"code"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if out.Code != "ERR_LOCK" {
		t.Fatalf("code = %q, want ERR_LOCK", out.Code)
	}
}

func TestLockGetReportsState(t *testing.T) {
	b := newTestBridge()
	srv := httptest.NewServer(b.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/lock")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out struct {
		Locked bool `json:"locked"`
	}
	json.NewDecoder(resp.Body).Decode(&out)
	if out.Locked {
		t.Fatal("expected unlocked by default")
	}
}
