// Package httpbridge exposes a generated register dispatch table over
// HTTP: register reads and writes become GET/PUT requests, the locker
// gets its own lock routes, and values cross the boundary as small
// self-describing JSON.
package httpbridge

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"
	"golang.org/x/time/rate"

	"github.com/openbuttnakedgang/ellocopo2/dispatch"
	"github.com/openbuttnakedgang/ellocopo2/fastcb"
	"github.com/openbuttnakedgang/ellocopo2/privlvl"
	"github.com/openbuttnakedgang/ellocopo2/wire"
)

// DispatchFunc is the signature every codegen-generated package's Dispatch
// function has. M is that package's Msg type.
type DispatchFunc[M any] func(code wire.RequestCode, path string, value wire.Value, priv privlvl.Level, fast *fastcb.Table) (M, wire.AnswerCode)

// Bridge wires a generated registry's Dispatch function onto an HTTP
// router: GET reads a register, PUT writes one, and /lock exposes the
// locker guarding the register routes.
type Bridge[M any] struct {
	dispatch DispatchFunc[M]
	valueOf  func(M) wire.Value
	fast     *fastcb.Table
	locker   *dispatch.Locker
	priv     privlvl.Level
	limiter  *rate.Limiter
}

// New builds a Bridge. valueOf extracts the wire.Value carried by a
// generated package's Msg (every generated Msg has a Value field of this
// type, but Go generics can't reach into it without the package naming its
// own concrete type, so the caller supplies the accessor -- the same shape
// dispatch.Guarded uses to stay generic over M). priv is the privilege
// level granted to HTTP callers; a deployment that wants per-caller
// privilege should sit an auth layer in front of this bridge and is out of
// scope here.
func New[M any](dispatchFn DispatchFunc[M], valueOf func(M) wire.Value, fast *fastcb.Table, locker *dispatch.Locker, priv privlvl.Level) *Bridge[M] {
	return &Bridge[M]{
		dispatch: dispatchFn,
		valueOf:  valueOf,
		fast:     fast,
		locker:   locker,
		priv:     priv,
		// a burst of 15 requests, refilling at 15/s.
		limiter: rate.NewLimiter(15, 15),
	}
}

// Router returns a chi.Router exposing GET/PUT /reg/*path for register
// access and GET/POST /lock for the locker.
func (b *Bridge[M]) Router() chi.Router {
	r := chi.NewRouter()
	r.Get("/reg/*", b.handleRead)
	r.Put("/reg/*", b.handleWrite)
	r.Get("/lock", b.handleLockGet)
	r.Post("/lock", b.handleLockSet)
	return r
}

func (b *Bridge[M]) regPath(r *http.Request) string {
	return "/" + chi.URLParam(r, "*")
}

func (b *Bridge[M]) handleRead(w http.ResponseWriter, r *http.Request) {
	if err := b.limiter.Wait(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	path := b.regPath(r)
	msg, code := dispatch.Guarded(b.locker, path, func() (M, wire.AnswerCode) {
		return b.dispatch(wire.Read, path, wire.Unit(), b.priv, b.fast)
	})
	b.respond(w, code, b.valueOf(msg))
}

func (b *Bridge[M]) handleWrite(w http.ResponseWriter, r *http.Request) {
	if err := b.limiter.Wait(r.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	var in HumanValue
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	value, err := in.toWireValue()
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	path := b.regPath(r)
	msg, code := dispatch.Guarded(b.locker, path, func() (M, wire.AnswerCode) {
		return b.dispatch(wire.Write, path, value, b.priv, b.fast)
	})
	b.respond(w, code, b.valueOf(msg))
}

func (b *Bridge[M]) respond(w http.ResponseWriter, code wire.AnswerCode, v wire.Value) {
	w.Header().Set("Content-Type", "application/json")
	if code.IsError() {
		w.WriteHeader(http.StatusUnprocessableEntity)
	} else {
		w.WriteHeader(http.StatusOK)
	}
	resp := struct {
		Code  string     `json:"code"`
		Value HumanValue `json:"value"`
	}{Code: code.String(), Value: fromWireValue(v)}
	json.NewEncoder(w).Encode(resp)
}

// handleLockGet returns Locked() as JSON.
func (b *Bridge[M]) handleLockGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Locked bool `json:"locked"`
	}{Locked: b.locker.Locked()})
}

// handleLockSet locks or unlocks based on a JSON {"locked": bool} body.
func (b *Bridge[M]) handleLockSet(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Locked bool `json:"locked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if in.Locked {
		b.locker.Lock()
	} else {
		b.locker.Unlock()
	}
	w.WriteHeader(http.StatusOK)
}
