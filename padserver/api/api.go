package api

import (
	"encoding/json"
	"io/ioutil"
	"net/http"

	"github.com/BertoldVdb/DualshockResearch/dualshock"
	"github.com/BertoldVdb/DualshockResearch/padnet"
)

// Pad is the part of a pad the API needs.
type Pad interface {
	Poll() error
	SetMode(analog bool, locked bool) error
	Status() dualshock.Status
}

type API struct {
	mux *http.ServeMux
	pad Pad

	// ModeChanged is called after a successful mode change with the mode that
	// request set.
	ModeChanged func(isDigital bool, isLocked bool)
}

const (
	ctBinary string = "application/octet-stream"
	ctJSON   string = "application/json"
)

type Axes struct {
	RightX, RightY uint8
	LeftX, LeftY   uint8
}

type StateResponse struct {
	Down    []string
	Held    []string
	Axes    Axes
	Mode    uint8
	Digital bool
	Locked  bool
	Present bool
}

type ModeRequest struct {
	Analog bool
	Locked bool
}

func New(pad Pad) *API {
	mux := &http.ServeMux{}

	s := &API{
		mux: mux,
		pad: pad,
	}

	mux.HandleFunc("/state", s.stateHandler)
	mux.HandleFunc("/frame", s.frameHandler)
	mux.HandleFunc("/mode", s.modeHandler)
	mux.HandleFunc("/poll", s.pollHandler)

	return s
}

func (s *API) stateResponse() StateResponse {
	status := s.pad.Status()
	st := status.State

	r := StateResponse{
		Down: []string{},
		Held: []string{},
		Axes: Axes{
			RightX: st.RightX(),
			RightY: st.RightY(),
			LeftX:  st.LeftX(),
			LeftY:  st.LeftY(),
		},
		Mode:    st.ModeID(),
		Digital: status.IsDigital,
		Locked:  status.IsLocked,
		Present: st.Present(),
	}

	for _, b := range dualshock.Buttons {
		if st.Down(b) {
			r.Down = append(r.Down, b.String())
		}
		if st.Held(b) {
			r.Held = append(r.Held, b.String())
		}
	}

	return r
}

func (s *API) sendState(w http.ResponseWriter) {
	data, err := json.MarshalIndent(s.stateResponse(), "", "  ")
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", ctJSON)
	w.Write(data)
}

func (s *API) stateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Invalid method", http.StatusMethodNotAllowed)
		return
	}

	s.sendState(w)
}

func (s *API) frameHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "GET" {
		http.Error(w, "Invalid method", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", ctBinary)
	w.Write(padnet.MarshalState(s.pad.Status()))
}

func (s *API) modeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Invalid method", http.StatusMethodNotAllowed)
		return
	}

	input, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req ModeRequest
	if err := json.Unmarshal(input, &req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.pad.SetMode(req.Analog, req.Locked); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if s.ModeChanged != nil {
		s.ModeChanged(!req.Analog, req.Locked)
	}

	s.sendState(w)
}

func (s *API) pollHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != "POST" {
		http.Error(w, "Invalid method", http.StatusMethodNotAllowed)
		return
	}

	if err := s.pad.Poll(); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.sendState(w)
}

func (s *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
