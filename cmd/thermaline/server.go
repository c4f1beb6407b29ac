// Copyright 2017 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"image/png"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/maruel/interrupt"
	"github.com/maruel/serve-dir/loghttp"
	"golang.org/x/net/websocket"

	"github.com/thermaline/thermaline/thermal"
)

type server struct {
	eng *thermal.Engine
	log *slog.Logger
}

func startServer(port int, eng *thermal.Engine, log *slog.Logger) *server {
	s := &server{eng: eng, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.root)
	mux.HandleFunc("/info", s.info)
	mux.HandleFunc("/frame.png", s.framePNG)
	mux.HandleFunc("/profile", s.profile)
	mux.HandleFunc("/temp", s.temp)
	mux.Handle("/stream", websocket.Handler(s.stream))
	log.Info("listening", "port", port)
	go http.ListenAndServe(fmt.Sprintf(":%d", port), &loghttp.Handler{Handler: mux})
	return s
}

var rootTmpl = template.Must(template.New("root").Parse(`
	<html>
	<head>
		<title>thermaline</title>
	</head>
	<body>
	<a href="/frame.png?frame=0"><img id="frame" src="/frame.png?frame=0"></img></a>
	<br>
	{{.Frames}} frames, {{.FPS}} fps, {{.Width}}x{{.Height}}
	<br>
	Profile a line: /profile?frame=0&x1=0&y1=0&x2={{.Width}}&y2={{.Height}}
	</body>
	</html>`))

func (s *server) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	if err := rootTmpl.Execute(w, s.eng.Info()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *server) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.eng.Info())
}

// framePNG re-encodes one decoded frame as PNG.
func (s *server) framePNG(w http.ResponseWriter, r *http.Request) {
	index, err := intParam(r, "frame")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f, ok := s.eng.Frame(r.Context(), index)
	if !ok {
		http.Error(w, "frame unavailable", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	if err := png.Encode(w, f.Image()); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type profileResponse struct {
	Frame int               `json:"frame"`
	Temps []thermal.Celsius `json:"temps"`
}

func (s *server) profile(w http.ResponseWriter, r *http.Request) {
	args, err := intParams(r, "frame", "x1", "y1", "x2", "y2")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	temps := s.eng.ProfileLine(r.Context(), args[0], args[1], args[2], args[3], args[4])
	writeJSON(w, profileResponse{Frame: args[0], Temps: temps})
}

type tempResponse struct {
	Temp  thermal.Celsius `json:"temp"`
	Found bool            `json:"found"`
}

func (s *server) temp(w http.ResponseWriter, r *http.Request) {
	args, err := intParams(r, "r", "g", "b")
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	for _, v := range args {
		if v < 0 || v > 255 {
			http.Error(w, "channel out of range", http.StatusBadRequest)
			return
		}
	}
	t, ok := s.eng.PixelTemp(uint8(args[0]), uint8(args[1]), uint8(args[2]))
	writeJSON(w, tempResponse{Temp: t, Found: ok})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, fmt.Errorf("missing parameter %q", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parameter %q: %s", name, err)
	}
	return v, nil
}

func intParams(r *http.Request, names ...string) ([]int, error) {
	out := make([]int, len(names))
	for i, name := range names {
		v, err := intParam(r, name)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

type streamRequest struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// stream profiles the same line on every frame in order and pushes one
// JSON result per frame over the websocket.
func (s *server) stream(ws *websocket.Conn) {
	defer ws.Close()
	var req streamRequest
	if err := websocket.JSON.Receive(ws, &req); err != nil {
		s.log.Warn("websocket request", "err", err)
		return
	}
	ctx := context.Background()
	frames := s.eng.Info().Frames
	for i := 0; i < frames && !interrupt.IsSet(); i++ {
		temps := s.eng.ProfileLine(ctx, i, req.X1, req.Y1, req.X2, req.Y2)
		if err := websocket.JSON.Send(ws, profileResponse{Frame: i, Temps: temps}); err != nil {
			s.log.Warn("websocket send", "err", err)
			return
		}
	}
}
