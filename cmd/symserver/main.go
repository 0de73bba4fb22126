// Command symserver exposes symcore's Bind/Derive/Evaluate/Guaranteed
// operations as an HTTP JSON tool endpoint for agent frameworks.
//
// Usage:
//
//	symserver --addr :8080
//
// Tool call endpoint: POST /tool
// Metrics endpoint:   GET  /metrics
// Health endpoint:    GET  /health
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/mjkallio/symcore"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// server holds one long-lived Context and the named variables the client
// has bound so far, keyed by name. Concurrent requests share this Context
// deliberately - the server is single-threaded at the DAG level, since
// Context's interning tables are not safe for concurrent mutation.
type server struct {
	ctx  *symcore.Context
	vars map[string]*symcore.Variable
}

func newServer() *server {
	return &server{ctx: symcore.NewContext(), vars: make(map[string]*symcore.Variable)}
}

func (s *server) variable(name string) *symcore.Variable {
	if v, ok := s.vars[name]; ok {
		return v
	}
	v := symcore.NewVariable(s.ctx)
	v.SetName(name)
	s.vars[name] = v
	return v
}

// toolRequest and toolResponse are the JSON tool-call envelope: a named
// operation plus a free-form params bag, and a result-or-error response.
type toolRequest struct {
	Tool   string          `json:"tool"`
	Params json.RawMessage `json:"params"`
}

type toolResponse struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
}

type bindParams struct {
	Variable string  `json:"variable"`
	Value    float64 `json:"value"`
}

type exprParams struct {
	Expr string `json:"expr"`
}

type guaranteedParams struct {
	Expr      string `json:"expr"`
	Attribute string `json:"attribute"`
}

type deriveParams struct {
	Expr     string `json:"expr"`
	Variable string `json:"variable"`
}

type assignment struct {
	Variable string `json:"variable"`
	Expr     string `json:"expr"`
}

type atomicAssignParams struct {
	Updates []assignment `json:"updates"`
}

var attrByName = map[string]symcore.Attr{
	"defined":           symcore.AttrDefined,
	"nonzero":           symcore.AttrNonzero,
	"positive":          symcore.AttrPositive,
	"negative":          symcore.AttrNegative,
	"nonpositive":       symcore.AttrNonpositive,
	"nonnegative":       symcore.AttrNonnegative,
	"unitrange":         symcore.AttrUnitRange,
	"antiunitrange":     symcore.AttrAntiUnitRange,
	"openunitrange":     symcore.AttrOpenUnitRange,
	"antiopenunitrange": symcore.AttrAntiOpenUnitRange,
	"continuous":        symcore.AttrContinuous,
	"increasing":        symcore.AttrIncreasing,
	"decreasing":        symcore.AttrDecreasing,
	"nonincreasing":     symcore.AttrNonincreasing,
	"nondecreasing":     symcore.AttrNondecreasing,
	"boundedabove":      symcore.AttrBoundedAbove,
	"boundedbelow":      symcore.AttrBoundedBelow,
}

// handleTool dispatches bind/derive/evaluate/guaranteed/depth/atomicAssign
// by name; every tool except bind accepts expressions written in the
// mini-language parsed by parseExpr (parse.go).
func (s *server) handleTool(req toolRequest) toolResponse {
	switch req.Tool {
	case "bind":
		var p bindParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return toolResponse{Error: err.Error()}
		}
		if err := s.variable(p.Variable).SetValue(p.Value); err != nil {
			return toolResponse{Error: err.Error()}
		}
		return toolResponse{Result: map[string]interface{}{"variable": p.Variable, "value": p.Value}}

	case "evaluate":
		var p exprParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return toolResponse{Error: err.Error()}
		}
		e, err := parseExpr(s, p.Expr)
		if err != nil {
			return toolResponse{Error: err.Error()}
		}
		defer e.Release()
		return toolResponse{Result: map[string]interface{}{"value": e.Evaluate()}}

	case "guaranteed":
		var p guaranteedParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return toolResponse{Error: err.Error()}
		}
		attr, ok := attrByName[p.Attribute]
		if !ok {
			return toolResponse{Error: "unknown attribute: " + p.Attribute}
		}
		e, err := parseExpr(s, p.Expr)
		if err != nil {
			return toolResponse{Error: err.Error()}
		}
		defer e.Release()
		return toolResponse{Result: map[string]interface{}{"guaranteed": e.Guaranteed(attr)}}

	case "depth":
		var p exprParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return toolResponse{Error: err.Error()}
		}
		e, err := parseExpr(s, p.Expr)
		if err != nil {
			return toolResponse{Error: err.Error()}
		}
		defer e.Release()
		return toolResponse{Result: map[string]interface{}{"depth": e.Depth()}}

	case "derive":
		var p deriveParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return toolResponse{Error: err.Error()}
		}
		e, err := parseExpr(s, p.Expr)
		if err != nil {
			return toolResponse{Error: err.Error()}
		}
		defer e.Release()
		d := e.Derive(s.variable(p.Variable))
		defer d.Release()
		return toolResponse{Result: map[string]interface{}{"derivative": d.String(), "value": d.Evaluate()}}

	case "atomicAssign":
		var p atomicAssignParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return toolResponse{Error: err.Error()}
		}
		updates := make([]symcore.AtomicAssignment, 0, len(p.Updates))
		for _, u := range p.Updates {
			e, err := parseExpr(s, u.Expr)
			if err != nil {
				return toolResponse{Error: err.Error()}
			}
			defer e.Release()
			updates = append(updates, symcore.AtomicAssignment{Var: s.variable(u.Variable), Expr: e})
		}
		if err := symcore.AtomicAssign(s.ctx, updates); err != nil {
			return toolResponse{Error: err.Error()}
		}
		result := make(map[string]interface{}, len(updates))
		for _, u := range updates {
			result[u.Var.Name()] = u.Var.Value()
		}
		return toolResponse{Result: result}
	}
	return toolResponse{Error: "unknown tool: " + req.Tool}
}

func main() {
	var addr string
	root := &cobra.Command{
		Use:   "symserver",
		Short: "HTTP tool endpoint for symcore expressions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr)
		},
	}
	root.Flags().StringVar(&addr, "addr", ":8080", "address to listen on")
	if err := root.Execute(); err != nil {
		klog.ErrorS(err, "symserver exited")
		os.Exit(1)
	}
}

func run(addr string) error {
	s := newServer()
	registry := prometheus.NewRegistry()
	s.ctx.Metrics().Register(registry)

	mux := http.NewServeMux()

	// mu serializes every tool call, since all requests share s.ctx.
	var mu sync.Mutex

	mux.HandleFunc("/tool", func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				klog.ErrorS(fmt.Errorf("%v", rec), "panic in /tool", "stack", string(debug.Stack()))
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		defer r.Body.Close()

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req toolRequest
		if err := dec.Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, toolResponse{Error: err.Error()})
			return
		}
		writeJSON(w, http.StatusOK, func() toolResponse {
			mu.Lock()
			defer mu.Unlock()
			return s.handleTool(req)
		}())
	})

	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "time": time.Now().UTC().Format(time.RFC3339)})
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	klog.InfoS("symserver listening", "addr", addr)
	return srv.ListenAndServe()
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
