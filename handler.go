package teacalc

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"
)

// CalculateHandler exposes the engine's calculate operation as a JSON POST
// endpoint. Hard errors map to client-error responses with the offending
// field named; soft warnings travel inside the successful payload.
type CalculateHandler struct {
	engine *Engine
}

func NewCalculateHandler(engine *Engine) *CalculateHandler {
	return &CalculateHandler{engine: engine}
}

func (handler *CalculateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	traceAttr := slog.Attr{}
	if traceID := r.Header.Get("X-Cloud-Trace-Context"); traceID != "" {
		traceAttr = slog.String("logging.googleapis.com/trace", traceID)
	}

	var source map[string]any
	if err := json.NewDecoder(r.Body).Decode(&source); err != nil {
		writeError(w, http.StatusBadRequest, "body", "request body is not a JSON object: "+err.Error())
		return
	}

	result, err := handler.engine.Calculate(r.Context(), source)
	if err != nil {
		writeCalculationError(w, err, traceAttr)
		return
	}

	result.Sanitize()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		slog.Error("failed to encode calculation result", "err", err.Error(), traceAttr)
		return
	}

	slog.Info("calculation served",
		traceAttr,
		"calculation", result.ID,
		"duration_ms", time.Since(start).Milliseconds(),
		"warnings", len(result.Warnings))
}

// BatchHandler evaluates a list of independent scenarios concurrently. Each
// scenario gets its own copy-isolated pipeline run; one failing scenario
// does not abort the others.
type BatchHandler struct {
	engine      *Engine
	parallelism int
}

func NewBatchHandler(engine *Engine) *BatchHandler {
	return &BatchHandler{engine: engine, parallelism: 5}
}

// BatchItem is the outcome of one scenario of a batch request. Exactly one
// of Result and Error is set.
type BatchItem struct {
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

func (handler *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var scenarios []map[string]any
	if err := json.NewDecoder(r.Body).Decode(&scenarios); err != nil {
		writeError(w, http.StatusBadRequest, "body", "request body is not a JSON array of scenarios: "+err.Error())
		return
	}

	items := make([]BatchItem, len(scenarios))

	errg, errgctx := errgroup.WithContext(r.Context())
	errg.SetLimit(handler.parallelism)
	for i, scenario := range scenarios {
		i, scenario := i, scenario
		errg.Go(func() error {
			result, err := handler.engine.Calculate(errgctx, scenario)
			if err != nil {
				items[i] = BatchItem{Error: err.Error()}
				return nil
			}
			result.Sanitize()
			items[i] = BatchItem{Result: result}
			return nil
		})
	}

	if err := errg.Wait(); err != nil {
		slog.Error("batch calculation failed", "err", err.Error())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(items); err != nil {
		slog.Error("failed to encode batch result", "err", err.Error())
		return
	}

	slog.Info("batch served",
		"scenarios", len(scenarios),
		"duration_ms", time.Since(start).Milliseconds())
}

func writeCalculationError(w http.ResponseWriter, err error, traceAttr slog.Attr) {
	unitErr := new(UnitError)
	if errors.As(err, &unitErr) {
		slog.Warn("calculation rejected", "err", unitErr.Error(), traceAttr)
		writeError(w, http.StatusBadRequest, unitErr.Field, unitErr.Error())
		return
	}

	validationErr := new(ValidationError)
	if errors.As(err, &validationErr) {
		slog.Warn("calculation rejected", "err", validationErr.Error(), traceAttr)
		writeError(w, http.StatusBadRequest, validationErr.Field, validationErr.Error())
		return
	}

	calcErr := new(CalculationError)
	if errors.As(err, &calcErr) {
		slog.Warn("calculation failed", "err", calcErr.Error(), traceAttr)
		writeError(w, http.StatusUnprocessableEntity, calcErr.Op, calcErr.Error())
		return
	}

	slog.Error("calculation failed", "err", err.Error(), traceAttr)
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeError(w http.ResponseWriter, status int, field, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": message,
		"field": field,
	})
}
