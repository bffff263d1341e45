package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/haulcore/dispatch-engine/engine/catalog"
	"github.com/haulcore/dispatch-engine/engine/dispatch"
	"github.com/haulcore/dispatch-engine/engine/domain"
	"github.com/haulcore/dispatch-engine/engine/market"
	"github.com/haulcore/dispatch-engine/engine/routing"
)

func newMux(svc *dispatch.Service, logger *slog.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", handleHealth)
	mux.HandleFunc("GET /api/opportunities", handleOpportunities(svc))
	mux.HandleFunc("POST /api/opportunities", handlePostOpportunity(svc, logger))
	mux.HandleFunc("GET /api/market-report", handleMarketReport(svc))
	mux.HandleFunc("POST /api/optimize/multi-load", handleOptimizeMultiLoad(svc, logger))
	mux.HandleFunc("POST /api/optimize/fleet", handleOptimizeFleet(svc, logger))
	mux.HandleFunc("POST /api/backhaul", handleBackhaul(svc))
	mux.HandleFunc("POST /api/fleet/vehicles", handleRegisterVehicle(svc))
	mux.Handle("GET /metrics", svc.Metrics.Handler())
	return mux
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleOpportunities(svc *dispatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		f := market.Filter{
			VehicleClass: domain.VehicleClass(q.Get("vehicle_class")),
			Urgency:      domain.UrgencyTier(q.Get("urgency")),
			Equipment:    domain.EquipmentType(q.Get("equipment")),
		}
		writeJSON(w, http.StatusOK, svc.QueryOpportunities(f))
	}
}

func handlePostOpportunity(svc *dispatch.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var o domain.LoadOpportunity
		if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := svc.AddOpportunity(o); err != nil {
			var verr *domain.ValidationError
			if errors.As(err, &verr) {
				writeError(w, http.StatusUnprocessableEntity, verr.Error())
				return
			}
			logger.Error("store opportunity failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"id": o.ID})
	}
}

func handleMarketReport(svc *dispatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, svc.MarketReport())
	}
}

// OptimizeMultiLoadRequest is the JSON body for POST /api/optimize/multi-load.
type OptimizeMultiLoadRequest struct {
	LoadIDs   []string `json:"load_ids"`
	VehicleID string   `json:"vehicle_id"`
}

func handleOptimizeMultiLoad(svc *dispatch.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OptimizeMultiLoadRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.VehicleID == "" {
			writeError(w, http.StatusBadRequest, "vehicle_id is required")
			return
		}
		rec, err := svc.OptimizeMultiLoad(r.Context(), req.LoadIDs, req.VehicleID)
		if err != nil {
			if errors.Is(err, dispatch.ErrUnknownLoad) {
				writeError(w, http.StatusNotFound, err.Error())
				return
			}
			logger.Error("multi-load optimization failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// OptimizeFleetRequest is the JSON body for POST /api/optimize/fleet.
type OptimizeFleetRequest struct {
	VehicleIDs []string `json:"vehicle_ids"`
}

func handleOptimizeFleet(svc *dispatch.Service, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req OptimizeFleetRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		rec, err := svc.OptimizeFleet(r.Context(), req.VehicleIDs)
		if err != nil {
			logger.Error("fleet optimization failed", "err", err)
			writeError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		writeJSON(w, http.StatusOK, rec)
	}
}

// BackhaulRequest is the JSON body for POST /api/backhaul.
type BackhaulRequest struct {
	Route     routing.RouteData `json:"route"`
	VehicleID string            `json:"vehicle_id"`
}

func handleBackhaul(svc *dispatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BackhaulRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.VehicleID == "" {
			writeError(w, http.StatusBadRequest, "vehicle_id is required")
			return
		}
		writeJSON(w, http.StatusOK, svc.FindBackhaul(req.Route, req.VehicleID))
	}
}

// RegisterVehicleRequest is the JSON body for POST /api/fleet/vehicles.
type RegisterVehicleRequest struct {
	VehicleID string              `json:"vehicle_id"`
	Class     domain.VehicleClass `json:"class"`
	Body      domain.BodyType     `json:"body"`
}

func handleRegisterVehicle(svc *dispatch.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterVehicleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.VehicleID == "" {
			writeError(w, http.StatusBadRequest, "vehicle_id is required")
			return
		}
		key := catalog.SpecKey{Class: req.Class, Body: req.Body}
		if err := svc.Catalog.AssignVehicle(req.VehicleID, key); err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		writeJSON(w, http.StatusCreated, map[string]string{"vehicle_id": req.VehicleID})
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}
