// Package api exposes the gateway operations over an HTTP JSON surface.
package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/smartcontractkit/chainlink-common/pkg/logger"

	"github.com/vialabs/message-gateway/pkg/common"
	"github.com/vialabs/message-gateway/pkg/events"
	"github.com/vialabs/message-gateway/pkg/handlers"
	"github.com/vialabs/message-gateway/pkg/health"
	"github.com/vialabs/message-gateway/pkg/model"
	"github.com/vialabs/message-gateway/pkg/scope"
)

// Router wires the operation handlers onto HTTP routes.
type Router struct {
	admit     *handlers.AdmitMessageHandler
	finalize  *handlers.FinalizeMessageHandler
	send      *handlers.SendMessageHandler
	initGw    *handlers.InitializeGatewayHandler
	setSystem *handlers.SetSystemEnabledHandler
	registry  *handlers.RegistryAdminHandler
	query     *handlers.QueryHandler
	feed      *events.Feed
	health    *health.HTTPHandlers
	l         logger.SugaredLogger
}

func NewRouter(
	admit *handlers.AdmitMessageHandler,
	finalize *handlers.FinalizeMessageHandler,
	send *handlers.SendMessageHandler,
	initGw *handlers.InitializeGatewayHandler,
	setSystem *handlers.SetSystemEnabledHandler,
	registry *handlers.RegistryAdminHandler,
	query *handlers.QueryHandler,
	feed *events.Feed,
	healthHandlers *health.HTTPHandlers,
	monitoring common.GatewayMonitoring,
	l logger.SugaredLogger,
) *mux.Router {
	rt := &Router{
		admit:     admit,
		finalize:  finalize,
		send:      send,
		initGw:    initGw,
		setSystem: setSystem,
		registry:  registry,
		query:     query,
		feed:      feed,
		health:    healthHandlers,
		l:         l,
	}

	r := mux.NewRouter()
	r.Use(scopingMiddleware, loggingMiddleware(l), metricsMiddleware(monitoring))

	r.HandleFunc("/v1/messages/send", rt.handleSend).Methods(http.MethodPost)
	r.HandleFunc("/v1/messages/admit", rt.handleAdmit).Methods(http.MethodPost)
	r.HandleFunc("/v1/messages/finalize", rt.handleFinalize).Methods(http.MethodPost)

	r.HandleFunc("/v1/admin/gateway", rt.handleInitializeGateway).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/system", rt.handleSetSystemEnabled).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/registries", rt.handleInitializeRegistry).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/registries/signers", rt.handleUpdateSigners).Methods(http.MethodPut)
	r.HandleFunc("/v1/admin/registries/signers/add", rt.handleAddSigner).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/registries/signers/remove", rt.handleRemoveSigner).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/registries/threshold", rt.handleUpdateThreshold).Methods(http.MethodPost)
	r.HandleFunc("/v1/admin/registries/enabled", rt.handleSetRegistryEnabled).Methods(http.MethodPost)

	r.HandleFunc("/v1/gateway/{chainID}", rt.handleGetGateway).Methods(http.MethodGet)
	r.HandleFunc("/v1/registries/{layer}/{chainID}", rt.handleGetRegistry).Methods(http.MethodGet)
	r.HandleFunc("/v1/tickets/{sourceChainID}/{messageID}", rt.handleGetTicket).Methods(http.MethodGet)
	r.HandleFunc("/v1/high-water-marks/{sourceChainID}", rt.handleGetHighWaterMark).Methods(http.MethodGet)
	r.HandleFunc("/v1/events", rt.handleListEvents).Methods(http.MethodGet)

	healthHandlers.RegisterRoutes(r)
	return r
}

func (rt *Router) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		rt.l.Errorw("Failed to encode response", "error", err)
	}
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status == http.StatusInternalServerError {
		scope.AugmentLogger(r.Context(), rt.l).Errorw("Internal error", "error", err)
	}
	rt.writeJSON(w, status, errorResponse{Error: err.Error()})
}

func decodeJSON[T any](r *http.Request) (*T, error) {
	var body T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&body); err != nil {
		return nil, err
	}
	return &body, nil
}

// handle runs one decoded operation and writes the JSON result.
func handle[Req, Resp any](rt *Router, w http.ResponseWriter, r *http.Request, status int, op func(*Req) (Resp, error)) {
	req, err := decodeJSON[Req](r)
	if err != nil {
		rt.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	resp, err := op(req)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeJSON(w, status, resp)
}

func (rt *Router) handleSend(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusAccepted, func(req *handlers.SendMessageRequest) (*handlers.SendMessageResponse, error) {
		return rt.send.Handle(r.Context(), req)
	})
}

func (rt *Router) handleAdmit(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusCreated, func(req *handlers.AdmitMessageRequest) (*handlers.AdmitMessageResponse, error) {
		return rt.admit.Handle(r.Context(), req)
	})
}

func (rt *Router) handleFinalize(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusOK, func(req *handlers.FinalizeMessageRequest) (*handlers.FinalizeMessageResponse, error) {
		return rt.finalize.Handle(r.Context(), req)
	})
}

func (rt *Router) handleInitializeGateway(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusCreated, func(req *handlers.InitializeGatewayRequest) (*handlers.InitializeGatewayResponse, error) {
		return rt.initGw.Handle(r.Context(), req)
	})
}

func (rt *Router) handleSetSystemEnabled(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusOK, func(req *handlers.SetSystemEnabledRequest) (*handlers.SetSystemEnabledResponse, error) {
		return rt.setSystem.Handle(r.Context(), req)
	})
}

func (rt *Router) handleInitializeRegistry(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusCreated, func(req *handlers.InitializeRegistryRequest) (*handlers.RegistryResponse, error) {
		return rt.registry.Initialize(r.Context(), req)
	})
}

func (rt *Router) handleUpdateSigners(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusOK, func(req *handlers.UpdateSignersRequest) (*handlers.RegistryResponse, error) {
		return rt.registry.UpdateSigners(r.Context(), req)
	})
}

func (rt *Router) handleAddSigner(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusOK, func(req *handlers.AddSignerRequest) (*handlers.RegistryResponse, error) {
		return rt.registry.AddSigner(r.Context(), req)
	})
}

func (rt *Router) handleRemoveSigner(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusOK, func(req *handlers.RemoveSignerRequest) (*handlers.RegistryResponse, error) {
		return rt.registry.RemoveSigner(r.Context(), req)
	})
}

func (rt *Router) handleUpdateThreshold(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusOK, func(req *handlers.UpdateThresholdRequest) (*handlers.RegistryResponse, error) {
		return rt.registry.UpdateThreshold(r.Context(), req)
	})
}

func (rt *Router) handleSetRegistryEnabled(w http.ResponseWriter, r *http.Request) {
	handle(rt, w, r, http.StatusOK, func(req *handlers.SetRegistryEnabledRequest) (*handlers.RegistryResponse, error) {
		return rt.registry.SetEnabled(r.Context(), req)
	})
}

func pathChainID(r *http.Request, name string) (model.ChainID, error) {
	raw := mux.Vars(r)[name]
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return model.ChainID(v), nil
}

func (rt *Router) handleGetGateway(w http.ResponseWriter, r *http.Request) {
	chainID, err := pathChainID(r, "chainID")
	if err != nil {
		rt.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	resp, err := rt.query.GetGateway(r.Context(), chainID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) handleGetRegistry(w http.ResponseWriter, r *http.Request) {
	layer, err := model.ParseSignerLayer(mux.Vars(r)["layer"])
	if err != nil {
		rt.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	chainID, err := pathChainID(r, "chainID")
	if err != nil {
		rt.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	resp, err := rt.query.GetRegistry(r.Context(), model.RegistryKey{Layer: layer, ChainID: chainID})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	sourceChainID, err := pathChainID(r, "sourceChainID")
	if err != nil {
		rt.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	var messageID model.MessageID
	if err := messageID.UnmarshalJSON([]byte(strconv.Quote(mux.Vars(r)["messageID"]))); err != nil {
		rt.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	resp, err := rt.query.GetTicket(r.Context(), model.TicketKey{SourceChainID: sourceChainID, MessageID: messageID})
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) handleGetHighWaterMark(w http.ResponseWriter, r *http.Request) {
	sourceChainID, err := pathChainID(r, "sourceChainID")
	if err != nil {
		rt.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	resp, err := rt.query.GetHighWaterMark(r.Context(), sourceChainID)
	if err != nil {
		rt.writeError(w, r, err)
		return
	}
	rt.writeJSON(w, http.StatusOK, resp)
}

func (rt *Router) handleListEvents(w http.ResponseWriter, r *http.Request) {
	var since uint64
	if raw := r.URL.Query().Get("since"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			rt.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		since = v
	}
	rt.writeJSON(w, http.StatusOK, map[string]any{"events": rt.feed.List(since)})
}
