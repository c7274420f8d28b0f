package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/openrdm/rdmc-registry"
	"github.com/openrdm/rdmc-registry/internal/domain"
	"github.com/openrdm/rdmc-registry/internal/present/rest/presenter"
	"github.com/openrdm/rdmc-registry/internal/service"
	"github.com/openrdm/rdmc-registry/internal/usecase"
)

type Handler struct {
	rdmc   *usecase.RdmcUsecase
	signal *service.SignalService
}

// NewHandler wires the REST surface. signal may be nil when no redis is
// configured; the realtime endpoint then reports unavailable.
func NewHandler(
	rdmc *usecase.RdmcUsecase,
	signal *service.SignalService,
) *Handler {
	return &Handler{
		rdmc:   rdmc,
		signal: signal,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.handleHealth)
	e.POST("/rdmcs", h.handleIngest)
	e.GET("/rdmcs", h.handleList)
	e.GET("/rdmcs/by-contributor", h.handleByContributor)
	e.GET("/rdmcs/:external_id", h.handleGet)
	e.GET("/realtime", h.handleRealtime)
}

func (h *Handler) handleHealth(c echo.Context) error {
	return presenter.OK(c, echo.Map{"status": "ok"})
}

func (h *Handler) handleIngest(c echo.Context) error {
	ctx := c.Request().Context()

	var req rdmc.IngestRequest
	err := c.Bind(&req)
	if err != nil {
		return presenter.BadRequest(c, err)
	}

	if req.ExternalID == "" {
		return presenter.BadRequestMessage(c, "external_id is required")
	}
	if req.Manifest == nil {
		return presenter.BadRequestMessage(c, "manifest must be a JSON object")
	}

	record, err := h.rdmc.Ingest(ctx, req)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, record)
}

func (h *Handler) handleList(c echo.Context) error {
	ctx := c.Request().Context()

	filter := domain.ListFilter{
		Subject:          optQueryParam(c, "subject"),
		License:          optQueryParam(c, "license"),
		ContainerConcept: optQueryParam(c, "container_concept"),
	}

	records, err := h.rdmc.List(ctx, filter)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, records)
}

func (h *Handler) handleByContributor(c echo.Context) error {
	ctx := c.Request().Context()

	orcid := optQueryParam(c, "orcid")
	email := optQueryParam(c, "email")
	if orcid == nil && email == nil {
		return presenter.BadRequestMessage(c, "provide at least one of: orcid, email")
	}

	records, err := h.rdmc.GetByContributor(ctx, orcid, email)
	if err != nil {
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, records)
}

func (h *Handler) handleGet(c echo.Context) error {
	ctx := c.Request().Context()

	externalID := c.Param("external_id")

	record, err := h.rdmc.Get(ctx, externalID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return presenter.NotFound(c, "rdmc not found")
		}
		return presenter.InternalError(c, err)
	}

	return presenter.OK(c, record)
}

func optQueryParam(c echo.Context, name string) *string {
	value := c.QueryParam(name)
	if value == "" {
		return nil
	}
	return &value
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type realtimeRequest struct {
	Type string `json:"type"`
}

func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime is not enabled"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer func() {
		ws.Close()
	}()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	output := make(chan rdmc.IngestEvent)

	go h.signal.Realtime(ctx, output)

	quit := make(chan struct{})

	go func() {
		for {
			var req realtimeRequest
			err := ws.ReadJSON(&req)
			if err != nil {

				wsErr, ok := err.(*websocket.CloseError)
				if ok {
					if !(wsErr.Code == websocket.CloseNormalClosure || wsErr.Code == websocket.CloseGoingAway) {
						slog.DebugContext(
							ctx, "WebSocket closed",
							slog.String("error", wsErr.Error()),
							slog.String("module", "socket"),
						)
					}
				} else {
					slog.ErrorContext(
						ctx, "Error reading message",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}

				// close rather than send: the write loop may already be
				// gone after a WriteJSON failure.
				close(quit)
				break
			}

			switch req.Type {
			case "h": // heartbeat
				// do nothing
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		}
	}()

	for {
		select {
		case <-quit:
			return nil
		case event := <-output:
			err := ws.WriteJSON(event)
			if err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
