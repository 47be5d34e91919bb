package widget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/guestmap/internal/domain"
	"github.com/nfrund/guestmap/internal/guestmap"
	"github.com/nfrund/guestmap/internal/handlers"
	appmiddleware "github.com/nfrund/guestmap/internal/middleware"
	"github.com/nfrund/guestmap/internal/rendering"
	"github.com/nfrund/guestmap/internal/view"
	"github.com/nfrund/guestmap/web/src/templates/layouts"
)

// AssetVersioner reports the current static asset version.
type AssetVersioner interface {
	Version() string
}

// Handler holds dependencies for the widget's HTTP handlers.
type Handler struct {
	service  *guestmap.Service
	sessions *SessionStore
	renderer rendering.Renderer
	assets   AssetVersioner
}

// NewHandler creates a widget handler.
func NewHandler(service *guestmap.Service, sessions *SessionStore, renderer rendering.Renderer, assets AssetVersioner) *Handler {
	return &Handler{
		service:  service,
		sessions: sessions,
		renderer: renderer,
		assets:   assets,
	}
}

// Sessions returns the store used by RequireWidget.
func (h *Handler) Sessions() *SessionStore {
	return h.sessions
}

// Page serves the map page. Every load starts a new widget instance.
func (h *Handler) Page(c echo.Context) error {
	st := h.service.NewWidget()
	if err := h.sessions.Start(c, st); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to start widget").SetInternal(err)
	}

	version := h.assets.Version()
	page := layouts.Base(layouts.BaseProps{
		AssetVersion: version,
		Flashes:      view.GetFlashData(c).Messages,
	}, WidgetPage(st, version))
	return h.renderer.RenderPage(c, http.StatusOK, page)
}

// Groups returns every message grouped by coordinate, with popup HTML.
func (h *Handler) Groups(c echo.Context) error {
	ctx := c.Request().Context()
	logger := appmiddleware.FromContext(ctx)

	groups, err := h.service.Groups(ctx, c.Request().Host)
	if err != nil {
		logger.Error("Failed to load messages", "error", err)
		return c.JSON(http.StatusBadGateway, handlers.ErrorResponse{
			Code:    "messages_unavailable",
			Message: "Could not load messages. Please try again.",
		})
	}

	resp := handlers.GroupsResponse{Groups: make([]handlers.GroupResponse, 0, len(groups))}
	for _, group := range groups {
		popup, err := h.renderer.RenderComponent(ctx, Popup(group))
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to render messages").SetInternal(err)
		}
		resp.Groups = append(resp.Groups, handlers.GroupResponse{
			Latitude:  group.Representative.Latitude,
			Longitude: group.Representative.Longitude,
			Count:     len(group.Others) + 1,
			PopupHTML: string(popup),
		})
	}
	return c.JSON(http.StatusOK, resp)
}

// Location receives the browser's geolocation result and resolves the
// viewer location, falling back to the client IP.
//
// Resolution can wait on the IP service, so it runs on a snapshot and only
// the viewer location is merged back; a submission made meanwhile is kept.
func (h *Handler) Location(c echo.Context) error {
	st, ok, err := h.sessions.Load(c)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to load widget").SetInternal(err)
	}
	if !ok || st.InstanceID != instanceID(c) {
		return staleWidget(domain.ErrStaleWidget)
	}

	var req handlers.LocationReport
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid location report").SetInternal(err)
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid location report").SetInternal(err)
	}
	position, err := req.Position()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid location report").SetInternal(err)
	}

	located := h.service.Locate(c.Request().Context(), st, position, c.RealIP())
	next, err := h.sessions.Update(c, st.InstanceID, func(cur guestmap.WidgetState) (guestmap.WidgetState, error) {
		if cur.Viewer.Attempted {
			return cur, nil
		}
		return cur.WithViewer(located.Viewer), nil
	})
	if err != nil {
		return h.updateError(err)
	}
	return c.JSON(http.StatusOK, handlers.NewViewerResponse(next.Viewer))
}

// Messages submits the draft. The response is always the panel to show;
// validation problems are also raised as a guestmap:alert event.
func (h *Handler) Messages(c echo.Context) error {
	ctx := c.Request().Context()
	logger := appmiddleware.FromContext(ctx)

	var draft domain.DraftMessage
	if err := c.Bind(&draft); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid message").SetInternal(err)
	}

	next, err := h.sessions.Update(c, instanceID(c), func(st guestmap.WidgetState) (guestmap.WidgetState, error) {
		return h.service.Submit(ctx, c.Request().Host, st, draft)
	})

	var verr *guestmap.ValidationError
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrStaleWidget), errors.Is(err, errSessionStorage):
		return h.updateError(err)
	case errors.As(err, &verr):
		triggerAlert(c, verr.Error())
	case errors.Is(err, domain.ErrSubmissionInFlight), errors.Is(err, domain.ErrAlreadySent):
		logger.Info("Ignored duplicate submission", "instance_id", next.InstanceID, "error", err)
	default:
		logger.Error("Message submission failed", "instance_id", next.InstanceID, "error", err)
	}
	return h.panel(c, next)
}

// Status re-renders the panel after applying the passage of time.
func (h *Handler) Status(c echo.Context) error {
	next, err := h.sessions.Update(c, instanceID(c), func(st guestmap.WidgetState) (guestmap.WidgetState, error) {
		return h.service.Refresh(st), nil
	})
	if err != nil {
		return h.updateError(err)
	}
	return h.panel(c, next)
}

// Form returns a failed submission to the editable form with its draft.
func (h *Handler) Form(c echo.Context) error {
	next, err := h.sessions.Update(c, instanceID(c), func(st guestmap.WidgetState) (guestmap.WidgetState, error) {
		return h.service.Retry(st), nil
	})
	if err != nil {
		return h.updateError(err)
	}
	return h.panel(c, next)
}

func (h *Handler) panel(c echo.Context, st guestmap.WidgetState) error {
	return h.renderer.RenderPage(c, http.StatusOK, Panel(st, h.service.Remaining(st), h.assets.Version()))
}

func (h *Handler) updateError(err error) error {
	if errors.Is(err, domain.ErrStaleWidget) {
		return staleWidget(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save widget").SetInternal(err)
}

func staleWidget(err error) error {
	return echo.NewHTTPError(http.StatusConflict, "widget session expired, reload the page").SetInternal(err)
}

// instanceID is the instance RequireWidget verified for this request.
func instanceID(c echo.Context) string {
	id, _ := c.Get(appmiddleware.InstanceContextKey).(string)
	return id
}

func triggerAlert(c echo.Context, message string) {
	payload, _ := json.Marshal(map[string]string{"guestmap:alert": message})
	c.Response().Header().Set("HX-Trigger", string(payload))
}
