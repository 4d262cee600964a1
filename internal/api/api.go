package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/SergeyKozhin/workspace-calendar/internal/caltime"
	"github.com/SergeyKozhin/workspace-calendar/internal/database"
	"github.com/SergeyKozhin/workspace-calendar/internal/model"
	"github.com/SergeyKozhin/workspace-calendar/internal/notifications"
	"github.com/SergeyKozhin/workspace-calendar/internal/pkg/jwt"
)

type Api struct {
	handler http.Handler
	logger  *zap.SugaredLogger
	zone    *caltime.Zone

	jwts tokenVerifier

	db            database.PGX
	members       membersRepository
	eventsService eventsService
	availability  availabilityEngine
	cronJob       cronJob
	changes       changesHub
}

type tokenVerifier interface {
	Verify(token string) (*jwt.Claims, error)
}

type membersRepository interface {
	IsMember(ctx context.Context, q database.Queryable, workspaceID, userID int64) (bool, error)
}

type eventsService interface {
	CreateEvent(ctx context.Context, workspaceID, creatorID int64, info *model.EventCreate) (*model.Event, error)
	UpdateEvent(ctx context.Context, id int64, patch *model.EventPatch) (*model.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	GetEvent(ctx context.Context, id int64) (*model.Event, error)
	GetEvents(ctx context.Context, filter model.EventsFilter) ([]*model.Occurrence, error)
}

type availabilityEngine interface {
	FreeIntervals(ctx context.Context, workspaceID int64, userIDs []int64, day caltime.Date) (*model.Availability, error)
}

type cronJob interface {
	Execute(ctx context.Context) (*notifications.Report, error)
}

type changesHub interface {
	Subscribe(ctx context.Context, workspaceID int64) (<-chan model.EventChange, func(), error)
}

// NewApi builds the HTTP handler. jwts may be nil, then the cron trigger is
// not protected. changes may be nil, then the event stream is unavailable.
func NewApi(
	logger *zap.SugaredLogger,
	zone *caltime.Zone,
	jwts tokenVerifier,
	db database.PGX,
	members membersRepository,
	eventsService eventsService,
	availability availabilityEngine,
	cronJob cronJob,
	changes changesHub,
) (*Api, error) {
	a := &Api{
		logger:        logger,
		zone:          zone,
		jwts:          jwts,
		db:            db,
		members:       members,
		eventsService: eventsService,
		availability:  availability,
		cronJob:       cronJob,
		changes:       changes,
	}
	a.setupHandler()

	return a, nil
}

func (a *Api) setupHandler() {
	middleware.DefaultLogger = func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			a.logger.Debugw(r.URL.RequestURI(),
				"addr", r.RemoteAddr,
				"protocol", r.Proto,
				"method", r.Method,
			)
			next.ServeHTTP(w, r)
		})
	}

	r := chi.NewMux()

	r.Use(middleware.Logger, middleware.Recoverer, middleware.StripSlashes)
	r.NotFound(a.notFoundResponse)
	r.MethodNotAllowed(a.methodNotAllowedResponse)

	r.Get("/healthcheck", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	r.With(a.cronAuth).Get("/cron/upcoming-events", a.upcomingEventsCronHandler)

	r.With(a.auth).Route("/", func(r chi.Router) {
		r.With(a.workspaceCtx).Route("/workspaces/{workspaceID}", func(r chi.Router) {
			r.Get("/events", a.getEventsHandler)
			r.Post("/events", a.createEventHandler)
			r.Get("/events/stream", a.eventsStreamHandler)
			r.Get("/availability", a.availabilityHandler)
			r.Get("/calendar.ics", a.calendarHandler)
		})

		r.With(a.eventCtx).Route("/events/{eventID}", func(r chi.Router) {
			r.Get("/", a.getEventHandler)
			r.Patch("/", a.updateEventHandler)
			r.Delete("/", a.deleteEventHandler)
		})
	})

	a.handler = r
}

func (a *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}
