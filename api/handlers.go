package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/netip"
	"os"
	"time"

	"clinic-scheduling/availability"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// SlotCache stores computed slot lists. A nil SlotCache disables caching.
type SlotCache interface {
	Key(ctx context.Context, professionalID uuid.UUID, date time.Time, slotLength time.Duration, rule availability.OverlapRule) (string, error)
	Get(ctx context.Context, key string) ([]availability.TimeOfDay, bool, error)
	Set(ctx context.Context, key string, slots []availability.TimeOfDay) error
	InvalidateProfessional(ctx context.Context, professionalID uuid.UUID) error
	InvalidateAll(ctx context.Context) error
}

type API struct {
	root   *mux.Router
	router *mux.Router
	db     *sql.DB

	logger     *zap.Logger
	cache      SlotCache
	slotLength time.Duration
	rule       availability.OverlapRule
	location   *time.Location
	now        func() time.Time

	limiter *rateLimiter
	// trustedProxies may set X-Forwarded-For.
	trustedProxies []netip.Prefix
}

type Option func(*API)

func WithLogger(logger *zap.Logger) Option {
	return func(a *API) { a.logger = logger }
}

func WithSlotCache(cache SlotCache) Option {
	return func(a *API) { a.cache = cache }
}

func WithSlotLength(length time.Duration) Option {
	return func(a *API) { a.slotLength = length }
}

func WithOverlapRule(rule availability.OverlapRule) Option {
	return func(a *API) { a.rule = rule }
}

// WithLocation sets the clinic time zone used to read calendar dates.
func WithLocation(loc *time.Location) Option {
	return func(a *API) { a.location = loc }
}

func WithClock(now func() time.Time) Option {
	return func(a *API) { a.now = now }
}

// WithRateLimit caps slot lookups per client IP. Zero disables the limit.
func WithRateLimit(perMinute int) Option {
	return func(a *API) {
		if perMinute > 0 {
			a.limiter = newRateLimiter(perMinute)
		}
	}
}

// WithTrustedProxies lists the reverse proxies whose X-Forwarded-For header is
// believed when identifying a client.
func WithTrustedProxies(proxies ...netip.Prefix) Option {
	return func(a *API) { a.trustedProxies = proxies }
}

func NewAPI(db *sql.DB, opts ...Option) *API {
	root := mux.NewRouter()
	a := &API{
		root:       root,
		router:     root.PathPrefix("/api").Subrouter(),
		db:         db,
		logger:     zap.NewNop(),
		slotLength: availability.DefaultSlotLength,
		rule:       availability.OverlapStrict,
		location:   time.UTC,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *API) Router() http.Handler {
	return a.root
}

func (a *API) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	// Use Gorilla's built-in logging handler
	return handlers.LoggingHandler(os.Stdout, cors(a.root))
}

type Response struct {
	Status   int `json:"status"`
	Response any `json:"response"`
}

func (a *API) Response(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(Response{
		Status:   status,
		Response: data,
	})
	if err != nil {
		a.logger.Error("encode response", zap.Error(err))
	}
}

// InternalError logs the cause and answers 500.
func (a *API) InternalError(w http.ResponseWriter, r *http.Request, err error) {
	a.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	a.Response(w, http.StatusInternalServerError, err.Error())
}

func (a *API) RegisterRoutes() {
	a.router.HandleFunc("/health", a.health).Methods(http.MethodGet)

	a.router.HandleFunc("/clients", a.createClient).Methods(http.MethodPost)
	a.router.HandleFunc("/clients", a.getClients).Methods(http.MethodGet)
	a.router.HandleFunc("/clients/{id}", a.getClient).Methods(http.MethodGet)
	a.router.HandleFunc("/clients/{id}/record", a.getClientRecord).Methods(http.MethodGet)

	a.router.HandleFunc("/professionals", a.createProfessional).Methods(http.MethodPost)
	a.router.HandleFunc("/professionals", a.getProfessionals).Methods(http.MethodGet)
	a.router.HandleFunc("/professionals/{id}", a.getProfessional).Methods(http.MethodGet)
	a.router.HandleFunc("/professionals/{id}/availability", a.setAvailability).Methods(http.MethodPut)
	a.router.HandleFunc("/professionals/{id}/availability", a.getAvailability).Methods(http.MethodGet)
	a.router.HandleFunc("/professionals/{id}/procedures", a.getProfessionalProcedures).Methods(http.MethodGet)
	a.router.HandleFunc("/professionals/{id}/procedures/{procedureID}", a.linkProcedure).Methods(http.MethodPut)
	a.router.Handle("/professionals/{id}/slots", a.rateLimit(http.HandlerFunc(a.getSlots))).Methods(http.MethodGet)

	a.router.HandleFunc("/procedures", a.createProcedure).Methods(http.MethodPost)
	a.router.HandleFunc("/procedures/{id}", a.getProcedure).Methods(http.MethodGet)
	a.router.HandleFunc("/procedures/{id}/prices", a.setProcedurePrice).Methods(http.MethodPut)
	a.router.HandleFunc("/procedures/{id}/prices", a.getProcedurePrices).Methods(http.MethodGet)
	a.router.HandleFunc("/procedures/{id}/price", a.getProcedurePrice).Methods(http.MethodGet)

	a.router.HandleFunc("/blocks", a.createBlock).Methods(http.MethodPost)
	a.router.HandleFunc("/blocks", a.getBlocks).Methods(http.MethodGet)
	a.router.HandleFunc("/blocks/{id}", a.deleteBlock).Methods(http.MethodDelete)

	a.router.HandleFunc("/appointments", a.createAppointment).Methods(http.MethodPost)
	a.router.HandleFunc("/appointments", a.getAppointments).Methods(http.MethodGet)
	a.router.HandleFunc("/appointments/{id}", a.getAppointment).Methods(http.MethodGet)
	a.router.HandleFunc("/appointments/{id}/status", a.updateAppointmentStatus).Methods(http.MethodPatch)
	a.router.HandleFunc("/appointments/{id}/answers", a.saveAnswers).Methods(http.MethodPut)
	a.router.HandleFunc("/appointments/{id}/answers", a.getAnswers).Methods(http.MethodGet)
	a.router.HandleFunc("/appointments/{id}/consent", a.signConsent).Methods(http.MethodPost)
	a.router.HandleFunc("/appointments/{id}/consent", a.getConsent).Methods(http.MethodGet)

	a.router.HandleFunc("/record/questions", a.createQuestion).Methods(http.MethodPost)
	a.router.HandleFunc("/record/questions", a.getQuestions).Methods(http.MethodGet)
	a.router.HandleFunc("/record/questions/{id}", a.setQuestionActive).Methods(http.MethodPatch)
}

// pathID parses the named path variable. It writes the 400 itself and reports
// false when the value is missing or not a UUID.
func (a *API) pathID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id := mux.Vars(r)[name]
	if id == "" {
		a.Response(w, http.StatusBadRequest, label+" ID is required")
		return uuid.Nil, false
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		a.Response(w, http.StatusBadRequest, "invalid "+label+" ID")
		return uuid.Nil, false
	}
	return parsedID, true
}

// parseDate reads a YYYY-MM-DD calendar date in the clinic time zone.
func (a *API) parseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, s, a.location)
}

// invalidateSlots drops cached slots after a write that changes occupancy.
// A nil professionalID means the change affects every professional.
func (a *API) invalidateSlots(ctx context.Context, professionalID *uuid.UUID) {
	if a.cache == nil {
		return
	}
	var err error
	if professionalID == nil {
		err = a.cache.InvalidateAll(ctx)
	} else {
		err = a.cache.InvalidateProfessional(ctx, *professionalID)
	}
	if err != nil {
		a.logger.Warn("slot cache invalidation failed", zap.Error(err))
	}
}
