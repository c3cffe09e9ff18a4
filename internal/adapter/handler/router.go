package handler

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/srgjo27/feria_ticket/internal/platform/metrics"
	"github.com/srgjo27/feria_ticket/internal/platform/telemetry"
)

type Handlers struct {
	Events         *EventHandler
	Purchases      *PurchaseHandler
	Validation     *ValidationHandler
	WalkIns        *WalkInHandler
	Accreditations *AccreditationHandler
	Stats          *StatsHandler
	Auth           *AuthHandler
	Settings       *SettingsHandler
}

func NewRouter(h Handlers, tokens TokenParser, log *logrus.Entry) *mux.Router {
	r := mux.NewRouter()
	r.Use(telemetry.Recover(log), AccessLog(log), metrics.Middleware(routeTemplate))

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/events", h.Events.ListEvents).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}", h.Events.GetEvent).Methods(http.MethodGet)
	api.HandleFunc("/events/{id}/seats", h.Events.GetSeats).Methods(http.MethodGet)
	api.HandleFunc("/categories", h.Events.ListCategories).Methods(http.MethodGet)
	api.HandleFunc("/seats/reserve", h.Events.ReserveSeats).Methods(http.MethodPost)
	api.HandleFunc("/purchases", h.Purchases.CreatePurchase).Methods(http.MethodPost)
	api.HandleFunc("/tickets", h.Purchases.ListTickets).Methods(http.MethodGet)
	api.HandleFunc("/tickets/{id}/image", h.Purchases.TicketImage).Methods(http.MethodGet)
	api.HandleFunc("/validate", h.Validation.Validate).Methods(http.MethodPost)
	api.HandleFunc("/settings", h.Settings.GetSiteConfig).Methods(http.MethodGet)
	api.HandleFunc("/payment-methods", h.Settings.ListPaymentMethods).Methods(http.MethodGet)
	api.HandleFunc("/table-categories", h.Settings.ListTableCategories).Methods(http.MethodGet)
	api.HandleFunc("/admin/login", h.Auth.Login).Methods(http.MethodPost)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin(tokens, log))

	admin.HandleFunc("/events", h.Events.CreateEvent).Methods(http.MethodPost)
	admin.HandleFunc("/events/{id}", h.Events.UpdateEvent).Methods(http.MethodPut, http.MethodPatch)
	admin.HandleFunc("/events/{id}", h.Events.DeleteEvent).Methods(http.MethodDelete)
	admin.HandleFunc("/events/{id}/seats", h.Events.ConfigureSeats).Methods(http.MethodPut)
	admin.HandleFunc("/categories", h.Events.CreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/categories/{id}", h.Events.UpdateCategory).Methods(http.MethodPut)
	admin.HandleFunc("/categories/{id}", h.Events.DeleteCategory).Methods(http.MethodDelete)

	admin.HandleFunc("/purchases", h.Purchases.ListPurchases).Methods(http.MethodGet)
	admin.HandleFunc("/purchases/approve", h.Purchases.Approve).Methods(http.MethodPost)
	admin.HandleFunc("/purchases/reject", h.Purchases.Reject).Methods(http.MethodPost)
	admin.HandleFunc("/tickets/{id}/regenerate", h.Purchases.Regenerate).Methods(http.MethodPost)

	admin.HandleFunc("/walkin", h.WalkIns.Generate).Methods(http.MethodPost)
	admin.HandleFunc("/walkin/{id}/image", h.WalkIns.Image).Methods(http.MethodGet)

	admin.HandleFunc("/accreditation-categories", h.Accreditations.ListCategories).Methods(http.MethodGet)
	admin.HandleFunc("/accreditation-categories", h.Accreditations.CreateCategory).Methods(http.MethodPost)
	admin.HandleFunc("/accreditation-categories/{id}", h.Accreditations.DeleteCategory).Methods(http.MethodDelete)
	admin.HandleFunc("/accreditations", h.Accreditations.List).Methods(http.MethodGet)
	admin.HandleFunc("/accreditations", h.Accreditations.Create).Methods(http.MethodPost)
	admin.HandleFunc("/accreditations/{id}", h.Accreditations.Delete).Methods(http.MethodDelete)
	admin.HandleFunc("/accreditations/{id}/pdf", h.Accreditations.PDF).Methods(http.MethodGet)
	admin.HandleFunc("/events/{id}/accreditations/pdf", h.Accreditations.EventPDF).Methods(http.MethodGet)

	admin.HandleFunc("/settings", h.Settings.UpdateSiteConfig).Methods(http.MethodPut)
	admin.HandleFunc("/payment-methods", h.Settings.ListAllPaymentMethods).Methods(http.MethodGet)
	admin.HandleFunc("/payment-methods", h.Settings.CreatePaymentMethod).Methods(http.MethodPost)
	admin.HandleFunc("/payment-methods/{id}", h.Settings.UpdatePaymentMethod).Methods(http.MethodPut)
	admin.HandleFunc("/payment-methods/{id}", h.Settings.DeletePaymentMethod).Methods(http.MethodDelete)
	admin.HandleFunc("/table-categories", h.Settings.CreateTableCategory).Methods(http.MethodPost)
	admin.HandleFunc("/table-categories/{id}", h.Settings.UpdateTableCategory).Methods(http.MethodPut)
	admin.HandleFunc("/table-categories/{id}", h.Settings.DeleteTableCategory).Methods(http.MethodDelete)

	admin.HandleFunc("/users", h.Auth.ListUsers).Methods(http.MethodGet)
	admin.HandleFunc("/users", h.Auth.CreateUser).Methods(http.MethodPost)
	admin.HandleFunc("/users/{username}", h.Auth.DeleteUser).Methods(http.MethodDelete)

	admin.HandleFunc("/stats", h.Stats.Dashboard).Methods(http.MethodGet)
	admin.HandleFunc("/events/{id}/occupancy", h.Stats.Occupancy).Methods(http.MethodGet)
	admin.HandleFunc("/events/{id}/attendance", h.Stats.Attendance).Methods(http.MethodGet)

	return r
}
