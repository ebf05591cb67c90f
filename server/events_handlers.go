package server

import (
	"net/http"
	"strconv"

	"github.com/eventhub/admin-console/aggregator"
)

// EventsPageData contains data for rendering the events list
type EventsPageData struct {
	pageData
	Events []aggregator.Event
}

// EventFormPageData contains data for rendering the create/edit event form
type EventFormPageData struct {
	pageData
	Event      aggregator.Event
	Categories []aggregator.Category
	IsEdit     bool
	Action     string
	CSRFToken  string
}

// EventsListHandler renders the events table (GET /dashboard/events)
func (s *Server) EventsListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := s.api.ListEvents(r.Context())
		if err != nil {
			s.handleAPIError(w, r, err, RouteDashboard)
			return
		}
		s.renderPage(w, "events.html", EventsPageData{
			pageData: s.newPageData(r),
			Events:   events,
		})
	}
}

// EventFormHandler renders the event form, blank for a new event or
// pre-filled when the path carries an id (GET /dashboard/events/new,
// GET /dashboard/events/{id}/edit)
func (s *Server) EventFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := s.api.ListCategories(r.Context())
		if err != nil {
			s.handleAPIError(w, r, err, RouteEvents)
			return
		}

		data := EventFormPageData{
			pageData:   s.newPageData(r),
			Categories: categories,
			Action:     RouteEvents,
			CSRFToken:  s.csrf.issue(),
		}

		if id := r.PathValue("id"); id != "" {
			event, err := s.api.GetEvent(r.Context(), id)
			if err != nil {
				s.handleAPIError(w, r, err, RouteEvents)
				return
			}
			data.Event = *event
			data.IsEdit = true
			data.Action = RouteEvents + "/" + id
		}

		s.renderPage(w, "event_form.html", data)
	}
}

// EventCreateHandler processes the new-event form (POST /dashboard/events)
func (s *Server) EventCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		input, errMsg := eventInputFromForm(r)
		if errMsg != "" {
			redirectWithError(w, r, RouteEventNew, errMsg)
			return
		}

		if _, err := s.api.CreateEvent(r.Context(), input); err != nil {
			s.handleAPIError(w, r, err, RouteEventNew)
			return
		}
		redirectWithNotice(w, r, RouteEvents, "Event created")
	}
}

// EventUpdateHandler processes the edit form (POST /dashboard/events/{id})
func (s *Server) EventUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		input, errMsg := eventInputFromForm(r)
		if errMsg != "" {
			redirectWithError(w, r, RouteEvents+"/"+id+"/edit", errMsg)
			return
		}

		if _, err := s.api.UpdateEvent(r.Context(), id, input); err != nil {
			s.handleAPIError(w, r, err, RouteEvents)
			return
		}
		redirectWithNotice(w, r, RouteEvents, "Event updated")
	}
}

// EventDeleteHandler removes an event (POST /dashboard/events/{id}/delete)
func (s *Server) EventDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.api.DeleteEvent(r.Context(), r.PathValue("id")); err != nil {
			s.handleAPIError(w, r, err, RouteEvents)
			return
		}
		redirectWithNotice(w, r, RouteEvents, "Event deleted")
	}
}

// eventInputFromForm validates the submitted form. The form is already
// parsed by the CSRF middleware.
func eventInputFromForm(r *http.Request) (aggregator.EventInput, string) {
	input := aggregator.EventInput{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Category:    r.FormValue("category"),
		Date:        r.FormValue("date"),
		Time:        r.FormValue("time"),
		Location:    r.FormValue("location"),
		Image:       r.FormValue("image"),
	}

	if input.Name == "" || input.Category == "" || input.Date == "" {
		return input, "Name, category and date are required"
	}

	if priceValue := r.FormValue("price"); priceValue != "" {
		price, err := strconv.ParseFloat(priceValue, 64)
		if err != nil || price < 0 {
			return input, "Price must be a non-negative number"
		}
		input.Price = price
	}

	return input, ""
}
