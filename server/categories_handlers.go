package server

import (
	"net/http"

	"github.com/eventhub/admin-console/aggregator"
)

// CategoriesPageData contains data for rendering the categories list
type CategoriesPageData struct {
	pageData
	Categories []aggregator.Category
}

// CategoryFormPageData contains data for rendering the create/edit category form
type CategoryFormPageData struct {
	pageData
	Category  aggregator.Category
	IsEdit    bool
	Action    string
	CSRFToken string
}

// CategoriesListHandler renders the categories table (GET /dashboard/categories)
func (s *Server) CategoriesListHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := s.api.ListCategories(r.Context())
		if err != nil {
			s.handleAPIError(w, r, err, RouteDashboard)
			return
		}
		s.renderPage(w, "categories.html", CategoriesPageData{
			pageData:   s.newPageData(r),
			Categories: categories,
		})
	}
}

// CategoryFormHandler renders the category form (GET /dashboard/categories/new,
// GET /dashboard/categories/{id}/edit)
func (s *Server) CategoryFormHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data := CategoryFormPageData{
			pageData:  s.newPageData(r),
			Action:    RouteCategories,
			CSRFToken: s.csrf.issue(),
		}

		if id := r.PathValue("id"); id != "" {
			category, err := s.api.GetCategory(r.Context(), id)
			if err != nil {
				s.handleAPIError(w, r, err, RouteCategories)
				return
			}
			data.Category = *category
			data.IsEdit = true
			data.Action = RouteCategories + "/" + id
		}

		s.renderPage(w, "category_form.html", data)
	}
}

// CategoryCreateHandler processes the new-category form (POST /dashboard/categories)
func (s *Server) CategoryCreateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.FormValue("name")
		if name == "" {
			redirectWithError(w, r, RouteCategoryNew, "Name is required")
			return
		}

		if _, err := s.api.CreateCategory(r.Context(), aggregator.CategoryInput{Name: name}); err != nil {
			s.handleAPIError(w, r, err, RouteCategoryNew)
			return
		}
		redirectWithNotice(w, r, RouteCategories, "Category created")
	}
}

// CategoryUpdateHandler processes the edit form (POST /dashboard/categories/{id})
func (s *Server) CategoryUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")

		name := r.FormValue("name")
		if name == "" {
			redirectWithError(w, r, RouteCategories+"/"+id+"/edit", "Name is required")
			return
		}

		if _, err := s.api.UpdateCategory(r.Context(), id, aggregator.CategoryInput{Name: name}); err != nil {
			s.handleAPIError(w, r, err, RouteCategories)
			return
		}
		redirectWithNotice(w, r, RouteCategories, "Category updated")
	}
}

// CategoryDeleteHandler removes a category (POST /dashboard/categories/{id}/delete)
func (s *Server) CategoryDeleteHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.api.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
			s.handleAPIError(w, r, err, RouteCategories)
			return
		}
		redirectWithNotice(w, r, RouteCategories, "Category deleted")
	}
}
