package testbackend

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (s *Server) handleDashboardStats(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	pending, openReports, activeLeads := 0, 0, 0
	for _, p := range s.store.properties {
		if p.Status == "pending" {
			pending++
		}
	}
	for _, rep := range s.store.reports {
		if rep.Status == "open" {
			openReports++
		}
	}
	for _, l := range s.store.leads {
		if l.Status != "closed" {
			activeLeads++
		}
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"stats": map[string]any{
			"totalUsers":      len(s.store.users),
			"totalProperties": len(s.store.properties),
			"pendingReviews":  pending,
			"activeLeads":     activeLeads,
			"openReports":     openReports,
			"timestamp":       s.now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleDashboardActivity(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	entries := make([]map[string]any, 0, len(s.store.activities))
	for i := len(s.store.activities) - 1; i >= 0; i-- {
		a := s.store.activities[i]
		entries = append(entries, map[string]any{
			"at":     a.At.Format(time.RFC3339),
			"actor":  a.Actor,
			"action": a.Action,
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"activity": entries})
}

// --- users ---

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(s.store.users))
	for _, u := range s.store.users {
		if search != "" &&
			!strings.Contains(strings.ToLower(u.Name), search) &&
			!strings.Contains(strings.ToLower(u.Email), search) {
			continue
		}
		out = append(out, map[string]any{
			"id":        u.ID,
			"name":      u.Name,
			"email":     u.Email,
			"phone":     u.Phone,
			"userType":  u.UserType,
			"blocked":   u.Blocked,
			"createdAt": u.CreatedAt.Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"users": out})
}

func (s *Server) handleToggleUserBlock(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, u := range s.store.users {
		if u.ID == userID {
			u.Blocked = !u.Blocked
			s.store.recordActivity(sessionFrom(r).admin.Email,
				fmt.Sprintf("set user %s blocked=%t", u.Email, u.Blocked))
			s.writeJSON(w, http.StatusOK, map[string]bool{"blocked": u.Blocked})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "user not found")
}

func (s *Server) handleExportUsersCSV(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write([]string{"id", "name", "email", "phone", "type", "blocked"})
	for _, u := range s.store.users {
		_ = cw.Write([]string{u.ID, u.Name, u.Email, u.Phone, u.UserType, strconv.FormatBool(u.Blocked)})
	}
	cw.Flush()

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="users.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (s *Server) handleExportUsersPDF(w http.ResponseWriter, _ *http.Request) {
	// A minimal but structurally valid PDF shell; enough for the console to
	// save the blob.
	s.store.mu.Lock()
	count := len(s.store.users)
	s.store.mu.Unlock()

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="users.pdf"`)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%%PDF-1.4\n%% user export, %d rows\n%%%%EOF\n", count)
}

// --- properties ---

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(s.store.properties))
	for _, p := range s.store.properties {
		if status != "" && p.Status != status {
			continue
		}
		out = append(out, map[string]any{
			"id":        p.ID,
			"title":     p.Title,
			"ownerName": p.OwnerName,
			"city":      p.City,
			"price":     p.Price,
			"status":    p.Status,
			"reason":    p.Reason,
			"createdAt": p.CreatedAt.Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"properties": out})
}

func (s *Server) propertyByID(id string) *property {
	for _, p := range s.store.properties {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *Server) handleApproveProperty(w http.ResponseWriter, r *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p := s.propertyByID(chi.URLParam(r, "propertyID"))
	if p == nil {
		s.writeError(w, http.StatusNotFound, "property not found")
		return
	}
	p.Status = "approved"
	p.Reason = ""
	s.store.recordActivity(sessionFrom(r).admin.Email, "approved listing "+p.Title)
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDisapproveProperty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reason string `json:"reason"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Reason) == "" {
		s.writeError(w, http.StatusBadRequest, "a disapproval reason is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	p := s.propertyByID(chi.URLParam(r, "propertyID"))
	if p == nil {
		s.writeError(w, http.StatusNotFound, "property not found")
		return
	}
	p.Status = "disapproved"
	p.Reason = req.Reason
	s.store.recordActivity(sessionFrom(r).admin.Email, "disapproved listing "+p.Title)
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "propertyID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for i, p := range s.store.properties {
		if p.ID == id {
			s.store.properties = append(s.store.properties[:i], s.store.properties[i+1:]...)
			s.store.recordActivity(sessionFrom(r).admin.Email, "deleted listing "+p.Title)
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "property not found")
}

// --- categories and property types ---

func (s *Server) handleListCategories(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(s.store.categories))
	for _, c := range s.store.categories {
		entry := map[string]any{"id": c.ID, "name": c.Name}
		if c.ParentID != "" {
			entry["parentId"] = c.ParentID
		}
		out = append(out, entry)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		ParentID string `json:"parentId"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "category name is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, c := range s.store.categories {
		if strings.EqualFold(c.Name, req.Name) && c.ParentID == req.ParentID {
			s.writeError(w, http.StatusConflict, "category already exists")
			return
		}
	}
	c := &category{ID: uuid.NewString(), Name: req.Name, ParentID: req.ParentID}
	s.store.categories = append(s.store.categories, c)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"category": map[string]any{"id": c.ID, "name": c.Name, "parentId": c.ParentID},
	})
}

func (s *Server) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "category name is required")
		return
	}
	id := chi.URLParam(r, "categoryID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, c := range s.store.categories {
		if c.ID == id {
			c.Name = req.Name
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "category not found")
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "categoryID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for i, c := range s.store.categories {
		if c.ID == id {
			s.store.categories = append(s.store.categories[:i], s.store.categories[i+1:]...)
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "category not found")
}

func (s *Server) handleListPropertyTypes(w http.ResponseWriter, _ *http.Request) {
	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(s.store.propertyTypes))
	for _, t := range s.store.propertyTypes {
		out = append(out, map[string]any{"id": t.ID, "name": t.Name})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"propertyTypes": out})
}

func (s *Server) handleCreatePropertyType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "property type name is required")
		return
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	s.store.propertyTypes = append(s.store.propertyTypes,
		&propertyType{ID: uuid.NewString(), Name: req.Name})
	s.writeJSON(w, http.StatusCreated, map[string]bool{"success": true})
}

func (s *Server) handleUpdatePropertyType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		s.writeError(w, http.StatusBadRequest, "property type name is required")
		return
	}
	id := chi.URLParam(r, "typeID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, t := range s.store.propertyTypes {
		if t.ID == id {
			t.Name = req.Name
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "property type not found")
}

func (s *Server) handleDeletePropertyType(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "typeID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for i, t := range s.store.propertyTypes {
		if t.ID == id {
			s.store.propertyTypes = append(s.store.propertyTypes[:i], s.store.propertyTypes[i+1:]...)
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "property type not found")
}

// --- leads ---

func (s *Server) handleListLeads(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(s.store.leads))
	for _, l := range s.store.leads {
		if status != "" && l.Status != status {
			continue
		}
		out = append(out, map[string]any{
			"id":         l.ID,
			"propertyId": l.PropertyID,
			"clientName": l.ClientName,
			"phone":      l.Phone,
			"status":     l.Status,
			"createdAt":  l.CreatedAt.Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"leads": out})
}

func (s *Server) handleExportLeads(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	_ = cw.Write([]string{"id", "property", "client", "phone", "status"})
	for _, l := range s.store.leads {
		_ = cw.Write([]string{l.ID, l.PropertyID, l.ClientName, l.Phone, l.Status})
	}
	cw.Flush()

	contentType := "text/csv"
	if format == "excel" {
		contentType = "application/vnd.ms-excel"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="leads.`+format+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// --- reports ---

func (s *Server) writeReports(w http.ResponseWriter, r *http.Request, targetType string) {
	status := r.URL.Query().Get("status")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]map[string]any, 0, len(s.store.reports))
	for _, rep := range s.store.reports {
		if rep.TargetType != targetType {
			continue
		}
		if status != "" && rep.Status != status {
			continue
		}
		out = append(out, map[string]any{
			"id":         rep.ID,
			"targetType": rep.TargetType,
			"targetId":   rep.TargetID,
			"reason":     rep.Reason,
			"status":     rep.Status,
			"reportedBy": rep.ReportedBy,
			"createdAt":  rep.CreatedAt.Format(time.RFC3339),
		})
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"reports": out})
}

func (s *Server) handlePropertyReports(w http.ResponseWriter, r *http.Request) {
	s.writeReports(w, r, "property")
}

func (s *Server) handleMessageReports(w http.ResponseWriter, r *http.Request) {
	s.writeReports(w, r, "message")
}

func (s *Server) handleResolveReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Action string `json:"action"`
		Note   string `json:"note"`
	}
	if err := decodeBody(r, &req); err != nil || strings.TrimSpace(req.Action) == "" {
		s.writeError(w, http.StatusBadRequest, "a resolve action is required")
		return
	}
	id := chi.URLParam(r, "reportID")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	for _, rep := range s.store.reports {
		if rep.ID == id {
			rep.Status = "resolved:" + req.Action
			s.store.recordActivity(sessionFrom(r).admin.Email, "resolved report "+rep.ID)
			s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
			return
		}
	}
	s.writeError(w, http.StatusNotFound, "report not found")
}
