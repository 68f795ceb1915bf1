package web

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/vitos/eth_take_profit/internal/domain"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type indexView struct {
	PRU       float64
	Ladder    string
	Qty       float64
	Mode      string
	Inventory string
	Report    *domain.StatusReport
	Error     string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view := indexView{
		PRU:       s.defaults.PRU,
		Ladder:    s.defaults.Ladder,
		Qty:       s.defaults.HeldQuantity,
		Mode:      string(s.defaults.Mode),
		Inventory: string(s.defaults.Inventory),
	}

	status := http.StatusOK
	if q.Has("tp") || q.Has("pru") {
		req, err := s.statusRequestFromQuery(q)
		if err == nil {
			view.PRU, view.Ladder, view.Qty = req.ReferencePrice, req.Ladder, req.Quantity
			view.Mode, view.Inventory = string(req.Mode), string(req.Inventory)
			view.Report, err = s.service.Status(r.Context(), req)
		}
		if err != nil {
			// only the message is rendered, never a partial ladder
			status, _ = statusCode(err)
			view.Error = err.Error()
			view.Report = nil
		}
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "index.html", view); err != nil {
		s.logger.Error("Template error", zap.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Write([]byte("<div>System OK</div>"))
}
