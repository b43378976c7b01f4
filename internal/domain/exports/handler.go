package exports

import (
	"errors"
	"fmt"
	"net/http"

	"pet-health-monitor/internal/domain/permissions"
	"pet-health-monitor/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, guard middleware.Guard) {
	r.With(guard(permissions.DataExport)).Get("/export", exportHandler(svc))
}

// exportHandler godoc
// @Summary Exportar datos
// @Description json: volcado completo; csv: Type,ID,Name,Date de usuarios y animales; xlsx: una hoja por entidad.
// @Tags exports
// @Produce json
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param format query string false "json | csv | xlsx" default(json)
// @Success 200 {file} file
// @Failure 400 {string} string "unknown export format"
// @Router /export [get]
func exportHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		format, err := ParseFormat(r.URL.Query().Get("format"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		file, err := svc.Export(r.Context(), format)
		if err != nil {
			if errors.Is(err, ErrUnknownFormat) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", file.ContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", file.Filename))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(file.Data)
	}
}
