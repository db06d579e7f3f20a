package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/example/condo-admin/internal/directory"
	"github.com/example/condo-admin/internal/security"
)

func listFilterFromQuery(r *http.Request) directory.ListFilter {
	f := directory.ListFilter{
		CondominiumID: r.URL.Query().Get("condominium_id"),
		BuildingID:    r.URL.Query().Get("building_id"),
		UnitID:        r.URL.Query().Get("unit_id"),
		OwnerID:       r.URL.Query().Get("owner_id"),
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			f.Limit = i
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			f.Offset = i
		}
	}
	return f
}

func handleCreateCondominium(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Condominium
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		out, err := deps.Directory.CreateCondominium(r.Context(), in)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, out)
	}
}

func handleListCondominiums(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deps.Directory.ListCondominiums(r.Context(), listFilterFromQuery(r))
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleCreateBuilding(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Building
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		out, err := deps.Directory.CreateBuilding(r.Context(), in)
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				security.WriteJSONError(w, r, http.StatusNotFound, "condominium_not_found")
				return
			}
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, out)
	}
}

func handleListBuildings(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deps.Directory.ListBuildings(r.Context(), listFilterFromQuery(r))
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleCreateUnit(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Unit
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		out, err := deps.Directory.CreateUnit(r.Context(), in)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, out)
	}
}

func handleListUnits(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deps.Directory.ListUnits(r.Context(), listFilterFromQuery(r))
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleCreateOwner(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Owner
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		out, err := deps.Directory.CreateOwner(r.Context(), in)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, out)
	}
}

func handleListOwners(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deps.Directory.ListOwners(r.Context(), listFilterFromQuery(r))
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleGetOwner(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deps.Directory.GetOwner(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			if errors.Is(err, directory.ErrNotFound) {
				security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
				return
			}
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleCreateTenant(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Tenant
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}

		out, err := deps.Directory.CreateTenant(r.Context(), in)
		if err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
			return
		}
		writeJSON(w, r, http.StatusCreated, out)
	}
}

func handleListTenants(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deps.Directory.ListTenants(r.Context(), listFilterFromQuery(r))
		if err != nil {
			security.WriteJSONError(w, r, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func directoryWriteError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, directory.ErrNotFound):
		security.WriteJSONError(w, r, http.StatusNotFound, "not_found")
	case errors.Is(err, directory.ErrInUse):
		security.WriteJSONError(w, r, http.StatusConflict, "in_use")
	default:
		security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_request")
	}
}

func handleUpdateCondominium(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Condominium
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}
		in.ID = chi.URLParam(r, "condominiumID")

		out, err := deps.Directory.UpdateCondominium(r.Context(), in)
		if err != nil {
			directoryWriteError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleDeleteCondominium(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.DeleteCondominium(r.Context(), chi.URLParam(r, "condominiumID")); err != nil {
			directoryWriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateBuilding(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Building
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}
		in.ID = chi.URLParam(r, "buildingID")

		out, err := deps.Directory.UpdateBuilding(r.Context(), in)
		if err != nil {
			directoryWriteError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleDeleteBuilding(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.DeleteBuilding(r.Context(), chi.URLParam(r, "buildingID")); err != nil {
			directoryWriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateUnit(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Unit
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}
		in.ID = chi.URLParam(r, "unitID")

		out, err := deps.Directory.UpdateUnit(r.Context(), in)
		if err != nil {
			directoryWriteError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleDeleteUnit(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.DeleteUnit(r.Context(), chi.URLParam(r, "unitID")); err != nil {
			directoryWriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateOwner(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Owner
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}
		in.ID = chi.URLParam(r, "ownerID")

		out, err := deps.Directory.UpdateOwner(r.Context(), in)
		if err != nil {
			directoryWriteError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleDeleteOwner(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.DeleteOwner(r.Context(), chi.URLParam(r, "ownerID")); err != nil {
			directoryWriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func handleUpdateTenant(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in directory.Tenant
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			security.WriteJSONError(w, r, http.StatusBadRequest, "invalid_json")
			return
		}
		in.ID = chi.URLParam(r, "tenantID")

		out, err := deps.Directory.UpdateTenant(r.Context(), in)
		if err != nil {
			directoryWriteError(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, out)
	}
}

func handleDeleteTenant(deps Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := deps.Directory.DeleteTenant(r.Context(), chi.URLParam(r, "tenantID")); err != nil {
			directoryWriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
