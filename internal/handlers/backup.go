package handlers

import (
	"fmt"
	"net/http"
)

func (h *Handlers) handleBackup(w http.ResponseWriter, r *http.Request) {
	file, err := h.Backup.Backup(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, map[string]interface{}{
		"backup_file": file,
		"message":     "Backup created successfully",
	})
}

// handleRestore loads a backup from the backup directory. With no body,
// or no backup_file, the latest backup is used.
func (h *Handlers) handleRestore(w http.ResponseWriter, r *http.Request) {
	var req RestoreRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.Backup.RestoreFromFile(r.Context(), req.BackupFile)
	if err != nil {
		respondError(w, err)
		return
	}
	respondOK(w, RestoreResponse{
		Success: true,
		Result:  result,
		Message: fmt.Sprintf("Restored %d restaurants and %d categories", result.RestaurantsRestored, result.CategoriesRestored),
	})
}
