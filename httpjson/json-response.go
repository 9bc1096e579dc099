package httpjson

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/austrian-olympiad-informatics/aoi-portal/srvcerror"
)

type JsonResponse struct {
	Status  string `json:"status"` // "success" or "error"
	Data    any    `json:"data,omitempty"`
	ErrCode string `json:"code,omitempty"`
	ErrMsg  string `json:"message,omitempty"`
}

func WriteSuccessJson(w http.ResponseWriter, data any) {
	resp := JsonResponse{
		Status: "success",
		Data:   data,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func WriteErrorJson(w http.ResponseWriter, errMsg string, statusCode int, errCode string) {
	resp := JsonResponse{
		Status:  "error",
		ErrMsg:  errMsg,
		ErrCode: errCode,
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)
}

func writeInternalErrorJson(w http.ResponseWriter) {
	WriteErrorJson(w,
		http.StatusText(http.StatusInternalServerError),
		http.StatusInternalServerError,
		srvcerror.ErrCodeInternalServerError)
}

// HandleSrvcError writes err as a JSON error envelope. Service errors keep their
// code and status; anything else becomes an opaque 500.
func HandleSrvcError(logger *slog.Logger, w http.ResponseWriter, err error) {
	srvcErr := &srvcerror.Error{}
	if !errors.As(err, &srvcErr) {
		logger.Error("internal server error", "error", err)
		writeInternalErrorJson(w)
		return
	}

	status := srvcErr.HttpStatusCode()
	switch {
	case status >= http.StatusInternalServerError:
		logger.Error("service error", "code", srvcErr.ErrorCode(), "error", err, "debug", srvcErr.DebugInfo())
	case srvcErr.DebugInfo() != nil:
		logger.Warn("service error", "code", srvcErr.ErrorCode(), "error", err, "debug", srvcErr.DebugInfo())
	default:
		logger.Info("service error", "code", srvcErr.ErrorCode(), "error", err)
	}
	WriteErrorJson(w, srvcErr.Error(), status, srvcErr.ErrorCode())
}
