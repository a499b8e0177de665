package common

import (
	"context"
	"encoding/json"
	"net/http"

	. "github.com/KeynihAV/fxbank/pkg/logging"
)

type MyResponse struct {
	Body  interface{} `json:"body,omitempty"`
	Error string      `json:"error,omitempty"`
}

func RespJSONError(w http.ResponseWriter, status int, err error, resp string, ctx context.Context) {
	if err != nil {
		Sl(ctx).Error(err.Error())
	}
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	respJSON, _ := json.Marshal(&MyResponse{
		Error: resp,
	})
	w.Write(respJSON)
}

func WriteStructToResponse(in interface{}, ctx context.Context, w http.ResponseWriter) bool {
	w.Header().Set("Content-type", "application/json")
	respJSON, err := json.Marshal(in)
	if err != nil {
		errTxt := "json marshal error"
		RespJSONError(w, http.StatusInternalServerError, err, errTxt, ctx)
		return false
	}
	w.Write(respJSON)

	return true
}
