package render

import (
	"encoding/json"
	"errors"
	"net/http"

	"lending/core"

	"github.com/sirupsen/logrus"
)

type H map[string]interface{}

// JSON render with json
func JSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Errorln(err)
	}
}

// Text render with text
func Text(w http.ResponseWriter, t string) {
	w.Header().Set("Content-Type", "application/text")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(t)); err != nil {
		logrus.Errorln(err)
	}
}

// Error write error
func Error(w http.ResponseWriter, statusCode, errCode int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	resp := errorResponse{Code: errCode, Msg: err.Error()}
	if statusCode >= http.StatusInternalServerError {
		resp.Msg = http.StatusText(statusCode)
		if ResponseErrorMessageAsHint {
			resp.Hint = err.Error()
		}
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		logrus.Errorln(err)
	}
}

// BadRequest bad request error
func BadRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusBadRequest, core.ErrInvalidArgument.Code(), err)
}

// NotFoundRequest not found request error
func NotFoundRequest(w http.ResponseWriter, err error) {
	Error(w, http.StatusNotFound, -1, err)
}

// Err map err to a response, codes of core.ErrorCode are kept
func Err(w http.ResponseWriter, err error) {
	var code core.ErrorCode
	if !errors.As(err, &code) {
		logrus.WithError(err).Errorln("render: internal error")
		Error(w, http.StatusInternalServerError, core.ErrUnknown.Code(), err)
		return
	}

	switch code {
	case core.ErrMarketNotFound, core.ErrReserveNotFound, core.ErrObligationNotFound:
		Error(w, http.StatusNotFound, code.Code(), err)
	case core.ErrUnauthorized, core.ErrUnauthorizedFeeChange, core.ErrObligationNotOwnedBySigner, core.ErrNotWhitelistedLiquidator:
		Error(w, http.StatusForbidden, code.Code(), err)
	default:
		Error(w, http.StatusBadRequest, code.Code(), err)
	}
}
