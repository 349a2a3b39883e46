package models

import (
	"net/http"
	"time"
)

// ResponseModel is the envelope around every API payload.
type ResponseModel struct {
	Code        int    `json:"code"`
	CurrentTime int64  `json:"currentTime"`
	Data        any    `json:"data"`
	Text        string `json:"text"`
	Version     int    `json:"version"`
}

// ResponseCurrentTime is the envelope timestamp in epoch milliseconds.
func ResponseCurrentTime() int64 {
	return time.Now().UnixMilli()
}

func NewResponse(code int, data any, text string) ResponseModel {
	return ResponseModel{
		Code:        code,
		CurrentTime: ResponseCurrentTime(),
		Data:        data,
		Text:        text,
		Version:     2,
	}
}

func NewOKResponse(data any) ResponseModel {
	return NewResponse(http.StatusOK, data, "OK")
}

// NewEntryResponse wraps a single pattern-level result and the halts it
// refers to.
func NewEntryResponse(entry any, references ReferencesModel) ResponseModel {
	return NewOKResponse(map[string]any{
		"entry":      entry,
		"references": references,
	})
}

// NewListResponse is NewEntryResponse for collections.
func NewListResponse(list any, references ReferencesModel) ResponseModel {
	return NewOKResponse(map[string]any{
		"list":       list,
		"references": references,
	})
}
