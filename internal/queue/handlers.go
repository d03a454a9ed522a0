package queue

import (
	"github.com/hibiken/asynq"
)

// NewMux maps task types to their workers. Both document tasks share one mux
// so a single worker binary drains the whole pipeline.
func NewMux(process, ingest asynq.Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeDocumentProcess, process)
	mux.Handle(TypeDocumentIngest, ingest)
	return mux
}
