package recorder

import "Prisme/internal/model"

// ETLEvent summarises one collector run.
type ETLEvent struct {
	Source  string
	Period  string
	Written []string
	Failed  map[string]string // identifier -> error message
}

// Recorder keeps an append-only audit trail of ETL and analysis runs.
// Nothing in the analysis reads it back.
type Recorder interface {
	RecordRun(report *model.Report) error
	RecordETL(evt *ETLEvent) error
	Close() error
}
