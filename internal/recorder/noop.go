package recorder

// NoopRecorder is used when no database is configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordReload(_ *ReloadEvent) error      { return nil }
func (n *NoopRecorder) RecordSnapshot(_ *SeriesSnapshot) error { return nil }
func (n *NoopRecorder) Close() error                           { return nil }
