package domain

// FileState is the terminal state of one query file within a batch.
type FileState string

const (
	// FileStateSkipped: integrity record missing or mismatched; batch continues.
	FileStateSkipped FileState = "skipped"
	// FileStateRejected: classified unsafe; the batch aborts.
	FileStateRejected FileState = "rejected"
	// FileStateFailed: execution failed and was rolled back; batch continues.
	FileStateFailed FileState = "failed"
	// FileStateEmpty: executed without data rows; nothing exported.
	FileStateEmpty FileState = "empty"
	// FileStateExported: text and spreadsheet outputs written.
	FileStateExported FileState = "exported"
	// FileStateExportFailed: export stopped on an unhandled value type.
	FileStateExportFailed FileState = "export_failed"
)

// Continues reports whether a batch proceeds after a file ends in this state.
func (s FileState) Continues() bool {
	switch s {
	case FileStateRejected, FileStateExportFailed:
		return false
	default:
		return true
	}
}
