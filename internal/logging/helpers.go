package logging

import (
	"maps"

	"github.com/goliatone/go-cms-community/pkg/interfaces"
)

// Document kinds accepted by WithDocumentContext.
const (
	KindCollection = fieldCollection
	KindGlobal     = fieldGlobal
)

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns logger unchanged otherwise.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(maps.Clone(fields))
	}

	return logger
}
