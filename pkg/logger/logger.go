package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger wraps logrus.Logger with platform-specific helpers
type Logger struct {
	*logrus.Logger
	service string
}

// New creates a new logger instance for the named service
func New(service, level string) *Logger {
	log := logrus.New()

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		logLevel = logrus.InfoLevel
	}
	log.SetLevel(logLevel)

	log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: "2006-01-02T15:04:05.000Z07:00",
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime:  "timestamp",
			logrus.FieldKeyLevel: "level",
			logrus.FieldKeyMsg:   "message",
		},
	})

	log.SetOutput(os.Stdout)

	return &Logger{Logger: log, service: service}
}

// WithFields creates a new logger entry with the specified fields
func (l *Logger) WithFields(fields map[string]interface{}) *logrus.Entry {
	return l.Logger.WithField("service", l.service).WithFields(logrus.Fields(fields))
}

// WithError creates a new logger entry with an error field
func (l *Logger) WithError(err error) *logrus.Entry {
	return l.Logger.WithField("service", l.service).WithError(err)
}

// WithClaim creates a new logger entry scoped to one claim
func (l *Logger) WithClaim(claimID string) *logrus.Entry {
	return l.WithFields(map[string]interface{}{"claim_id": claimID})
}

// Anchor logs an anchoring event with structured format
func (l *Logger) Anchor(eventType, recordID, topicID, transactionID string, success bool) {
	entry := l.WithFields(map[string]interface{}{
		"anchor":         true,
		"event_type":     eventType,
		"record_id":      recordID,
		"topic_id":       topicID,
		"transaction_id": transactionID,
		"success":        success,
	})

	if success {
		entry.Info("Anchor event submitted")
	} else {
		entry.Error("Anchor event failed")
	}
}

// Verification logs the outcome of an authenticity check
func (l *Logger) Verification(recordID, transactionID string, success bool, reason string) {
	entry := l.WithFields(map[string]interface{}{
		"verification":   true,
		"record_id":      recordID,
		"transaction_id": transactionID,
		"success":        success,
		"reason":         reason,
	})

	if success {
		entry.Info("Authenticity check passed")
	} else {
		entry.Warn("Authenticity check failed")
	}
}

// HTTPRequest logs an HTTP request event
func (l *Logger) HTTPRequest(method, path string, statusCode int, durationMs int64, remoteAddr string) {
	l.WithFields(map[string]interface{}{
		"http_request": true,
		"method":       method,
		"path":         path,
		"status_code":  statusCode,
		"duration_ms":  durationMs,
		"remote_addr":  remoteAddr,
	}).Info("HTTP request completed")
}
