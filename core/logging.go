package core

// Logger is the app-wide logging contract.
// Implementations accept extra args in the form: error | map[string]interface{} | account profile.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
