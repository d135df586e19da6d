package core

// Logger is any service that can log application events.
// expected args: error, map[string]interface{}, Actor
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Actor identifies the administrator on whose behalf an operation runs.
type Actor struct {
	ID       string
	Username string
	Email    string
}
