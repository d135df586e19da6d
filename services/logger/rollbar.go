package logsvc

import (
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/trezcool/ratiba/core"
)

type RollbarLogger struct {
	std *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	rollbar.SetToken(conf.RollbarToken)
	rollbar.SetEnvironment(conf.Env)
	rollbar.SetServerHost(conf.Server.Host)
	rollbar.SetCodeVersion(conf.Build)
	rollbar.SetStackTracer(errors.StackTracer)
	rollbar.SetEnabled(conf.RollbarToken != "" && !conf.TestMode)
	return &RollbarLogger{std: std}
}

func (l RollbarLogger) Enable(enabled bool) {
	rollbar.SetEnabled(enabled)
}

// Wait blocks until every queued item has been sent to rollbar.
func (l RollbarLogger) Wait() {
	rollbar.Wait()
}

// expected fmt: msg | error, map[string]interface{}, core.Actor
func (l RollbarLogger) prepare(msg string, args []interface{}) ([]interface{}, []interface{}) {
	var actorSet bool
	rbArgs := make([]interface{}, 0, len(args)+1)
	rbArgs = append(rbArgs, msg)
	printArgs := make([]interface{}, 0, len(args))
	for _, arg := range args {
		switch a := arg.(type) {
		case nil:
		case core.Actor:
			if !actorSet { // only set one Actor
				rollbar.SetPerson(a.ID, a.Username, a.Email)
				actorSet = true
			}
		case *core.Actor:
			if a != nil && !actorSet {
				rollbar.SetPerson(a.ID, a.Username, a.Email)
				actorSet = true
			}
		default:
			rbArgs = append(rbArgs, arg)
			printArgs = append(printArgs, arg)
		}
	}
	if !actorSet {
		rollbar.ClearPerson()
	}
	return rbArgs, printArgs
}

func (l RollbarLogger) print(level, msg string, args []interface{}) {
	l.std.Printf("[%s] %s\n", level, msg)
	for _, arg := range args {
		l.std.Printf("%+v\n", arg)
	}
}

func (l RollbarLogger) Debug(msg string, args ...interface{}) {
	rbArgs, printArgs := l.prepare(msg, args)
	rollbar.Debug(rbArgs...)
	l.print("DEBUG", msg, printArgs)
}

func (l RollbarLogger) Info(msg string, args ...interface{}) {
	rbArgs, printArgs := l.prepare(msg, args)
	rollbar.Info(rbArgs...)
	l.print("INFO", msg, printArgs)
}

func (l RollbarLogger) Warn(msg string, args ...interface{}) {
	rbArgs, printArgs := l.prepare(msg, args)
	rollbar.Warning(rbArgs...)
	l.print("WARN", msg, printArgs)
}

func (l RollbarLogger) Error(msg string, args ...interface{}) {
	rbArgs, printArgs := l.prepare(msg, args)
	rollbar.Error(rbArgs...)
	l.print("ERROR", msg, printArgs)
}

func (l RollbarLogger) Fatal(msg string, args ...interface{}) {
	rbArgs, printArgs := l.prepare(msg, args)
	rollbar.Critical(rbArgs...)
	l.print("FATAL", msg, printArgs)
	rollbar.Wait()
	l.std.Fatal(msg)
}
