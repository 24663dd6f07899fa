package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type Options struct {
	Level      string
	Production bool
	Output     io.Writer
	App        string
	Env        string
}

// New builds the process logger: JSON in production, text otherwise. Every
// entry carries the app and env fields.
func New(o Options) logrus.FieldLogger {
	l := logrus.New()

	out := o.Output
	if out == nil {
		out = os.Stdout
	}
	l.SetOutput(out)

	if o.Production {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	lvl, err := logrus.ParseLevel(strings.TrimSpace(o.Level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)

	fields := logrus.Fields{}
	if o.App != "" {
		fields["app"] = o.App
	}
	if o.Env != "" {
		fields["env"] = o.Env
	}
	return l.WithFields(fields)
}
