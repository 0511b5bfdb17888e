package middleware

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type MiddlewareConfig struct {
	Log    *logrus.Logger
	Config *viper.Viper
}

// Middleware holds the dependencies shared by the route middlewares. Config may be nil,
// in which case defaults apply.
type Middleware struct {
	Log    *logrus.Logger
	Config *viper.Viper
}

func NewMiddleware(c *MiddlewareConfig) *Middleware {
	m := &Middleware{}
	if c != nil {
		m.Log = c.Log
		m.Config = c.Config
	}
	if m.Log == nil {
		m.Log = logrus.New()
		m.Log.Out = io.Discard
	}
	return m
}
